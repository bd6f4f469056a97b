package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"TrendSentinel/internal/model"
)

// parseRecords reads a JSON list of {"data": ..., "valor": ...} objects. An object
// body is accepted when it wraps such a list under any key; otherwise it is treated
// as an error document.
func parseRecords(body []byte) ([]row, error) {
	var recs []map[string]any
	if body[0] == '{' {
		list, err := unwrapObject(body)
		if err != nil {
			return nil, err
		}
		recs = list
	} else if err := decode(body, &recs); err != nil {
		return nil, model.NewFailure(model.KindUnexpectedSchema, "decode records: %w", err)
	}
	if len(recs) == 0 {
		return nil, nil
	}

	dateKey, valueKey := recordKeys(recs)
	if dateKey == "" || valueKey == "" {
		return nil, model.NewFailure(model.KindUnexpectedSchema,
			"records carry no date/value keys (date=%q value=%q)", dateKey, valueKey)
	}

	rows := make([]row, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, row{date: stringify(r[dateKey]), value: stringify(r[valueKey])})
	}
	return rows, nil
}

func unwrapObject(body []byte) ([]map[string]any, error) {
	var obj map[string]json.RawMessage
	if err := decode(body, &obj); err != nil {
		return nil, model.NewFailure(model.KindUnexpectedSchema, "decode object: %w", err)
	}
	for _, raw := range obj {
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || trimmed[0] != '[' {
			continue
		}
		var list []map[string]any
		if err := decode(trimmed, &list); err == nil {
			return list, nil
		}
	}
	for _, k := range []string{"error", "message", "erro", "mensagem"} {
		if msg, ok := obj[k]; ok {
			return nil, model.NewFailure(model.KindUnexpectedSchema, "error document: %s", string(msg))
		}
	}
	return nil, model.NewFailure(model.KindUnexpectedSchema, "object without record list")
}

func decode(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return dec.Decode(v)
}

// recordKeys finds the date and value keys across all records, ignoring case.
func recordKeys(recs []map[string]any) (dateKey, valueKey string) {
	for _, r := range recs {
		keys := make([]string, 0, len(r))
		for k := range r {
			keys = append(keys, k)
		}
		if dateKey == "" {
			if i := columnIndex(keys, dateColumns); i >= 0 {
				dateKey = keys[i]
			}
		}
		if valueKey == "" {
			if i := columnIndex(keys, valueColumns); i >= 0 {
				valueKey = keys[i]
			}
		}
		if dateKey != "" && valueKey != "" {
			return dateKey, valueKey
		}
	}
	return dateKey, valueKey
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}
