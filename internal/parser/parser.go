// Package parser turns raw data-source payloads into observation series.
//
// Two payload shapes are accepted: delimited text (the API's csv output, with a
// locale-specific separator and decimal comma) and a JSON list of records. The
// shape is detected from the content, so the requested format is only a hint.
package parser

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"time"

	"TrendSentinel/internal/model"
)

// DateLayout is the day/month/year layout used by the data source.
// Single-digit day and month are accepted as well.
const DateLayout = "2/1/2006"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var (
	dateColumns  = []string{"data", "date", "dt"}
	valueColumns = []string{"valor", "value", "val"}
)

// row is an uncleaned (date, value) pair as it appeared in the payload.
type row struct {
	date  string
	value string
}

// Parse normalizes a raw payload into an ascending, de-duplicated series.
// Rows with an empty or unparseable date or value are dropped silently.
func Parse(raw *model.RawPayload) (*model.ObservationSeries, error) {
	body := bytes.TrimSpace(bytes.TrimPrefix(raw.Body, utf8BOM))
	if len(body) == 0 {
		return nil, withCode(model.NewFailure(model.KindNoValidRows, "empty payload"), raw.Code)
	}

	var (
		rows []row
		err  error
	)
	if body[0] == '[' || body[0] == '{' {
		rows, err = parseRecords(body)
	} else {
		rows, err = parseDelimited(string(body))
	}
	if err != nil {
		return nil, withCode(err, raw.Code)
	}

	obs := normalize(rows)
	if len(obs) == 0 {
		return nil, withCode(model.NewFailure(model.KindNoValidRows, "%d rows, none usable", len(rows)), raw.Code)
	}
	return model.NewObservationSeries(obs), nil
}

func normalize(rows []row) []model.Observation {
	obs := make([]model.Observation, 0, len(rows))
	for _, r := range rows {
		d := strings.TrimSpace(r.date)
		v := strings.TrimSpace(r.value)
		if d == "" || v == "" {
			continue
		}
		t, err := ParseDate(d)
		if err != nil {
			continue
		}
		f, ok := ParseValue(v)
		if !ok {
			continue
		}
		obs = append(obs, model.Observation{Time: t, Value: f})
	}
	return obs
}

// ParseDate parses a dd/mm/yyyy date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.Trim(strings.TrimSpace(s), `"`))
}

// ParseValue parses a number written with either decimal comma or decimal point.
// Embedded whitespace is removed. When both '.' and ',' appear the dot is taken as
// a thousands separator. Non-finite results are rejected.
func ParseValue(s string) (float64, bool) {
	s = strings.Join(strings.Fields(s), "")
	s = strings.Trim(s, `"`)
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
		}
		s = strings.ReplaceAll(s, ",", ".")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func columnIndex(names []string, candidates []string) int {
	for i, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		for _, c := range candidates {
			if n == c {
				return i
			}
		}
	}
	return -1
}

func withCode(err error, code int) error {
	if f, ok := err.(*model.Failure); ok && f.Code == 0 {
		f.Code = code
	}
	return err
}
