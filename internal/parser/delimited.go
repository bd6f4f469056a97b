package parser

import (
	"strings"

	"TrendSentinel/internal/model"
)

var separators = []string{";", "\t", ","}

// parseDelimited reads header-led delimited text. A line that lands in a single
// field under the sniffed separator is re-split on any other known separator;
// columns beyond date and value are discarded. On comma-separated rows that are
// wider than the header, the surplus fields belong to a decimal-comma value and
// are joined back into it.
func parseDelimited(text string) ([]row, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var header []string
	start := 0
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			start = i
			break
		}
	}
	sep := sniffSeparator(lines[start])
	header, _ = splitFields(lines[start], sep)

	dateCol := columnIndex(header, dateColumns)
	valueCol := columnIndex(header, valueColumns)
	width := len(header)
	switch {
	case dateCol >= 0 && valueCol >= 0:
		start++
	case len(header) >= 2 && isDate(header[0]):
		// Headerless payload: first row is data.
		dateCol, valueCol, width = 0, 1, 2
	default:
		return nil, model.NewFailure(model.KindUnexpectedSchema,
			"no date/value columns in header %q", strings.Join(header, "|"))
	}

	rows := make([]row, 0, len(lines)-start)
	for _, l := range lines[start:] {
		if strings.TrimSpace(l) == "" {
			continue
		}
		fields, used := splitFields(l, sep)
		rows = append(rows, pick(fields, used, width, dateCol, valueCol))
	}
	return rows, nil
}

func pick(fields []string, sep string, width, dateCol, valueCol int) row {
	extra := len(fields) - width
	if sep != "," || extra <= 0 || valueCol >= len(fields) {
		return row{date: field(fields, dateCol), value: field(fields, valueCol)}
	}
	end := min(valueCol+extra+1, len(fields))
	if dateCol > valueCol {
		dateCol += end - valueCol - 1
	}
	return row{date: field(fields, dateCol), value: strings.Join(fields[valueCol:end], ",")}
}

func sniffSeparator(header string) string {
	for _, s := range separators {
		if strings.Contains(header, s) {
			return s
		}
	}
	return separators[0]
}

// splitFields splits line and reports the separator it ended up using.
func splitFields(line, sep string) ([]string, string) {
	parts := strings.Split(line, sep)
	if len(parts) < 2 {
		for _, alt := range separators {
			if alt != sep && strings.Contains(line, alt) {
				parts = strings.Split(line, alt)
				sep = alt
				break
			}
		}
	}
	for i, p := range parts {
		parts[i] = strings.Trim(strings.TrimSpace(p), `"`)
	}
	return parts, sep
}

func field(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}

func isDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}
