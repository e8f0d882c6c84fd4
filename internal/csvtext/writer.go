package csvtext

import "strings"

// LineEnding terminates every exported line.
const LineEnding = "\r\n"

// WriteLine escapes fields and joins them with commas.
func WriteLine(fields []Value) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = Escape(f)
	}
	return strings.Join(parts, ",")
}

// Encode assembles a complete export: BOM, header line, then one line per row.
// Rows are written as given; callers build them with one value per header.
func Encode(header []string, rows [][]Value) string {
	var b strings.Builder
	b.WriteString(BOM)

	head := make([]string, len(header))
	for i, h := range header {
		head[i] = EscapeString(h)
	}
	b.WriteString(strings.Join(head, ","))

	for _, row := range rows {
		b.WriteString(LineEnding)
		b.WriteString(WriteLine(row))
	}

	return b.String()
}
