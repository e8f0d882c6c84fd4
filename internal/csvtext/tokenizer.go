// Package csvtext converts between CSV text and grids of string fields.
//
// The tokenizer is deliberately more forgiving than encoding/csv: cells are
// trimmed, a quote in the middle of a cell toggles quoting instead of failing,
// and short or long rows are left for the caller to reconcile against the
// header. The writer is strict: a field is quoted only when it contains a
// comma, a double quote or a line break, so that ParseLine(Escape(v)) == v.
package csvtext

import (
	"errors"
	"fmt"
	"strings"
)

// BOM is the UTF-8 byte-order mark prepended to exports for spreadsheet tools.
const BOM = "\uFEFF"

// ErrUnterminatedQuote is returned when the input ends inside a quoted field.
var ErrUnterminatedQuote = errors.New("unterminated quoted field")

// Record is one logical CSV record and the physical line it starts on.
type Record struct {
	Line int    // 1-based
	Text string // raw record text, without the terminating newline
}

// Normalize strips a leading BOM and converts CRLF and lone CR to LF.
func Normalize(text string) string {
	text = strings.TrimPrefix(text, BOM)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// SplitRecords normalizes text and splits it into records on newlines that
// are not inside double quotes. Quoted fields may therefore span lines.
//
// If the text ends while a quote is still open the records found so far are
// returned together with an error wrapping ErrUnterminatedQuote.
func SplitRecords(text string) ([]Record, error) {
	text = Normalize(text)

	var records []Record
	line, startLine, start := 1, 1, 0
	inQuotes := false

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '"':
			// An escaped "" toggles twice, which leaves the state unchanged.
			inQuotes = !inQuotes
		case '\n':
			if !inQuotes {
				records = append(records, Record{Line: startLine, Text: text[start:i]})
				start = i + 1
				startLine = line + 1
			}
			line++
		}
	}

	if inQuotes {
		return records, fmt.Errorf("line %d: %w", startLine, ErrUnterminatedQuote)
	}
	if start < len(text) {
		records = append(records, Record{Line: startLine, Text: text[start:]})
	}
	return records, nil
}

// ParseLine splits one record into fields.
//
// A quote at the start of a field opens a quoted field whose content is kept
// verbatim; "" inside quotes is a literal quote. Whitespace around a quoted
// field is dropped and unquoted fields are trimmed. A quote elsewhere toggles
// quoting, so an unbalanced quote absorbs the rest of the line.
func ParseLine(line string) []string {
	var (
		fields   []string
		b        strings.Builder
		inQuotes bool
		quoted   bool // field opened with a quote
		blank    = true // nothing but whitespace seen in this field yet
		closedAt = -1   // builder length when the opening quote was closed
	)

	flush := func() {
		v := b.String()
		switch {
		case quoted && closedAt >= 0:
			v = v[:closedAt] + strings.TrimSpace(v[closedAt:])
		case quoted:
			// never closed: keep whatever was absorbed
		default:
			v = strings.TrimSpace(v)
		}
		fields = append(fields, v)
		b.Reset()
		inQuotes, quoted, blank, closedAt = false, false, true, -1
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"' && inQuotes && i+1 < len(line) && line[i+1] == '"':
			b.WriteByte('"')
			i++
		case c == '"' && !inQuotes && !quoted && blank:
			b.Reset()
			quoted, inQuotes = true, true
		case c == '"':
			inQuotes = !inQuotes
			if !inQuotes && quoted && closedAt < 0 {
				closedAt = b.Len()
			}
		case c == ',' && !inQuotes:
			flush()
		default:
			if c != ' ' && c != '\t' {
				blank = false
			}
			b.WriteByte(c)
		}
	}
	flush()

	return fields
}
