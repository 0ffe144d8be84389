// Package csvline tokenizes comma-separated lines with double-quote
// handling, and builds header-driven tables on top of that tokenizer. Both
// the price ingestor and the metadata merge read their inputs through it.
package csvline

import (
	"io"
	"strings"
)

// ParseLine splits one line into field values.
//
// Double quotes toggle quoting, so commas between them are literal; a doubled
// quote inside a quoted run is one literal quote. Whitespace outside quotes
// at either end of a field is trimmed, whitespace inside quotes is kept. An
// opening quote that is never closed leaves the rest of the line quoted and
// no error is reported. The result always has one entry per top-level comma
// plus one.
func ParseLine(line string) []string {
	var (
		fields   []string
		f        field
		inQuotes bool
	)

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				f.writeQuoted('"')
				i++
			} else {
				inQuotes = !inQuotes
				f.markQuote()
			}
		case c == ',' && !inQuotes:
			fields = append(fields, f.value())
			f = field{}
		case inQuotes:
			f.writeQuoted(c)
		default:
			f.buf.WriteByte(c)
		}
	}
	return append(fields, f.value())
}

// field accumulates one field and remembers the span that came from inside
// quotes, which is exempt from trimming.
type field struct {
	buf    strings.Builder
	quoted bool
	lo, hi int
}

func (f *field) markQuote() {
	if !f.quoted {
		f.quoted = true
		f.lo = f.buf.Len()
	}
	f.hi = f.buf.Len()
}

func (f *field) writeQuoted(c byte) {
	f.buf.WriteByte(c)
	f.hi = f.buf.Len()
}

func (f *field) value() string {
	s := f.buf.String()
	if !f.quoted {
		return strings.TrimSpace(s)
	}
	return strings.TrimLeft(s[:f.lo], " \t\r\n") + s[f.lo:f.hi] + strings.TrimRight(s[f.hi:], " \t\r\n")
}

// ReadLines reads all of r and returns its lines, dropping any line that is
// empty once whitespace is trimmed. A trailing "\r" is left to field
// trimming.
func ReadLines(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// ---------------------------------------------------------------------------
// Header-driven tables
// ---------------------------------------------------------------------------

// Table is a parsed CSV file whose first non-empty line names the columns.
type Table struct {
	Header []string
	Rows   []Row

	index map[string]int
}

// Row is one data line of a Table.
type Row struct {
	table  *Table
	Fields []string
}

// ReadTable parses r as a header-driven table. An input with no lines yields
// an empty table and no error.
func ReadTable(r io.Reader) (*Table, error) {
	lines, err := ReadLines(r)
	if err != nil {
		return nil, err
	}

	t := &Table{index: make(map[string]int)}
	if len(lines) == 0 {
		return t, nil
	}

	t.Header = ParseLine(lines[0])
	for i, name := range t.Header {
		// First occurrence wins for duplicated column names.
		if _, ok := t.index[name]; !ok {
			t.index[name] = i
		}
	}

	t.Rows = make([]Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		t.Rows = append(t.Rows, Row{table: t, Fields: ParseLine(line)})
	}
	return t, nil
}

// Has reports whether the table has a column with the given header name.
func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Get returns the value of the named column, or "" when the column is not in
// the header or the row is short.
func (r Row) Get(column string) string {
	i, ok := r.table.index[column]
	if !ok || i >= len(r.Fields) {
		return ""
	}
	return r.Fields[i]
}

// At returns the positional field i, or "" when the row is short.
func (r Row) At(i int) string {
	if i < 0 || i >= len(r.Fields) {
		return ""
	}
	return r.Fields[i]
}
