// Package tabular decodes raw delimited text into ordered header lists and
// rows of named fields. The delimiter is sniffed from the header line, so
// callers never declare whether an export is comma, semicolon, tab, or pipe
// separated.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/SFDataHub/scanpipe/internal/domain/model"
)

// Delimiter candidates, checked against the header line.
var delimiters = []rune{',', ';', '\t', '|'}

// Table is the result of decoding one source file.
type Table struct {
	Headers []string
	Rows    []model.RawRow
}

// Decode parses raw text into a Table. It strips a UTF-8 byte-order mark,
// normalizes line endings, sniffs the delimiter, and honors double-quoted
// fields (a doubled quote inside a quoted field is a literal quote). Blank
// header cells become positional placeholders so every row keeps a stable
// key set; rows that are entirely blank are dropped.
func Decode(text string) (*Table, error) {
	text = strings.TrimPrefix(text, "\uFEFF")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimLeft(text, "\n")
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	headerLine := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		headerLine = text[:i]
	}
	delim := sniffDelimiter(headerLine)

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header line: %w", err)
	}
	headers := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("col%d", i+1)
		}
		headers[i] = h
	}

	t := &Table{Headers: headers}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading data line: %w", err)
		}
		row := model.NewRawRow()
		for i, h := range headers {
			if i < len(record) {
				row.Set(h, strings.TrimSpace(record[i]))
			} else {
				row.Set(h, "")
			}
		}
		if row.IsBlank() {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// sniffDelimiter picks the candidate occurring most often in the header
// line. Ties keep the earlier candidate, so comma wins over semicolon when
// both appear equally often.
func sniffDelimiter(headerLine string) rune {
	best := delimiters[0]
	bestCount := -1
	for _, d := range delimiters {
		if n := strings.Count(headerLine, string(d)); n > bestCount {
			best = d
			bestCount = n
		}
	}
	return best
}
