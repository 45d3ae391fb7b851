package importers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mrlokans/bookworm/internal/services"
)

// CSVRow is a single data row keyed by lower-cased header.
type CSVRow struct {
	Line   int
	Values map[string]string
}

func (r CSVRow) get(key string) string {
	return strings.TrimSpace(r.Values[key])
}

var requiredCSVHeaders = []string{"title", "author"}

// headerAliases maps alternative column names onto the canonical ones.
var headerAliases = map[string]string{
	"book title":  "title",
	"name":        "title",
	"book author": "author",
	"writer":      "author",
	"category":    "genre",
	"summary":     "description",
	"published":   "year",
	"publication": "year",
	"isbn13":      "isbn",
	"read":        "is_read",
	"status":      "is_read",
}

// ParseCSV reads a CSV with a header row. Rows with the wrong shape are
// reported as errors; a missing required header fails the whole parse.
func ParseCSV(r io.Reader) ([]CSVRow, []RowError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if canonical, ok := headerAliases[name]; ok {
			name = canonical
		}
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, h := range requiredCSVHeaders {
		if _, ok := index[h]; !ok {
			return nil, nil, fmt.Errorf("missing required header: %s", h)
		}
	}

	var rows []CSVRow
	var errs []RowError
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				errs = append(errs, RowError{Line: perr.StartLine, Message: perr.Err.Error()})
				continue
			}
			return rows, errs, fmt.Errorf("failed to read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if isBlank(record) {
			continue
		}

		values := make(map[string]string, len(index))
		for name, i := range index {
			if i < len(record) {
				values[name] = record[i]
			}
		}
		rows = append(rows, CSVRow{Line: line, Values: values})
	}
	return rows, errs, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// CSVConverter turns parsed CSV rows into import rows.
type CSVConverter struct {
	Rows      []CSVRow
	ParseErrs []RowError
}

func NewCSVConverter(rows []CSVRow, parseErrs []RowError) *CSVConverter {
	return &CSVConverter{Rows: rows, ParseErrs: parseErrs}
}

func (c *CSVConverter) Source() string { return "csv" }

func (c *CSVConverter) Convert() ([]Row, []RowError) {
	out := make([]Row, 0, len(c.Rows))
	for _, r := range c.Rows {
		out = append(out, Row{
			Line: r.Line,
			Input: services.BookInput{
				Title:       r.get("title"),
				Author:      r.get("author"),
				Genre:       r.get("genre"),
				Description: r.get("description"),
				Year:        services.YearText(r.get("year")),
				ISBN:        r.get("isbn"),
			},
			IsRead: parseBool(r.get("is_read")),
		})
	}
	return out, c.ParseErrs
}

var _ Converter = (*CSVConverter)(nil)
