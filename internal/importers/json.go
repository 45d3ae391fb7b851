package importers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mrlokans/bookworm/internal/services"
)

// JSONBook is one entry of a JSON import.
type JSONBook struct {
	services.BookInput
	IsRead bool `json:"is_read"`
}

// ParseJSON accepts either a bare array of books or an object with a "books" array.
func ParseJSON(r io.Reader) ([]JSONBook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	var books []JSONBook
	if data[0] == '[' {
		if err := json.Unmarshal(data, &books); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		return books, nil
	}

	var doc struct {
		Books []JSONBook `json:"books"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return doc.Books, nil
}

// JSONConverter turns decoded JSON books into import rows. Line is the
// 1-based position in the array.
type JSONConverter struct {
	Books []JSONBook
}

func NewJSONConverter(books []JSONBook) *JSONConverter {
	return &JSONConverter{Books: books}
}

func (c *JSONConverter) Source() string { return "json" }

func (c *JSONConverter) Convert() ([]Row, []RowError) {
	out := make([]Row, 0, len(c.Books))
	for i, b := range c.Books {
		out = append(out, Row{Line: i + 1, Input: b.BookInput, IsRead: b.IsRead})
	}
	return out, nil
}

var _ Converter = (*JSONConverter)(nil)
