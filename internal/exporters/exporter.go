package exporters

import (
	"fmt"
	"io"
	"strings"

	"github.com/mrlokans/bookworm/internal/entities"
)

// Format identifies an export encoding.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// StreamFormats lists the formats that can be written to a single stream.
var StreamFormats = []Format{FormatCSV, FormatJSON, FormatYAML}

// ParseFormat accepts a format name or common file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// BookExporter writes a set of books to w.
type BookExporter interface {
	Export(w io.Writer, books []entities.Book) error
	ContentType() string
	Extension() string
}

// ExportResult summarizes a directory export.
type ExportResult struct {
	BooksProcessed int      `json:"books_processed"`
	BooksFailed    int      `json:"books_failed"`
	Files          []string `json:"files,omitempty"`
}

// New returns the stream exporter for format. Markdown is directory based;
// use CatalogExporter for it.
func New(format Format) (BookExporter, error) {
	switch format {
	case FormatCSV:
		return CSVExporter{}, nil
	case FormatJSON:
		return JSONExporter{Indent: true}, nil
	case FormatYAML:
		return YAMLExporter{}, nil
	case FormatMarkdown:
		return nil, fmt.Errorf("markdown exports to a directory, not a stream")
	}
	return nil, fmt.Errorf("unknown export format %q", format)
}

// record is the flat, serializable form of a book shared by the stream formats.
type record struct {
	ID          uint   `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Author      string `json:"author" yaml:"author"`
	Genre       string `json:"genre,omitempty" yaml:"genre,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Year        *int   `json:"year,omitempty" yaml:"year,omitempty"`
	ISBN        string `json:"isbn,omitempty" yaml:"isbn,omitempty"`
	IsRead      bool   `json:"is_read" yaml:"is_read"`
	AddedOn     string `json:"added_on" yaml:"added_on"`
}

const dateLayout = "2006-01-02"

func toRecord(b entities.Book) record {
	return record{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Genre:       b.GenreOrEmpty(),
		Description: b.DescriptionOrEmpty(),
		Year:        b.Year,
		ISBN:        b.ISBNOrEmpty(),
		IsRead:      b.IsRead,
		AddedOn:     b.AddedOn.Format(dateLayout),
	}
}

func toRecords(books []entities.Book) []record {
	out := make([]record, 0, len(books))
	for _, b := range books {
		out = append(out, toRecord(b))
	}
	return out
}
