package exporters

import (
	"encoding/json"
	"io"

	"github.com/mrlokans/bookworm/internal/entities"
)

type JSONExporter struct {
	Indent bool
}

func (JSONExporter) ContentType() string { return "application/json" }
func (JSONExporter) Extension() string   { return "json" }

func (e JSONExporter) Export(w io.Writer, books []entities.Book) error {
	enc := json.NewEncoder(w)
	if e.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(map[string]any{
		"count": len(books),
		"books": toRecords(books),
	})
}
