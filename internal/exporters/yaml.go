package exporters

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/mrlokans/bookworm/internal/entities"
)

type YAMLExporter struct{}

func (YAMLExporter) ContentType() string { return "application/yaml" }
func (YAMLExporter) Extension() string   { return "yaml" }

func (YAMLExporter) Export(w io.Writer, books []entities.Book) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(struct {
		Books []record `yaml:"books"`
	}{Books: toRecords(books)}); err != nil {
		return err
	}
	return enc.Close()
}
