package exporters

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/mrlokans/bookworm/internal/entities"
)

// CSVHeader is shared with the CSV importer so exports can be re-imported.
var CSVHeader = []string{"title", "author", "genre", "description", "year", "isbn", "is_read", "added_on"}

type CSVExporter struct{}

func (CSVExporter) ContentType() string { return "text/csv; charset=utf-8" }
func (CSVExporter) Extension() string   { return "csv" }

func (CSVExporter) Export(w io.Writer, books []entities.Book) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, b := range books {
		r := toRecord(b)
		year := ""
		if r.Year != nil {
			year = strconv.Itoa(*r.Year)
		}
		row := []string{r.Title, r.Author, r.Genre, r.Description, year, r.ISBN, strconv.FormatBool(r.IsRead), r.AddedOn}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
