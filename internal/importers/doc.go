// Package importers loads books from external files into the library.
//
// Every source implements Converter, turning its native format into rows of
// services.BookInput. The Pipeline then adds each row through the library
// service, so imported books get the same validation as books added by hand.
// A row that fails (missing title, duplicate ISBN, bad year) is reported with
// its line number and does not stop the import.
//
//	rows, parseErrs, err := importers.ParseCSV(file)
//	result := pipeline.Import(importers.NewCSVConverter(rows, parseErrs))
//
// Sources:
//
//   - CSVConverter: header-driven CSV, compatible with the CSV export
//   - JSONConverter: a JSON array of books, or the {"books": [...]} export document
package importers
