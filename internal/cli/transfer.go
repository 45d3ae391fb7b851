package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrlokans/bookworm/internal/exporters"
	"github.com/mrlokans/bookworm/internal/importers"
	"github.com/mrlokans/bookworm/internal/services"
)

// ImportCommand imports books from a CSV file (or a JSON export).
type ImportCommand struct {
	base
	FilePath string
	Verbose  bool
}

func NewImportCommand() *ImportCommand {
	return &ImportCommand{base: newBase()}
}

func (cmd *ImportCommand) ParseFlags(args []string) error {
	fs := newFlagSet("import-csv", "import-csv -file <books.csv> [options]", func(fs *flag.FlagSet) {
		cmd.registerDBFlag(fs)
		fs.StringVar(&cmd.FilePath, "file", "", "CSV file with a title,author,genre,... header; .json files use the JSON export format (required)")
		fs.BoolVar(&cmd.Verbose, "verbose", false, "Print every failed row")
	})
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.FilePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}
	return nil
}

func (cmd *ImportCommand) Run() error {
	file, err := os.Open(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer file.Close()

	var converter importers.Converter
	if strings.EqualFold(filepath.Ext(cmd.FilePath), ".json") {
		list, err := importers.ParseJSON(file)
		if err != nil {
			return fmt.Errorf("failed to parse JSON: %w", err)
		}
		converter = importers.NewJSONConverter(list)
	} else {
		rows, rowErrs, err := importers.ParseCSV(file)
		if err != nil {
			return fmt.Errorf("failed to parse CSV: %w", err)
		}
		converter = importers.NewCSVConverter(rows, rowErrs)
	}

	app, err := cmd.openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	result := app.ImportPipeline().Import(converter)
	cmd.printf("Imported %d book(s), %d failed\n", result.Imported, result.Failed)
	if cmd.Verbose || result.Imported == 0 {
		for _, rowErr := range result.Errors {
			cmd.printf("  %s\n", rowErr)
		}
	}
	return nil
}

// ExportCommand writes the library to a file, stdout, or a Markdown catalog directory.
type ExportCommand struct {
	base
	Format string
	Output string
	Genre  string
}

func NewExportCommand() *ExportCommand {
	return &ExportCommand{base: newBase()}
}

func (cmd *ExportCommand) ParseFlags(args []string) error {
	fs := newFlagSet("export", "export [-format csv|json|yaml|markdown] [-output <path>]", func(fs *flag.FlagSet) {
		cmd.registerDBFlag(fs)
		fs.StringVar(&cmd.Format, "format", string(exporters.FormatCSV), "csv, json, yaml or markdown")
		fs.StringVar(&cmd.Output, "output", "", "Output file (stdout if empty); a directory for markdown")
		fs.StringVar(&cmd.Genre, "genre", "", "Only export books of this genre")
	})
	if err := fs.Parse(args); err != nil {
		return err
	}
	format, err := exporters.ParseFormat(cmd.Format)
	if err != nil {
		return err
	}
	if format == exporters.FormatMarkdown && cmd.Output == "" {
		return fmt.Errorf("markdown export requires -output <directory>")
	}
	return nil
}

func (cmd *ExportCommand) Run() error {
	format, err := exporters.ParseFormat(cmd.Format)
	if err != nil {
		return err
	}

	app, err := cmd.openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	list, err := app.Library.List(services.ListOptions{Genre: cmd.Genre})
	if err != nil {
		return describeError(err)
	}

	if format == exporters.FormatMarkdown {
		result, err := exporters.NewCatalogExporter(cmd.Output).Export(list)
		app.Audit.LogExport(string(format), fmt.Sprintf("CLI catalog export to %s", cmd.Output), err)
		if err != nil {
			return fmt.Errorf("failed to export catalog: %w", err)
		}
		cmd.printf("Exported %d book(s) to %s\n", result.BooksProcessed, cmd.Output)
		if result.BooksFailed > 0 {
			cmd.printf("%d book(s) failed to export\n", result.BooksFailed)
		}
		return nil
	}

	exporter, err := exporters.New(format)
	if err != nil {
		return err
	}
	if cmd.Output == "" {
		return exporter.Export(cmd.Out, list)
	}

	f, err := os.Create(cmd.Output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	err = exporter.Export(f, list)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	app.Audit.LogExport(string(format), fmt.Sprintf("CLI export of %d book(s) to %s", len(list), cmd.Output), err)
	if err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	cmd.printf("Exported %d book(s) to %s\n", len(list), cmd.Output)
	return nil
}
