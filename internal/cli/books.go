package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mrlokans/bookworm/internal/entities"
	"github.com/mrlokans/bookworm/internal/exporters"
	"github.com/mrlokans/bookworm/internal/services"
)

// AddCommand adds one book.
type AddCommand struct {
	base
	Input services.BookInput
}

func NewAddCommand() *AddCommand {
	return &AddCommand{base: newBase()}
}

func (cmd *AddCommand) ParseFlags(args []string) error {
	var year string
	fs := newFlagSet("add", "add -title <title> -author <author> -genre <genre> [options]", func(fs *flag.FlagSet) {
		cmd.registerDBFlag(fs)
		fs.StringVar(&cmd.Input.Title, "title", "", "Book title (required)")
		fs.StringVar(&cmd.Input.Author, "author", "", "Author (required)")
		fs.StringVar(&cmd.Input.Genre, "genre", "", "Genre (required)")
		fs.StringVar(&cmd.Input.Description, "description", "", "Free-form description")
		fs.StringVar(&year, "year", "", "Publication year")
		fs.StringVar(&cmd.Input.ISBN, "isbn", "", "ISBN, unique across the library")
	})
	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd.Input.Year = services.YearText(year)
	return nil
}

func (cmd *AddCommand) Run() error {
	app, err := cmd.openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	book, err := app.Library.AddBook(cmd.Input)
	if err != nil {
		return describeError(err)
	}
	cmd.printf("Added #%d %q by %s\n", book.ID, book.Title, book.Author)
	return nil
}

// ListCommand prints the library, optionally ordered or filtered by genre.
type ListCommand struct {
	base
	Order  string
	Desc   bool
	Genre  string
	Format string
}

func NewListCommand() *ListCommand {
	return &ListCommand{base: newBase()}
}

func (cmd *ListCommand) ParseFlags(args []string) error {
	fs := newFlagSet("list", "list [options]", func(fs *flag.FlagSet) {
		cmd.registerDBFlag(fs)
		fs.StringVar(&cmd.Order, "order", "", "Sort by: none, title, author, year, added_on")
		fs.BoolVar(&cmd.Desc, "desc", false, "Sort descending")
		fs.StringVar(&cmd.Genre, "genre", "", "Only list books of this genre")
		fs.StringVar(&cmd.Format, "format", "table", "Output format: table, csv, json or yaml")
	})
	return fs.Parse(args)
}

func (cmd *ListCommand) Run() error {
	app, err := cmd.openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	list, err := app.Library.List(services.ListOptions{Order: cmd.Order, Ascending: !cmd.Desc, Genre: cmd.Genre})
	if err != nil {
		return describeError(err)
	}
	return writeBooks(cmd.Out, cmd.Format, list)
}

// SearchCommand matches a substring (or year) against one field.
type SearchCommand struct {
	base
	Field  string
	Query  string
	Format string
}

func NewSearchCommand() *SearchCommand {
	return &SearchCommand{base: newBase()}
}

func (cmd *SearchCommand) ParseFlags(args []string) error {
	fs := newFlagSet("search", "search [-field title] -q <query>", func(fs *flag.FlagSet) {
		cmd.registerDBFlag(fs)
		fs.StringVar(&cmd.Field, "field", string(services.SearchTitle), "Field: title, author, genre, year, description, isbn")
		fs.StringVar(&cmd.Query, "q", "", "Search text; empty lists every book")
		fs.StringVar(&cmd.Format, "format", "table", "Output format: table, csv, json or yaml")
	})
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Query == "" && fs.NArg() > 0 {
		cmd.Query = strings.Join(fs.Args(), " ")
	}
	return nil
}

func (cmd *SearchCommand) Run() error {
	field, err := services.ParseSearchField(cmd.Field)
	if err != nil {
		return describeError(err)
	}

	app, err := cmd.openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	found, err := app.Library.Search(field, cmd.Query)
	if errors.Is(err, services.ErrNotFound) {
		cmd.printf("No books match %s %q\n", field, cmd.Query)
		return nil
	}
	if err != nil {
		return describeError(err)
	}
	return writeBooks(cmd.Out, cmd.Format, found)
}

// StatsCommand prints library statistics.
type StatsCommand struct {
	base
}

func NewStatsCommand() *StatsCommand {
	return &StatsCommand{base: newBase()}
}

func (cmd *StatsCommand) ParseFlags(args []string) error {
	fs := newFlagSet("stats", "stats [options]", func(fs *flag.FlagSet) {
		cmd.registerDBFlag(fs)
	})
	return fs.Parse(args)
}

func (cmd *StatsCommand) Run() error {
	app, err := cmd.openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	stats, err := app.Library.Statistics(time.Now())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Total books:\t%d\n", stats.TotalBooks)
	fmt.Fprintf(w, "Read:\t%d (%.2f%%)\n", stats.ReadCount, stats.ReadPercentage)
	fmt.Fprintf(w, "Unread:\t%d (%.2f%%)\n", stats.UnreadCount, stats.UnreadPercentage)
	fmt.Fprintf(w, "Most common genre:\t%s\n", orDash(stats.MostCommonGenre))
	fmt.Fprintf(w, "Oldest book:\t%s\n", orDash(stats.OldestBook))
	fmt.Fprintf(w, "Newest book:\t%s\n", orDash(stats.NewestBook))
	if stats.AverageYear != nil {
		fmt.Fprintf(w, "Average year:\t%.2f\n", *stats.AverageYear)
	} else {
		fmt.Fprintf(w, "Average year:\t-\n")
	}
	fmt.Fprintf(w, "Added last month:\t%d\n", stats.AddedLastMonth)
	return w.Flush()
}

// ToggleReadCommand flips a book's read flag.
type ToggleReadCommand struct {
	base
	ID uint
}

func NewToggleReadCommand() *ToggleReadCommand {
	return &ToggleReadCommand{base: newBase()}
}

func (cmd *ToggleReadCommand) ParseFlags(args []string) error {
	fs := newFlagSet("toggle-read", "toggle-read -id <id>", func(fs *flag.FlagSet) {
		cmd.registerDBFlag(fs)
		fs.UintVar(&cmd.ID, "id", 0, "Book ID (required)")
	})
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.ID == 0 {
		return fmt.Errorf("required flag -id not provided")
	}
	return nil
}

func (cmd *ToggleReadCommand) Run() error {
	app, err := cmd.openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	book, err := app.Library.ToggleRead(cmd.ID)
	if err != nil {
		return describeError(err)
	}
	state := "unread"
	if book.IsRead {
		state = "read"
	}
	cmd.printf("#%d %q is now %s\n", book.ID, book.Title, state)
	return nil
}

// DeleteCommand removes one book by ID or every book with an exact title.
type DeleteCommand struct {
	base
	ID    uint
	Title string
	Yes   bool
}

func NewDeleteCommand() *DeleteCommand {
	return &DeleteCommand{base: newBase()}
}

func (cmd *DeleteCommand) ParseFlags(args []string) error {
	fs := newFlagSet("delete", "delete (-id <id> | -title <title>) [-yes]", func(fs *flag.FlagSet) {
		cmd.registerDBFlag(fs)
		fs.UintVar(&cmd.ID, "id", 0, "Delete the book with this ID")
		fs.StringVar(&cmd.Title, "title", "", "Delete every book with exactly this title")
		fs.BoolVar(&cmd.Yes, "yes", false, "Skip the confirmation prompt")
	})
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (cmd.ID == 0) == (strings.TrimSpace(cmd.Title) == "") {
		return fmt.Errorf("exactly one of -id or -title is required")
	}
	return nil
}

func (cmd *DeleteCommand) Run() error {
	app, err := cmd.openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if cmd.ID != 0 {
		book, err := app.Library.GetBook(cmd.ID)
		if err != nil {
			return describeError(err)
		}
		if !cmd.Yes && !cmd.confirm(fmt.Sprintf("Delete #%d %q by %s?", book.ID, book.Title, book.Author)) {
			cmd.printf("Aborted\n")
			return nil
		}
		if err := app.Library.DeleteBook(cmd.ID); err != nil {
			return describeError(err)
		}
		cmd.printf("Deleted #%d\n", cmd.ID)
		return nil
	}

	matches, err := app.Library.FindByTitle(cmd.Title)
	if err != nil {
		return describeError(err)
	}
	if !cmd.Yes && !cmd.confirm(fmt.Sprintf("Delete %d book(s) titled %q?", len(matches), cmd.Title)) {
		cmd.printf("Aborted\n")
		return nil
	}
	removed, err := app.Library.DeleteByTitle(cmd.Title)
	if err != nil {
		return describeError(err)
	}
	cmd.printf("Deleted %d book(s)\n", removed)
	return nil
}

// writeBooks renders books as an aligned table or through a stream exporter.
func writeBooks(out io.Writer, format string, list []entities.Book) error {
	if format == "" || format == "table" {
		return writeTable(out, list)
	}
	f, err := exporters.ParseFormat(format)
	if err != nil {
		return err
	}
	exporter, err := exporters.New(f)
	if err != nil {
		return err
	}
	return exporter.Export(out, list)
}

func writeTable(out io.Writer, list []entities.Book) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(out, "No books")
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tGENRE\tYEAR\tREAD")
	for _, b := range list {
		year := "-"
		if b.Year != nil {
			year = strconv.Itoa(*b.Year)
		}
		read := ""
		if b.IsRead {
			read = "yes"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", b.ID, b.Title, b.Author, b.GenreOrEmpty(), year, read)
	}
	return w.Flush()
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

// describeError turns library errors into messages for the terminal.
func describeError(err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return fmt.Errorf("invalid %s: %s", verr.Field, verr.Message)
	case errors.Is(err, services.ErrNotFound):
		return errors.New("no matching book")
	case errors.Is(err, services.ErrConstraintViolation):
		return errors.New("a book with this ISBN already exists")
	default:
		return err
	}
}
