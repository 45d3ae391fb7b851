// Package cli implements the bookworm subcommands. Each command parses its
// own flag.FlagSet and works against the same library the HTTP API uses.
package cli

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrlokans/bookworm/internal/config"
	"github.com/mrlokans/bookworm/internal/entrypoint"
)

// Command is a parsed-then-run subcommand.
type Command interface {
	ParseFlags(args []string) error
	Run() error
}

// base carries the flags and streams every command shares.
type base struct {
	DatabasePath string
	Out          io.Writer
	In           io.Reader
}

func newBase() base {
	return base{Out: os.Stdout, In: os.Stdin}
}

func (b *base) registerDBFlag(fs *flag.FlagSet) {
	fs.StringVar(&b.DatabasePath, "db", "", "Path to the SQLite library database (default: $DATABASE_PATH or "+config.DefaultDatabasePath+")")
}

// openApp loads the environment configuration, applying the -db override.
func (b *base) openApp() (*entrypoint.App, error) {
	cfg := config.NewConfig()
	if b.DatabasePath != "" {
		abs, err := filepath.Abs(b.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for database: %w", err)
		}
		cfg.Database.Driver = config.DriverSQLite
		cfg.Database.Path = abs
	}
	return entrypoint.NewApp(cfg)
}

func (b *base) printf(format string, args ...any) {
	fmt.Fprintf(b.Out, format, args...)
}

// readLine reads one line from In, without the trailing newline.
func (b *base) readLine() (string, error) {
	line, err := bufio.NewReader(b.In).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// confirm asks a yes/no question; only "y" or "yes" confirms.
func (b *base) confirm(question string) bool {
	b.printf("%s [y/N]: ", question)
	answer, err := b.readLine()
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func newFlagSet(name, usage string, fs func(*flag.FlagSet)) *flag.FlagSet {
	set := flag.NewFlagSet(name, flag.ContinueOnError)
	fs(set)
	set.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s %s\n\n", filepath.Base(os.Args[0]), usage)
		fmt.Fprintf(os.Stderr, "Options:\n")
		set.PrintDefaults()
	}
	return set
}

// Lookup returns the command registered under name.
func Lookup(name string) (Command, bool) {
	switch name {
	case "add":
		return NewAddCommand(), true
	case "list":
		return NewListCommand(), true
	case "search":
		return NewSearchCommand(), true
	case "stats":
		return NewStatsCommand(), true
	case "toggle-read":
		return NewToggleReadCommand(), true
	case "delete":
		return NewDeleteCommand(), true
	case "import-csv":
		return NewImportCommand(), true
	case "export":
		return NewExportCommand(), true
	case "set-password":
		return NewSetPasswordCommand(), true
	default:
		return nil, false
	}
}

// Names lists the registered subcommands for usage output.
func Names() []string {
	return []string{"serve", "add", "list", "search", "stats", "toggle-read", "delete", "import-csv", "export", "set-password"}
}
