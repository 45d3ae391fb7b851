package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookworm/internal/config"
	"github.com/mrlokans/bookworm/internal/entrypoint"
)

type cliEnv struct {
	dir    string
	dbPath string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("AUDIT_DIR", filepath.Join(dir, "audit"))
	t.Setenv("AUTH_BCRYPT_COST", "4")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_LOG_LEVEL", "silent")
	return &cliEnv{dir: dir, dbPath: filepath.Join(dir, "library.db")}
}

// run parses args (with -db prepended) and runs cmd, returning its output.
func (e *cliEnv) run(t *testing.T, cmd Command, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	if b := baseOf(cmd); b != nil {
		b.Out = &out
		b.In = strings.NewReader(stdin)
	}
	if err := cmd.ParseFlags(append([]string{"-db", e.dbPath}, args...)); err != nil {
		return "", err
	}
	err := cmd.Run()
	return out.String(), err
}

func (e *cliEnv) mustRun(t *testing.T, cmd Command, args ...string) string {
	t.Helper()
	out, err := e.run(t, cmd, "", args...)
	require.NoError(t, err)
	return out
}

func baseOf(cmd Command) *base {
	switch c := cmd.(type) {
	case *AddCommand:
		return &c.base
	case *ListCommand:
		return &c.base
	case *SearchCommand:
		return &c.base
	case *StatsCommand:
		return &c.base
	case *ToggleReadCommand:
		return &c.base
	case *DeleteCommand:
		return &c.base
	case *ImportCommand:
		return &c.base
	case *ExportCommand:
		return &c.base
	case *SetPasswordCommand:
		return &c.base
	}
	return nil
}

func (e *cliEnv) seed(t *testing.T) {
	t.Helper()
	e.mustRun(t, NewAddCommand(), "-title", "Dune", "-author", "Frank Herbert", "-genre", "Sci-Fi", "-year", "1965")
	e.mustRun(t, NewAddCommand(), "-title", "Emma", "-author", "Jane Austen", "-genre", "Classic", "-year", "1815")
}

func TestAddAndList(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, NewAddCommand(), "-title", "Dune", "-author", "Frank Herbert", "-genre", "Sci-Fi", "-year", "1965")
	assert.Equal(t, "Added #1 \"Dune\" by Frank Herbert\n", out)

	_, err := env.run(t, NewAddCommand(), "", "-title", "Untitled", "-author", "Anon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid genre")

	_, err = env.run(t, NewAddCommand(), "", "-title", "X", "-author", "Y", "-genre", "Z", "-year", "soon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid year")

	env.mustRun(t, NewAddCommand(), "-title", "Emma", "-author", "Jane Austen", "-genre", "Classic")

	out = env.mustRun(t, NewListCommand(), "-order", "title", "-desc")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "Emma")
	assert.Contains(t, lines[2], "Dune")
	assert.Contains(t, lines[2], "1965")

	out = env.mustRun(t, NewListCommand(), "-genre", "Classic", "-format", "json")
	assert.Contains(t, out, `"title": "Emma"`)
	assert.NotContains(t, out, "Dune")
}

func TestListEmptyLibrary(t *testing.T) {
	env := newCLIEnv(t)
	assert.Equal(t, "No books\n", env.mustRun(t, NewListCommand()))
}

func TestSearch(t *testing.T) {
	env := newCLIEnv(t)
	env.seed(t)

	out := env.mustRun(t, NewSearchCommand(), "-field", "author", "-q", "austen")
	assert.Contains(t, out, "Emma")
	assert.NotContains(t, out, "Dune")

	out = env.mustRun(t, NewSearchCommand(), "-field", "year", "1965")
	assert.Contains(t, out, "Dune")

	out = env.mustRun(t, NewSearchCommand(), "-q", "zzz")
	assert.Equal(t, "No books match title \"zzz\"\n", out)

	_, err := env.run(t, NewSearchCommand(), "", "-field", "publisher", "-q", "x")
	assert.Error(t, err)
}

func TestStatsAndToggleRead(t *testing.T) {
	env := newCLIEnv(t)
	env.seed(t)

	out := env.mustRun(t, NewToggleReadCommand(), "-id", "1")
	assert.Equal(t, "#1 \"Dune\" is now read\n", out)

	out = env.mustRun(t, NewStatsCommand())
	assert.Contains(t, out, "Total books:")
	assert.Contains(t, out, "1 (50.00%)")
	assert.Contains(t, out, "Emma")

	_, err := env.run(t, NewToggleReadCommand(), "", "-id", "99")
	require.Error(t, err)
	assert.Equal(t, "no matching book", err.Error())

	_, err = env.run(t, NewToggleReadCommand(), "")
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	env := newCLIEnv(t)
	env.seed(t)
	env.mustRun(t, NewAddCommand(), "-title", "Dune", "-author", "Someone Else", "-genre", "Parody")

	_, err := env.run(t, NewDeleteCommand(), "")
	assert.Error(t, err)
	_, err = env.run(t, NewDeleteCommand(), "", "-id", "1", "-title", "Dune")
	assert.Error(t, err)

	out, err := env.run(t, NewDeleteCommand(), "n\n", "-id", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted")

	out, err = env.run(t, NewDeleteCommand(), "y\n", "-id", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted #2")

	out = env.mustRun(t, NewDeleteCommand(), "-title", "Dune", "-yes")
	assert.Equal(t, "Deleted 2 book(s)\n", out)

	assert.Equal(t, "No books\n", env.mustRun(t, NewListCommand()))

	_, err = env.run(t, NewDeleteCommand(), "", "-title", "Dune", "-yes")
	assert.Error(t, err)
}

func TestImportAndExport(t *testing.T) {
	env := newCLIEnv(t)

	csvPath := filepath.Join(env.dir, "books.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"title,author,genre,year,isbn\n"+
			"Dune,Frank Herbert,Sci-Fi,1965,9780441013593\n"+
			"Duplicate,Someone,Sci-Fi,,9780441013593\n"+
			"Emma,Jane Austen,Classic,1815,\n"), 0o644))

	out := env.mustRun(t, NewImportCommand(), "-file", csvPath, "-verbose")
	assert.Contains(t, out, "Imported 2 book(s), 1 failed")
	assert.Contains(t, out, "Duplicate")

	out = env.mustRun(t, NewExportCommand(), "-format", "yaml")
	assert.Contains(t, out, "title: Dune")

	jsonPath := filepath.Join(env.dir, "books.json")
	out = env.mustRun(t, NewExportCommand(), "-format", "json", "-output", jsonPath)
	assert.Contains(t, out, "Exported 2 book(s)")

	// Round trip the JSON export into a fresh library.
	other := &cliEnv{dir: env.dir, dbPath: filepath.Join(env.dir, "other.db")}
	out = other.mustRun(t, NewImportCommand(), "-file", jsonPath)
	assert.Contains(t, out, "Imported 2 book(s), 0 failed")

	catalog := filepath.Join(env.dir, "catalog")
	out = env.mustRun(t, NewExportCommand(), "-format", "markdown", "-output", catalog)
	assert.Contains(t, out, "Exported 2 book(s)")
	entries, err := os.ReadDir(catalog)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)

	_, err = env.run(t, NewExportCommand(), "", "-format", "markdown")
	assert.Error(t, err)
	_, err = env.run(t, NewExportCommand(), "", "-format", "pdf")
	assert.Error(t, err)
}

func TestSetPassword(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, NewSetPasswordCommand(), "", "-password", "short")
	assert.Error(t, err)

	out, err := env.run(t, NewSetPasswordCommand(), "correct horse battery\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Owner password updated")

	cfg := config.NewConfig()
	cfg.Database.Path = env.dbPath
	app, err := entrypoint.NewApp(cfg)
	require.NoError(t, err)
	defer app.Close()

	svc := app.AuthService()
	assert.True(t, svc.IsSetUp())
	assert.NoError(t, svc.Authenticate("correct horse battery"))
	assert.Error(t, svc.Authenticate("wrong horse battery"))
}

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		if name == "serve" {
			continue
		}
		cmd, ok := Lookup(name)
		assert.True(t, ok, name)
		assert.NotNil(t, baseOf(cmd), name)
	}
	_, ok := Lookup("nope")
	assert.False(t, ok)
}
