package exporters

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mrlokans/bookworm/internal/entities"
	"github.com/mrlokans/bookworm/internal/utils"
)

// CatalogExporter writes one markdown note per book plus an index into Dir.
type CatalogExporter struct {
	Dir           string
	IndexFileName string
}

func NewCatalogExporter(dir string) *CatalogExporter {
	return &CatalogExporter{
		Dir:           dir,
		IndexFileName: "index.md",
	}
}

type frontMatter struct {
	Title   string   `yaml:"title"`
	Author  string   `yaml:"author"`
	Genre   string   `yaml:"genre,omitempty"`
	Year    *int     `yaml:"year,omitempty"`
	ISBN    string   `yaml:"isbn,omitempty"`
	Status  string   `yaml:"status"`
	AddedOn string   `yaml:"added_on"`
	Tags    []string `yaml:"tags"`
}

func status(b *entities.Book) string {
	if b.IsRead {
		return "read"
	}
	return "unread"
}

// GenerateMarkdown renders a single book note with YAML front matter.
func GenerateMarkdown(book *entities.Book) string {
	fm := frontMatter{
		Title:   book.Title,
		Author:  book.Author,
		Genre:   book.GenreOrEmpty(),
		Year:    book.Year,
		ISBN:    book.ISBNOrEmpty(),
		Status:  status(book),
		AddedOn: book.AddedOn.Format(dateLayout),
		Tags:    []string{"books", status(book)},
	}
	header, err := yaml.Marshal(fm)
	if err != nil {
		// only reachable with unsupported field types
		header = []byte(fmt.Sprintf("title: %q\n", book.Title))
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "# %s\n\n", book.Title)
	fmt.Fprintf(&b, "*by %s*\n\n", book.Author)
	if desc := book.DescriptionOrEmpty(); desc != "" {
		b.WriteString("## Description\n\n")
		b.WriteString(desc)
		b.WriteString("\n")
	}
	return b.String()
}

// noteNames assigns each book a unique sanitized filename; duplicates get their id appended.
func noteNames(books []entities.Book) []string {
	seen := make(map[string]int, len(books))
	for _, b := range books {
		seen[strings.ToLower(utils.SanitizeFilename(b.Title))]++
	}
	names := make([]string, len(books))
	for i, b := range books {
		name := utils.SanitizeFilename(b.Title)
		if seen[strings.ToLower(name)] > 1 {
			name = name + " (" + strconv.FormatUint(uint64(b.ID), 10) + ")"
		}
		names[i] = name + ".md"
	}
	return names
}

// Export writes all notes and the index. A failed note is counted and skipped.
func (e *CatalogExporter) Export(books []entities.Book) (ExportResult, error) {
	result := ExportResult{}
	if strings.TrimSpace(e.Dir) == "" {
		return result, fmt.Errorf("export directory not configured")
	}
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return result, fmt.Errorf("failed to create export directory: %w", err)
	}

	names := noteNames(books)
	written := make([]int, 0, len(books))
	for i := range books {
		path := filepath.Join(e.Dir, names[i])
		if err := os.WriteFile(path, []byte(GenerateMarkdown(&books[i])), 0o644); err != nil {
			slog.Warn("Failed to write catalog note", "title", books[i].Title, "path", path, "error", err)
			result.BooksFailed++
			continue
		}
		result.BooksProcessed++
		result.Files = append(result.Files, path)
		written = append(written, i)
	}

	indexPath := filepath.Join(e.Dir, e.IndexFileName)
	if err := os.WriteFile(indexPath, []byte(e.index(books, names, written)), 0o644); err != nil {
		return result, fmt.Errorf("failed to write index: %w", err)
	}
	result.Files = append(result.Files, indexPath)

	return result, nil
}

func (e *CatalogExporter) index(books []entities.Book, names []string, written []int) string {
	byGenre := map[string][]int{}
	for _, i := range written {
		g := books[i].GenreOrEmpty()
		if g == "" {
			g = "Uncategorized"
		}
		byGenre[g] = append(byGenre[g], i)
	}
	genres := make([]string, 0, len(byGenre))
	for g := range byGenre {
		genres = append(genres, g)
	}
	sort.Strings(genres)

	var b strings.Builder
	fmt.Fprintf(&b, "# Library\n\n%d books\n", len(written))
	for _, g := range genres {
		fmt.Fprintf(&b, "\n## %s\n\n", g)
		for _, i := range byGenre[g] {
			check := " "
			if books[i].IsRead {
				check = "x"
			}
			link := strings.TrimSuffix(names[i], ".md")
			fmt.Fprintf(&b, "- [%s] [[%s]] by %s\n", check, link, books[i].Author)
		}
	}
	return b.String()
}
