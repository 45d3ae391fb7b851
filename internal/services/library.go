package services

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/mrlokans/bookworm/internal/database/books"
	"github.com/mrlokans/bookworm/internal/entities"
)

// RecentWindow is how far back Statistics looks for recently added books.
const RecentWindow = 30 * 24 * time.Hour

// SearchField selects which column Search matches against.
type SearchField string

const (
	SearchTitle       SearchField = "title"
	SearchAuthor      SearchField = "author"
	SearchGenre       SearchField = "genre"
	SearchYear        SearchField = "year"
	SearchDescription SearchField = "description"
	SearchISBN        SearchField = "isbn"
)

// ParseSearchField validates a user-chosen search column.
func ParseSearchField(s string) (SearchField, error) {
	switch f := SearchField(strings.ToLower(strings.TrimSpace(s))); f {
	case SearchTitle, SearchAuthor, SearchGenre, SearchYear, SearchDescription, SearchISBN:
		return f, nil
	default:
		return "", invalid("field", "must be one of title, author, genre, year, description, isbn")
	}
}

// ListOptions controls List. An empty Order ("none") keeps insertion order and
// an empty Genre lists every genre.
type ListOptions struct {
	Order     string
	Ascending bool
	Genre     string
}

// Statistics summarizes the library.
type Statistics struct {
	TotalBooks       int64    `json:"total_books"`
	ReadCount        int64    `json:"read_count"`
	UnreadCount      int64    `json:"unread_count"`
	ReadPercentage   float64  `json:"read_percentage"`
	UnreadPercentage float64  `json:"unread_percentage"`
	MostCommonGenre  *string  `json:"most_common_genre"`
	OldestBook       *string  `json:"oldest_book"`
	NewestBook       *string  `json:"newest_book"`
	AverageYear      *float64 `json:"average_year"`
	AddedLastMonth   int64    `json:"added_last_month"`
}

// LibraryService is the validating boundary every front end goes through.
// Input is checked here; the store only enforces ISBN uniqueness.
type LibraryService struct {
	store     BookStore
	audit     AuditLogger
	snapshots DeletionSnapshotter
}

// NewLibraryService creates the service. audit and snapshots may be nil.
func NewLibraryService(store BookStore, audit AuditLogger, snapshots DeletionSnapshotter) *LibraryService {
	return &LibraryService{store: store, audit: audit, snapshots: snapshots}
}

// AddBook validates and stores a new book.
func (s *LibraryService) AddBook(in BookInput) (*entities.Book, error) {
	nb, err := validateNew(in)
	if err != nil {
		return nil, err
	}
	book, err := s.store.Add(nb)
	if err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.LogBookAdd(book)
	}
	return book, nil
}

// UpdateBook applies the non-blank fields of in and returns the stored result.
func (s *LibraryService) UpdateBook(id uint, in BookInput) (*entities.Book, error) {
	u, err := validateUpdate(in)
	if err != nil {
		return nil, err
	}
	if err := s.store.Update(id, u); err != nil {
		return nil, err
	}
	book, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.LogBookUpdate(book)
	}
	return book, nil
}

func (s *LibraryService) GetBook(id uint) (*entities.Book, error) {
	return s.store.GetByID(id)
}

// FindByTitle returns every book with exactly this title.
func (s *LibraryService) FindByTitle(title string) ([]entities.Book, error) {
	found, err := s.store.GetAllByTitle(strings.TrimSpace(title))
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	return found, nil
}

// Search matches query against one field. An empty query returns the whole
// library; an empty result is ErrNotFound.
func (s *LibraryService) Search(field SearchField, query string) ([]entities.Book, error) {
	query = strings.TrimSpace(query)

	var (
		found []entities.Book
		err   error
	)
	switch {
	case query == "":
		found, err = s.store.GetAll()
	case field == SearchYear:
		year, perr := ParseYear(query)
		if perr != nil {
			return nil, perr
		}
		found, err = s.store.GetByYear(*year)
	case field == SearchTitle:
		found, err = s.store.SearchByTitle(query)
	case field == SearchAuthor:
		found, err = s.store.SearchByAuthor(query)
	case field == SearchGenre:
		found, err = s.store.SearchByGenre(query)
	case field == SearchDescription:
		found, err = s.store.SearchByDescription(query)
	case field == SearchISBN:
		found, err = s.store.SearchByISBN(query)
	default:
		_, err = ParseSearchField(string(field))
	}
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	return found, nil
}

// Genres lists the distinct genres in the library.
func (s *LibraryService) Genres() ([]string, error) {
	return s.store.GetAllGenres()
}

// List returns the library, optionally filtered to one genre and sorted.
func (s *LibraryService) List(opts ListOptions) ([]entities.Book, error) {
	order := strings.ToLower(strings.TrimSpace(opts.Order))
	var field books.OrderField
	if order != "" && order != "none" {
		f, err := books.ParseOrderField(order)
		if err != nil {
			return nil, invalid("order", "must be one of none, title, author, year, added_on")
		}
		field = f
	}

	genre := strings.TrimSpace(opts.Genre)
	if genre == "" {
		if field == "" {
			return s.store.GetAll()
		}
		return s.store.OrderBy(field, opts.Ascending)
	}

	genres, err := s.store.GetAllGenres()
	if err != nil {
		return nil, err
	}
	if !slices.Contains(genres, genre) {
		return nil, invalid("genre", "invalid genre option %q", genre)
	}
	if field == "" {
		return s.store.FilterByGenre(genre)
	}
	return s.store.FilterByGenreOrdered(genre, field, opts.Ascending)
}

// ToggleRead flips the read flag and returns the updated book.
func (s *LibraryService) ToggleRead(id uint) (*entities.Book, error) {
	if err := s.store.ToggleReadStatus(id); err != nil {
		return nil, err
	}
	book, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.LogToggleRead(book)
	}
	return book, nil
}

// DeleteBook removes exactly one book by ID.
func (s *LibraryService) DeleteBook(id uint) error {
	book, err := s.store.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteByID(id); err != nil {
		return err
	}
	s.snapshot("delete", []entities.Book{*book})
	if s.audit != nil {
		s.audit.LogBookDelete(book)
	}
	return nil
}

// DeleteByTitle removes every book with exactly this title and reports how many went.
func (s *LibraryService) DeleteByTitle(title string) (int64, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return 0, invalid("title", "must not be empty")
	}
	matches, err := s.store.GetAllByTitle(title)
	if err != nil {
		return 0, err
	}
	if len(matches) == 0 {
		return 0, ErrNotFound
	}
	removed, err := s.store.DeleteByTitle(title)
	if err != nil {
		return 0, err
	}
	s.snapshot("delete_by_title", matches)
	if s.audit != nil {
		s.audit.LogDeleteByTitle(title, removed)
	}
	return removed, nil
}

func (s *LibraryService) snapshot(reason string, deleted []entities.Book) {
	if s.snapshots == nil {
		return
	}
	if _, err := s.snapshots.SaveDeleted(reason, deleted); err != nil {
		slog.Warn("failed to snapshot deleted books", "reason", reason, "err", err)
	}
}

// Statistics gathers the aggregate figures shown on the stats page.
func (s *LibraryService) Statistics(now time.Time) (*Statistics, error) {
	total, err := s.store.Count()
	if err != nil {
		return nil, fmt.Errorf("count books: %w", err)
	}
	read, unread, err := s.store.CountReadUnread()
	if err != nil {
		return nil, fmt.Errorf("count read status: %w", err)
	}
	genre, err := s.store.MostCommonGenre()
	if err != nil {
		return nil, fmt.Errorf("most common genre: %w", err)
	}
	oldest, err := s.store.OldestByYear()
	if err != nil {
		return nil, fmt.Errorf("oldest book: %w", err)
	}
	newest, err := s.store.NewestByYear()
	if err != nil {
		return nil, fmt.Errorf("newest book: %w", err)
	}
	avg, err := s.store.AverageYear()
	if err != nil {
		return nil, fmt.Errorf("average year: %w", err)
	}
	recent, err := s.store.CountAddedSince(now.Add(-RecentWindow))
	if err != nil {
		return nil, fmt.Errorf("recently added: %w", err)
	}

	return &Statistics{
		TotalBooks:       total,
		ReadCount:        read,
		UnreadCount:      unread,
		ReadPercentage:   percentage(read, total),
		UnreadPercentage: percentage(unread, total),
		MostCommonGenre:  genre,
		OldestBook:       oldest,
		NewestBook:       newest,
		AverageYear:      avg,
		AddedLastMonth:   recent,
	}, nil
}

func percentage(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*10000) / 100
}
