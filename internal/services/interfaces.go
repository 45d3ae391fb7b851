package services

import (
	"time"

	"github.com/mrlokans/bookworm/internal/database/books"
	"github.com/mrlokans/bookworm/internal/entities"
)

// BookStore is the data-access contract the library service depends on.
// books.Repository is the production implementation.
type BookStore interface {
	Add(nb books.NewBook) (*entities.Book, error)
	GetAll() ([]entities.Book, error)
	GetByID(id uint) (*entities.Book, error)
	GetAllByTitle(title string) ([]entities.Book, error)

	SearchByTitle(substr string) ([]entities.Book, error)
	SearchByAuthor(substr string) ([]entities.Book, error)
	SearchByGenre(substr string) ([]entities.Book, error)
	SearchByDescription(substr string) ([]entities.Book, error)
	SearchByISBN(substr string) ([]entities.Book, error)
	GetByYear(year int) ([]entities.Book, error)

	GetAllGenres() ([]string, error)
	FilterByGenre(genre string) ([]entities.Book, error)
	FilterByGenreOrdered(genre string, field books.OrderField, ascending bool) ([]entities.Book, error)
	OrderBy(field books.OrderField, ascending bool) ([]entities.Book, error)

	Count() (int64, error)
	CountReadUnread() (read, unread int64, err error)
	CountAddedSince(cutoff time.Time) (int64, error)
	MostCommonGenre() (*string, error)
	OldestByYear() (*string, error)
	NewestByYear() (*string, error)
	AverageYear() (*float64, error)

	Update(id uint, u books.BookUpdate) error
	ToggleReadStatus(id uint) error
	DeleteByID(id uint) error
	DeleteByTitle(title string) (int64, error)
}

// AuditLogger records successful library writes.
type AuditLogger interface {
	LogBookAdd(book *entities.Book)
	LogBookUpdate(book *entities.Book)
	LogToggleRead(book *entities.Book)
	LogBookDelete(book *entities.Book)
	LogDeleteByTitle(title string, removed int64)
}

// DeletionSnapshotter keeps a copy of books before they are deleted.
type DeletionSnapshotter interface {
	SaveDeleted(reason string, books []entities.Book) (string, error)
}
