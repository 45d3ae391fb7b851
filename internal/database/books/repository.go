// Package books provides database operations for the library's books table.
//
// Every method issues a single statement against the injected *gorm.DB and
// commits immediately. Mutations are keyed by the immutable book ID, except
// DeleteByTitle which removes every exact title match.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.Add(books.NewBook{Title: "Dune", Author: "Frank Herbert"})
//	oldest, err := repo.OldestByYear()
package books

import (
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/bookworm/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// NewBook holds the values for an insert. Nil pointers are stored as NULL.
type NewBook struct {
	Title       string
	Author      string
	Genre       *string
	Description *string
	Year        *int
	ISBN        *string
}

// BookUpdate is a partial update. A field is applied only when it is non-nil;
// string fields additionally must be non-empty.
type BookUpdate struct {
	Title       *string
	Author      *string
	Genre       *string
	Description *string
	Year        *int
	ISBN        *string
}

// Add inserts a new book. A colliding ISBN yields ErrConstraintViolation.
func (r *Repository) Add(nb NewBook) (*entities.Book, error) {
	book := &entities.Book{
		Title:       nb.Title,
		Author:      nb.Author,
		Genre:       nb.Genre,
		Description: nb.Description,
		Year:        nb.Year,
		ISBN:        nb.ISBN,
	}
	if err := r.db.Create(book).Error; err != nil {
		return nil, translateError(err)
	}
	return book, nil
}

// GetAll returns every book in insertion order.
func (r *Repository) GetAll() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Order("id ASC").Find(&books).Error
	return books, err
}

// GetByID retrieves a book by its ID.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.First(&book, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &book, nil
}

// GetByTitle returns the first book (lowest ID) whose title matches exactly.
func (r *Repository) GetByTitle(title string) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.Where("title = ?", title).Order("id ASC").First(&book).Error; err != nil {
		return nil, translateError(err)
	}
	return &book, nil
}

// GetAllByTitle returns every book whose title matches exactly.
func (r *Repository) GetAllByTitle(title string) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Where("title = ?", title).Order("id ASC").Find(&books).Error
	return books, err
}

// GetByISBN retrieves the book owning the given ISBN.
func (r *Repository) GetByISBN(isbn string) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.Where("isbn = ?", isbn).First(&book).Error; err != nil {
		return nil, translateError(err)
	}
	return &book, nil
}

// SearchByTitle finds books whose title contains substr, ignoring case.
func (r *Repository) SearchByTitle(substr string) ([]entities.Book, error) {
	return r.contains("title", substr)
}

// SearchByAuthor finds books whose author contains substr, ignoring case.
func (r *Repository) SearchByAuthor(substr string) ([]entities.Book, error) {
	return r.contains("author", substr)
}

// SearchByGenre finds books whose genre contains substr, ignoring case.
func (r *Repository) SearchByGenre(substr string) ([]entities.Book, error) {
	return r.contains("genre", substr)
}

// SearchByDescription finds books whose description contains substr, ignoring case.
func (r *Repository) SearchByDescription(substr string) ([]entities.Book, error) {
	return r.contains("description", substr)
}

// SearchByISBN finds books whose ISBN contains substr, ignoring case.
func (r *Repository) SearchByISBN(substr string) ([]entities.Book, error) {
	return r.contains("isbn", substr)
}

// column is always one of the fixed names above, never user input.
func (r *Repository) contains(column, substr string) ([]entities.Book, error) {
	var books []entities.Book
	var err error
	pattern := "%" + escapeLike(substr) + "%"
	if r.db.Dialector.Name() == "sqlite" {
		// LOWER and LIKE in SQLite fold ASCII only.
		err = r.db.
			Where(sqliteLower+"("+column+") LIKE "+sqliteLower+"(?) ESCAPE '\\'", pattern).
			Order("id ASC").
			Find(&books).Error
	} else {
		err = r.db.
			Where(column+" ILIKE ? ESCAPE '\\'", pattern).
			Order("id ASC").
			Find(&books).Error
	}
	return books, err
}

// sqliteLower is registered on SQLite connections opened by database.OpenSQLite.
const sqliteLower = "unicode_lower"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// GetByYear returns books published in exactly the given year.
func (r *Repository) GetByYear(year int) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Where("year = ?", year).Order("id ASC").Find(&books).Error
	return books, err
}

// GetAllGenres returns the distinct non-empty genres in alphabetical order.
func (r *Repository) GetAllGenres() ([]string, error) {
	var genres []string
	err := r.db.Model(&entities.Book{}).
		Where("genre IS NOT NULL AND genre <> ''").
		Distinct().
		Order("genre ASC").
		Pluck("genre", &genres).Error
	return genres, err
}

// FilterByGenre returns books whose genre equals genre exactly, in ID order.
func (r *Repository) FilterByGenre(genre string) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Where("genre = ?", genre).Order("id ASC").Find(&books).Error
	return books, err
}

// FilterByGenreOrdered is FilterByGenre sorted the same way as OrderBy.
func (r *Repository) FilterByGenreOrdered(genre string, field OrderField, ascending bool) ([]entities.Book, error) {
	return r.ordered(r.db.Where("genre = ?", genre), field, ascending)
}

// ListMissingMetadata returns books lacking a description, year or genre.
func (r *Repository) ListMissingMetadata() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.
		Where("description IS NULL OR description = '' OR year IS NULL OR genre IS NULL OR genre = ''").
		Order("id ASC").
		Find(&books).Error
	return books, err
}

// Update applies a partial update to the book with the given ID.
// Returns ErrNotFound for an unknown ID and ErrConstraintViolation on an ISBN collision.
func (r *Repository) Update(id uint, u BookUpdate) error {
	fields := updateFields(u)
	if len(fields) == 0 {
		_, err := r.GetByID(id)
		return err
	}

	result := r.db.Model(&entities.Book{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func updateFields(u BookUpdate) map[string]interface{} {
	fields := make(map[string]interface{})
	setString := func(column string, v *string) {
		if v != nil && *v != "" {
			fields[column] = *v
		}
	}
	setString("title", u.Title)
	setString("author", u.Author)
	setString("genre", u.Genre)
	setString("description", u.Description)
	setString("isbn", u.ISBN)
	if u.Year != nil {
		fields["year"] = *u.Year
	}
	return fields
}

// ToggleReadStatus flips is_read for the given book in one statement.
func (r *Repository) ToggleReadStatus(id uint) error {
	result := r.db.Model(&entities.Book{}).Where("id = ?", id).Update("is_read", gorm.Expr("NOT is_read"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByID removes a single book.
func (r *Repository) DeleteByID(id uint) error {
	result := r.db.Delete(&entities.Book{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByTitle removes every book whose title matches exactly and reports how many were removed.
func (r *Repository) DeleteByTitle(title string) (int64, error) {
	result := r.db.Where("title = ?", title).Delete(&entities.Book{})
	return result.RowsAffected, result.Error
}
