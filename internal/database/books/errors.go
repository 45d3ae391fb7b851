package books

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no book matches the lookup.
	ErrNotFound = errors.New("book not found")

	// ErrConstraintViolation is returned when a write collides with a unique column.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrInvalidOrderField is returned by OrderBy for unknown columns.
	ErrInvalidOrderField = errors.New("invalid order field")
)

// ConstraintError carries the column whose uniqueness a write violated.
type ConstraintError struct {
	Field string
	Err   error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s already used by another book: %v", e.Field, e.Err)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

func (e *ConstraintError) Is(target error) bool {
	return target == ErrConstraintViolation
}

// translateError maps store errors onto the package's error kinds.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &ConstraintError{Field: "isbn", Err: err}
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint &&
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return &ConstraintError{Field: fieldFromMessage(sqliteErr.Error()), Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return &ConstraintError{Field: fieldFromMessage(pgErr.ConstraintName), Err: err}
	}

	return err
}

// fieldFromMessage extracts the column name from "UNIQUE constraint failed: books.isbn"
// or an index name such as "idx_books_isbn".
func fieldFromMessage(msg string) string {
	if i := strings.LastIndex(msg, "books."); i >= 0 {
		return strings.TrimSpace(msg[i+len("books."):])
	}
	if i := strings.LastIndex(msg, "idx_books_"); i >= 0 {
		return msg[i+len("idx_books_"):]
	}
	return "isbn"
}
