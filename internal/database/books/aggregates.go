package books

import (
	"database/sql"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookworm/internal/entities"
)

// OrderField names a column books can be sorted by.
type OrderField string

const (
	OrderByTitle   OrderField = "title"
	OrderByAuthor  OrderField = "author"
	OrderByYear    OrderField = "year"
	OrderByAddedOn OrderField = "added_on"
)

// ParseOrderField validates a user-supplied sort column.
func ParseOrderField(s string) (OrderField, error) {
	switch f := OrderField(s); f {
	case OrderByTitle, OrderByAuthor, OrderByYear, OrderByAddedOn:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOrderField, s)
	}
}

// OrderBy returns all books sorted by field. Books without a year always sort
// last; equal keys fall back to ID order.
func (r *Repository) OrderBy(field OrderField, ascending bool) ([]entities.Book, error) {
	return r.ordered(r.db, field, ascending)
}

func (r *Repository) ordered(query *gorm.DB, field OrderField, ascending bool) ([]entities.Book, error) {
	if _, err := ParseOrderField(string(field)); err != nil {
		return nil, err
	}

	dir := "ASC"
	if !ascending {
		dir = "DESC"
	}

	if field == OrderByYear {
		query = query.Order("year IS NULL ASC")
	}

	var books []entities.Book
	err := query.Order(string(field) + " " + dir).Order("id ASC").Find(&books).Error
	return books, err
}

// Count returns the number of books.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Count(&count).Error
	return count, err
}

// CountReadUnread returns the read and unread totals in one query.
func (r *Repository) CountReadUnread() (read, unread int64, err error) {
	var row struct {
		ReadCount int64
		Total     int64
	}
	err = r.db.Model(&entities.Book{}).
		Select("COALESCE(SUM(CASE WHEN is_read THEN 1 ELSE 0 END), 0) AS read_count, COUNT(*) AS total").
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.ReadCount, row.Total - row.ReadCount, nil
}

// CountAddedSince counts books whose added_on is at or after cutoff.
func (r *Repository) CountAddedSince(cutoff time.Time) (int64, error) {
	var count int64
	// added_on is written in UTC; SQLite compares the stored text.
	err := r.db.Model(&entities.Book{}).Where("added_on >= ?", cutoff.UTC()).Count(&count).Error
	return count, err
}

// MostCommonGenre returns the genre shared by the most books. Ties go to the
// genre whose earliest book has the lowest ID. Nil when no book has a genre.
func (r *Repository) MostCommonGenre() (*string, error) {
	var genres []string
	err := r.db.Model(&entities.Book{}).
		Where("genre IS NOT NULL AND genre <> ''").
		Group("genre").
		Order("COUNT(*) DESC").
		Order("MIN(id) ASC").
		Limit(1).
		Pluck("genre", &genres).Error
	if err != nil || len(genres) == 0 {
		return nil, err
	}
	return &genres[0], nil
}

// OldestByYear returns the title of the book with the smallest year, lowest ID first on ties.
func (r *Repository) OldestByYear() (*string, error) {
	return r.titleByYear("ASC")
}

// NewestByYear returns the title of the book with the largest year, lowest ID first on ties.
func (r *Repository) NewestByYear() (*string, error) {
	return r.titleByYear("DESC")
}

func (r *Repository) titleByYear(dir string) (*string, error) {
	var titles []string
	err := r.db.Model(&entities.Book{}).
		Where("year IS NOT NULL").
		Order("year "+dir).
		Order("id ASC").
		Limit(1).
		Pluck("title", &titles).Error
	if err != nil || len(titles) == 0 {
		return nil, err
	}
	return &titles[0], nil
}

// AverageYear returns the mean of all non-null years, or nil when there are none.
func (r *Repository) AverageYear() (*float64, error) {
	var avg sql.NullFloat64
	row := r.db.Model(&entities.Book{}).Select("CAST(AVG(year) AS DOUBLE PRECISION)").Row()
	if err := row.Scan(&avg); err != nil {
		return nil, err
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}
