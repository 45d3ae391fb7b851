package entities

import "time"

// Column size limits for the books table.
const (
	TitleMaxLength  = 200
	AuthorMaxLength = 100
	GenreMaxLength  = 50
	ISBNMaxLength   = 20
)

// Book is a single entry of the personal library.
type Book struct {
	ID          uint      `gorm:"primaryKey" json:"id" yaml:"id"`
	Title       string    `gorm:"index;size:200;not null" json:"title" yaml:"title"`
	Author      string    `gorm:"size:100;not null" json:"author" yaml:"author"`
	Genre       *string   `gorm:"size:50" json:"genre,omitempty" yaml:"genre,omitempty"`
	Description *string   `gorm:"type:text" json:"description,omitempty" yaml:"description,omitempty"`
	Year        *int      `json:"year,omitempty" yaml:"year,omitempty"`
	ISBN        *string   `gorm:"uniqueIndex;size:20" json:"isbn,omitempty" yaml:"isbn,omitempty"`
	IsRead      bool      `gorm:"not null;default:false" json:"is_read" yaml:"is_read"`
	AddedOn     time.Time `gorm:"autoCreateTime;not null" json:"added_on" yaml:"added_on"`
}

func (Book) TableName() string {
	return "books"
}

// GenreOrEmpty returns the genre or an empty string when unset.
func (b *Book) GenreOrEmpty() string {
	return deref(b.Genre)
}

func (b *Book) DescriptionOrEmpty() string {
	return deref(b.Description)
}

func (b *Book) ISBNOrEmpty() string {
	return deref(b.ISBN)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
