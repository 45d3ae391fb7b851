package services

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mrlokans/bookworm/internal/database/books"
	"github.com/mrlokans/bookworm/internal/entities"
)

// YearText is a publication year as typed by a user. It accepts JSON numbers
// as well as strings so form and API clients can share one payload.
type YearText string

func (y *YearText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*y = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*y = YearText(s)
		return nil
	}
	*y = YearText(data)
	return nil
}

// BookInput is the raw, untrusted form of a book coming from any front end.
type BookInput struct {
	Title       string   `json:"title" yaml:"title" jsonschema:"maxLength=200,description=Book title"`
	Author      string   `json:"author" yaml:"author" jsonschema:"maxLength=100"`
	Genre       string   `json:"genre,omitempty" yaml:"genre,omitempty" jsonschema:"maxLength=50"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Year        YearText `json:"year,omitempty" yaml:"year,omitempty" jsonschema:"description=Publication year; a non-negative whole number"`
	ISBN        string   `json:"isbn,omitempty" yaml:"isbn,omitempty" jsonschema:"maxLength=20"`
}

func (in BookInput) trimmed() BookInput {
	return BookInput{
		Title:       strings.TrimSpace(in.Title),
		Author:      strings.TrimSpace(in.Author),
		Genre:       strings.TrimSpace(in.Genre),
		Description: strings.TrimSpace(in.Description),
		Year:        YearText(strings.TrimSpace(string(in.Year))),
		ISBN:        strings.TrimSpace(in.ISBN),
	}
}

// ParseYear converts user text into a year. Empty text means "no year".
func ParseYear(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	year, err := strconv.Atoi(s)
	if err != nil {
		return nil, invalid("year", "must be a whole number")
	}
	if year < 0 {
		return nil, invalid("year", "must not be negative")
	}
	return &year, nil
}

func checkLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return invalid(field, "must be at most %d characters", max)
	}
	return nil
}

func checkLengths(in BookInput) error {
	checks := []struct {
		field string
		value string
		max   int
	}{
		{"title", in.Title, entities.TitleMaxLength},
		{"author", in.Author, entities.AuthorMaxLength},
		{"genre", in.Genre, entities.GenreMaxLength},
		{"isbn", in.ISBN, entities.ISBNMaxLength},
	}
	for _, c := range checks {
		if err := checkLength(c.field, c.value, c.max); err != nil {
			return err
		}
	}
	return nil
}

// validateNew checks an add request and converts it to a store insert.
func validateNew(in BookInput) (books.NewBook, error) {
	in = in.trimmed()
	for _, req := range []struct{ field, value string }{
		{"title", in.Title},
		{"author", in.Author},
		{"genre", in.Genre},
	} {
		if req.value == "" {
			return books.NewBook{}, invalid(req.field, "must not be empty")
		}
	}
	if err := checkLengths(in); err != nil {
		return books.NewBook{}, err
	}
	year, err := ParseYear(string(in.Year))
	if err != nil {
		return books.NewBook{}, err
	}

	return books.NewBook{
		Title:       in.Title,
		Author:      in.Author,
		Genre:       optional(in.Genre),
		Description: optional(in.Description),
		Year:        year,
		ISBN:        optional(in.ISBN),
	}, nil
}

// validateUpdate checks an edit request. Blank fields leave the stored value unchanged.
func validateUpdate(in BookInput) (books.BookUpdate, error) {
	in = in.trimmed()
	if err := checkLengths(in); err != nil {
		return books.BookUpdate{}, err
	}
	year, err := ParseYear(string(in.Year))
	if err != nil {
		return books.BookUpdate{}, err
	}

	return books.BookUpdate{
		Title:       optional(in.Title),
		Author:      optional(in.Author),
		Genre:       optional(in.Genre),
		Description: optional(in.Description),
		Year:        year,
		ISBN:        optional(in.ISBN),
	}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
