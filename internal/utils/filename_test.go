package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "removes invalid characters",
			input:    `file<>:"/\|?*name`,
			expected: "filename",
		},
		{
			name:     "replaces newlines and tabs with spaces",
			input:    "file\nname\twith\rspaces",
			expected: "file name with spaces",
		},
		{
			name:     "collapses multiple spaces",
			input:    "file   name  with    spaces",
			expected: "file name with spaces",
		},
		{
			name:     "removes hashtags",
			input:    "#hashtag #title",
			expected: "hashtag title",
		},
		{
			name:     "replaces square brackets",
			input:    "title [subtitle]",
			expected: "title (subtitle)",
		},
		{
			name:     "trims whitespace",
			input:    "  filename  ",
			expected: "filename",
		},
		{
			name:     "returns Untitled for empty",
			input:    "",
			expected: "Untitled",
		},
		{
			name:     "returns Untitled for only special chars",
			input:    "<>:?*",
			expected: "Untitled",
		},
		{
			name:     "truncates long names",
			input:    strings.Repeat("a", 250),
			expected: strings.Repeat("a", MaxFilenameRunes),
		},
		{
			name:     "removes pipes and carets",
			input:    "a|b^c",
			expected: "abc",
		},
		{
			name:     "handles unicode",
			input:    "Pamiętnik znaleziony w wannie",
			expected: "Pamiętnik znaleziony w wannie",
		},
		{
			name:     "complex case",
			input:    `Book: "The Title" [Vol. 1] #Series`,
			expected: "Book The Title (Vol. 1) Series",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeFilename(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSanitizeFilename_TruncatesOnRuneBoundary(t *testing.T) {
	input := strings.Repeat("ł", MaxFilenameRunes+20)
	result := SanitizeFilename(input)

	assert.Equal(t, MaxFilenameRunes, utf8.RuneCountInString(result))
	assert.True(t, utf8.ValidString(result))
}

func TestSanitizeFilename_StripsLeadingDots(t *testing.T) {
	assert.Equal(t, "hidden", SanitizeFilename("..hidden"))
	assert.Equal(t, "Untitled", SanitizeFilename("..."))
}
