package utils

import (
	"regexp"
	"strings"
)

// MaxFilenameRunes leaves room for an extension and a " (id)" suffix.
const MaxFilenameRunes = 180

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	multipleSpaces       = regexp.MustCompile(`\s+`)
)

// SanitizeFilename turns a book title into a filename that also works as an
// Obsidian wiki link: no path separators, hashes, brackets or pipes.
func SanitizeFilename(filename string) string {
	filename = strings.Map(func(r rune) rune {
		switch r {
		case '\r', '\n', '\t':
			return ' '
		}
		return r
	}, filename)
	filename = invalidFilenameChars.ReplaceAllString(filename, "")
	filename = multipleSpaces.ReplaceAllString(filename, " ")

	filename = strings.ReplaceAll(filename, "#", "")
	filename = strings.ReplaceAll(filename, "^", "")
	filename = strings.ReplaceAll(filename, "[", "(")
	filename = strings.ReplaceAll(filename, "]", ")")

	// leading dots would hide the file
	filename = strings.TrimLeft(strings.TrimSpace(filename), ".")
	filename = strings.TrimSpace(filename)

	if r := []rune(filename); len(r) > MaxFilenameRunes {
		filename = strings.TrimSpace(string(r[:MaxFilenameRunes]))
	}

	if filename == "" {
		filename = "Untitled"
	}
	return filename
}
