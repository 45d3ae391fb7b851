package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const userAgent = "BookWorm/1.0 (https://github.com/mrlokans/bookworm)"

// ErrNoMatch is returned when OpenLibrary has nothing for the query.
var ErrNoMatch = errors.New("no matching book found")

// BookMetadata contains enriched book information from external sources.
type BookMetadata struct {
	Title           string   `json:"title,omitempty"`
	Author          string   `json:"author,omitempty"`
	ISBN            string   `json:"isbn,omitempty"`
	PublicationYear int      `json:"publication_year,omitempty"`
	Description     string   `json:"description,omitempty"`
	Subjects        []string `json:"subjects,omitempty"`
	OpenLibraryKey  string   `json:"open_library_key,omitempty"`
}

// OpenLibraryClient fetches book metadata from the OpenLibrary API.
type OpenLibraryClient struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// NewOpenLibraryClient creates a client allowing requestsPerSecond calls (burst 1).
func NewOpenLibraryClient(baseURL string, requestsPerSecond float64) *OpenLibraryClient {
	if baseURL == "" {
		baseURL = "https://openlibrary.org"
	}
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}
	return &OpenLibraryClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// getJSON waits for the limiter, fetches path and decodes the body into out.
func (c *OpenLibraryClient) getJSON(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNoMatch
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// SearchByISBN looks up an edition by its ISBN.
func (c *OpenLibraryClient) SearchByISBN(ctx context.Context, isbn string) (*BookMetadata, error) {
	isbn = normalizeISBN(isbn)
	if isbn == "" {
		return nil, fmt.Errorf("invalid ISBN")
	}

	var edition openLibraryEdition
	if err := c.getJSON(ctx, "/isbn/"+isbn+".json", &edition); err != nil {
		return nil, err
	}

	md := &BookMetadata{
		Title:           edition.Title,
		ISBN:            isbn,
		PublicationYear: extractYear(edition.PublishDate),
		Description:     edition.Description.String(),
		Subjects:        edition.Subjects,
		OpenLibraryKey:  edition.Key,
	}

	// Editions rarely carry a description; the work usually does.
	if md.Description == "" && len(edition.Works) > 0 {
		if desc, err := c.fetchWorkDescription(ctx, edition.Works[0].Key); err == nil {
			md.Description = desc
		}
	}

	return md, nil
}

// SearchByTitle looks up a book by title and author, returning the best match.
func (c *OpenLibraryClient) SearchByTitle(ctx context.Context, title, author string) (*BookMetadata, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("title is required")
	}

	params := url.Values{}
	params.Set("title", title)
	if author != "" {
		params.Set("author", author)
	}
	params.Set("limit", "5")

	var result openLibrarySearchResult
	if err := c.getJSON(ctx, "/search.json?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	if len(result.Docs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, title)
	}

	doc := findBestMatch(result.Docs, title, author)
	md := &BookMetadata{
		Title:           doc.Title,
		PublicationYear: doc.FirstPublishYear,
		OpenLibraryKey:  doc.Key,
	}
	if len(doc.AuthorName) > 0 {
		md.Author = doc.AuthorName[0]
	}
	if len(doc.ISBN) > 0 {
		md.ISBN = doc.ISBN[0]
	}
	if len(doc.Subject) > 0 {
		md.Subjects = doc.Subject
		if len(md.Subjects) > 10 {
			md.Subjects = md.Subjects[:10]
		}
	}

	if doc.Key != "" {
		if desc, err := c.fetchWorkDescription(ctx, doc.Key); err == nil {
			md.Description = desc
		}
	}

	return md, nil
}

func (c *OpenLibraryClient) fetchWorkDescription(ctx context.Context, workKey string) (string, error) {
	if workKey == "" {
		return "", fmt.Errorf("empty work key")
	}
	var work struct {
		Description textValue `json:"description"`
	}
	if err := c.getJSON(ctx, workKey+".json", &work); err != nil {
		return "", err
	}
	return work.Description.String(), nil
}

// findBestMatch prefers an exact title, then a matching author, then docs with ISBNs.
func findBestMatch(docs []openLibrarySearchDoc, title, author string) *openLibrarySearchDoc {
	titleLower := strings.ToLower(title)
	authorLower := strings.ToLower(author)

	best := &docs[0]
	bestScore := -1

	for i := range docs {
		doc := &docs[i]
		score := 0

		docTitle := strings.ToLower(doc.Title)
		if docTitle == titleLower {
			score += 10
		} else if strings.Contains(docTitle, titleLower) {
			score += 5
		}

		if author != "" {
			for _, name := range doc.AuthorName {
				name = strings.ToLower(name)
				if name == authorLower {
					score += 10
					break
				}
				if strings.Contains(name, authorLower) {
					score += 5
					break
				}
			}
		}

		if len(doc.ISBN) > 0 {
			score += 2
		}
		if len(doc.Subject) > 0 {
			score++
		}

		if score > bestScore {
			bestScore = score
			best = doc
		}
	}

	return best
}

// normalizeISBN removes hyphens and spaces; returns "" unless 10 or 13 characters remain.
func normalizeISBN(isbn string) string {
	isbn = strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(isbn))
	if len(isbn) != 10 && len(isbn) != 13 {
		return ""
	}
	return isbn
}

// extractYear tries to extract a 4-digit year from a date string.
func extractYear(dateStr string) int {
	dateStr = strings.TrimSpace(dateStr)
	if len(dateStr) < 4 {
		return 0
	}

	formats := []string{
		"2006",
		"January 2, 2006",
		"Jan 2, 2006",
		"2006-01-02",
		"January 2006",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t.Year()
		}
	}

	for i := 0; i <= len(dateStr)-4; i++ {
		var year int
		if _, err := fmt.Sscanf(dateStr[i:i+4], "%4d", &year); err == nil && year > 1000 && year < 3000 {
			return year
		}
	}
	return 0
}

// textValue decodes OpenLibrary text fields, which are either a plain string
// or an object of the form {"type": "/type/text", "value": "..."}.
type textValue string

func (t *textValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = textValue(s)
		return nil
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*t = textValue(obj.Value)
	return nil
}

func (t textValue) String() string {
	return strings.TrimSpace(string(t))
}

// OpenLibrary API response types (internal)

type keyRef struct {
	Key string `json:"key"`
}

type openLibraryEdition struct {
	Key         string    `json:"key"`
	Title       string    `json:"title"`
	PublishDate string    `json:"publish_date"`
	Description textValue `json:"description"`
	Subjects    []string  `json:"subjects"`
	Works       []keyRef  `json:"works"`
}

type openLibrarySearchResult struct {
	NumFound int                    `json:"numFound"`
	Docs     []openLibrarySearchDoc `json:"docs"`
}

type openLibrarySearchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	ISBN             []string `json:"isbn"`
	Subject          []string `json:"subject"`
}
