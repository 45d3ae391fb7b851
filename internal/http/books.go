package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookworm/internal/entities"
	"github.com/mrlokans/bookworm/internal/services"
)

// BooksController serves the library CRUD, search and statistics endpoints.
type BooksController struct {
	library Library
	now     func() time.Time
}

func NewBooksController(library Library) *BooksController {
	return &BooksController{library: library, now: time.Now}
}

func respondBooks(c *gin.Context, books []entities.Book) {
	if books == nil {
		books = []entities.Book{}
	}
	c.JSON(http.StatusOK, BooksResponse{Count: len(books), Books: books})
}

// List handles GET /api/books?order=&dir=&genre=
func (bc *BooksController) List(c *gin.Context) {
	dir := strings.ToLower(c.DefaultQuery("dir", "asc"))
	if dir != "asc" && dir != "desc" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "dir must be asc or desc", Field: "dir"})
		return
	}

	list, err := bc.library.List(services.ListOptions{
		Order:     c.Query("order"),
		Ascending: dir == "asc",
		Genre:     c.Query("genre"),
	})
	if err != nil {
		respondServiceError(c, err, "list books")
		return
	}
	respondBooks(c, list)
}

// Search handles GET /api/books/search?field=&q=
func (bc *BooksController) Search(c *gin.Context) {
	field, err := services.ParseSearchField(c.DefaultQuery("field", string(services.SearchTitle)))
	if err != nil {
		respondServiceError(c, err, "search books")
		return
	}

	found, err := bc.library.Search(field, c.Query("q"))
	if err != nil {
		respondServiceError(c, err, "search books")
		return
	}
	respondBooks(c, found)
}

// ByTitle handles GET /api/books/by-title?title=
func (bc *BooksController) ByTitle(c *gin.Context) {
	title := strings.TrimSpace(c.Query("title"))
	if title == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "title is required", Field: "title"})
		return
	}

	found, err := bc.library.FindByTitle(title)
	if err != nil {
		respondServiceError(c, err, "find by title")
		return
	}
	respondBooks(c, found)
}

// Get handles GET /api/books/:id
func (bc *BooksController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.library.GetBook(id)
	if err != nil {
		respondServiceError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// Create handles POST /api/books
func (bc *BooksController) Create(c *gin.Context) {
	var in services.BookInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	book, err := bc.library.AddBook(in)
	if err != nil {
		respondServiceError(c, err, "add book")
		return
	}
	c.JSON(http.StatusCreated, book)
}

// Update handles PATCH /api/books/:id. Blank fields are left unchanged.
func (bc *BooksController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var in services.BookInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	book, err := bc.library.UpdateBook(id, in)
	if err != nil {
		respondServiceError(c, err, "update book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// ToggleRead handles POST /api/books/:id/toggle-read
func (bc *BooksController) ToggleRead(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.library.ToggleRead(id)
	if err != nil {
		respondServiceError(c, err, "toggle read")
		return
	}
	c.JSON(http.StatusOK, book)
}

// Delete handles DELETE /api/books/:id
func (bc *BooksController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := bc.library.DeleteBook(id); err != nil {
		respondServiceError(c, err, "delete book")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "book deleted", Data: gin.H{"id": id}})
}

// DeleteByTitle handles DELETE /api/books?title=. Every book with that exact title is removed.
func (bc *BooksController) DeleteByTitle(c *gin.Context) {
	title := strings.TrimSpace(c.Query("title"))
	if title == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "title is required", Field: "title"})
		return
	}

	removed, err := bc.library.DeleteByTitle(title)
	if err != nil {
		respondServiceError(c, err, "delete by title")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "books deleted", Data: gin.H{"deleted": removed}})
}

// Genres handles GET /api/genres
func (bc *BooksController) Genres(c *gin.Context) {
	genres, err := bc.library.Genres()
	if err != nil {
		respondInternalError(c, err, "list genres")
		return
	}
	if genres == nil {
		genres = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"genres": genres})
}

// Stats handles GET /api/stats
func (bc *BooksController) Stats(c *gin.Context) {
	stats, err := bc.library.Statistics(bc.now())
	if err != nil {
		respondInternalError(c, err, "statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}
