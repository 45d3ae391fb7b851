package http

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/invopop/jsonschema"

	"github.com/mrlokans/bookworm/internal/entities"
	"github.com/mrlokans/bookworm/internal/services"
)

var (
	schemaOnce  sync.Once
	bookSchemas map[string]*jsonschema.Schema
)

func loadSchemas() map[string]*jsonschema.Schema {
	schemaOnce.Do(func() {
		r := jsonschema.Reflector{Anonymous: true, DoNotReference: true}
		bookSchemas = map[string]*jsonschema.Schema{
			"input": r.Reflect(&services.BookInput{}),
			"book":  r.Reflect(&entities.Book{}),
		}
	})
	return bookSchemas
}

// BookSchema handles GET /api/schema/book?kind=input|book
// "input" describes the create/update payload, "book" the stored record.
func BookSchema(c *gin.Context) {
	kind := c.DefaultQuery("kind", "input")
	schema, ok := loadSchemas()[kind]
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "kind must be input or book", Field: "kind"})
		return
	}
	c.JSON(http.StatusOK, schema)
}
