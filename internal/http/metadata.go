package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookworm/internal/metadata"
	"github.com/mrlokans/bookworm/internal/services"
	"github.com/mrlokans/bookworm/internal/tasks"
)

const enrichTimeout = 30 * time.Second

// MetadataController handles book metadata enrichment endpoints.
// With a task queue the work is enqueued, otherwise it runs inside the request.
type MetadataController struct {
	enricher Enricher
	queue    TaskQueue
}

// NewMetadataController creates the controller. queue may be nil.
func NewMetadataController(enricher Enricher, queue TaskQueue) *MetadataController {
	return &MetadataController{enricher: enricher, queue: queue}
}

// EnrichBook handles POST /api/books/:id/enrich
func (mc *MetadataController) EnrichBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if mc.queue != nil {
		mc.enqueue(c, tasks.EnrichBookTask{BookID: id})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), enrichTimeout)
	defer cancel()

	result, err := mc.enricher.EnrichBook(ctx, id)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case errors.Is(err, services.ErrNotFound):
		respondNotFound(c, "book")
	case errors.Is(err, metadata.ErrNoMatch):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no metadata found for this book"})
	default:
		slog.Warn("Metadata lookup failed", "book_id", id, "error", err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "metadata lookup failed"})
	}
}

// EnrichAllMissing handles POST /api/books/enrich-all
func (mc *MetadataController) EnrichAllMissing(c *gin.Context) {
	if mc.queue != nil {
		mc.enqueue(c, tasks.EnrichAllBooksTask{RequestedAt: time.Now()})
		return
	}

	// Bulk runs are rate limited by the provider, so no per-request timeout.
	result, err := mc.enricher.EnrichAllMissing(c.Request.Context())
	if err != nil && result == nil {
		respondInternalError(c, err, "enrich all")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (mc *MetadataController) enqueue(c *gin.Context, task backlite.Task) {
	taskID, err := mc.queue.Enqueue(c.Request.Context(), task)
	if err != nil {
		respondInternalError(c, err, "enqueue enrichment")
		return
	}
	respondAccepted(c, "enrichment queued", gin.H{"task_id": taskID})
}
