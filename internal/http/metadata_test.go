package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookworm/internal/metadata"
	"github.com/mrlokans/bookworm/internal/services"
	"github.com/mrlokans/bookworm/internal/tasks"
)

type stubEnricher struct {
	err error
}

func (s *stubEnricher) EnrichBook(_ context.Context, bookID uint) (*metadata.EnrichmentResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &metadata.EnrichmentResult{BookID: bookID, UpdatedFields: []string{"year"}}, nil
}

func (s *stubEnricher) EnrichAllMissing(context.Context) (*metadata.BatchResult, error) {
	return &metadata.BatchResult{Total: 1, Enriched: 1}, nil
}

func metadataRouter(enricher Enricher, queue TaskQueue) *gin.Engine {
	gin.SetMode(gin.TestMode)
	mc := NewMetadataController(enricher, queue)
	router := gin.New()
	router.POST("/api/books/:id/enrich", mc.EnrichBook)
	router.POST("/api/books/enrich-all", mc.EnrichAllMissing)
	return router
}

func post(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
	return w
}

func TestMetadataController_Synchronous(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"enriched", nil, http.StatusOK},
		{"unknown book", services.ErrNotFound, http.StatusNotFound},
		{"no match", metadata.ErrNoMatch, http.StatusNotFound},
		{"provider down", errors.New("connection refused"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := metadataRouter(&stubEnricher{err: tt.err}, nil)
			w := post(router, "/api/books/7/enrich")
			assert.Equal(t, tt.code, w.Code, w.Body.String())
		})
	}

	router := metadataRouter(&stubEnricher{}, nil)
	w := post(router, "/api/books/enrich-all")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total":1,"enriched":1,"skipped":0,"failed":0,"results":null}`, w.Body.String())
}

func TestMetadataController_Queued(t *testing.T) {
	queue := &fakeQueue{}
	router := metadataRouter(&stubEnricher{}, queue)

	w := post(router, "/api/books/7/enrich")
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "task-1")

	w = post(router, "/api/books/enrich-all")
	require.Equal(t, http.StatusAccepted, w.Code)

	require.Len(t, queue.enqueued, 2)
	assert.Equal(t, tasks.EnrichBookTask{BookID: 7}, queue.enqueued[0])
	assert.IsType(t, tasks.EnrichAllBooksTask{}, queue.enqueued[1])

	w = post(router, "/api/books/abc/enrich")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
