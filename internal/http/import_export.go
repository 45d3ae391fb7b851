package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookworm/internal/exporters"
	"github.com/mrlokans/bookworm/internal/importers"
	"github.com/mrlokans/bookworm/internal/services"
)

// MaxUploadSize caps import uploads.
const MaxUploadSize = 10 << 20

// ImportController accepts CSV and JSON book uploads.
type ImportController struct {
	pipeline *importers.Pipeline
}

func NewImportController(pipeline *importers.Pipeline) *ImportController {
	return &ImportController{pipeline: pipeline}
}

// uploadedFile returns the "file" form field, or the raw body for
// non-multipart requests.
func uploadedFile(c *gin.Context) (io.ReadCloser, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize)

	if c.ContentType() != "multipart/form-data" {
		return c.Request.Body, nil
	}

	header, err := c.FormFile("file")
	if err != nil {
		return nil, errors.New("file is required")
	}
	return openUpload(header)
}

func openUpload(header *multipart.FileHeader) (io.ReadCloser, error) {
	if header.Size > MaxUploadSize {
		return nil, fmt.Errorf("file exceeds %d bytes", MaxUploadSize)
	}
	return header.Open()
}

// ImportCSV handles POST /api/import/csv
// Row failures are reported in the result; only unreadable files are rejected.
func (ic *ImportController) ImportCSV(c *gin.Context) {
	file, err := uploadedFile(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	defer file.Close()

	rows, parseErrs, err := importers.ParseCSV(file)
	if err != nil {
		respondBadRequest(c, "invalid CSV: "+err.Error())
		return
	}

	result := ic.pipeline.Import(importers.NewCSVConverter(rows, parseErrs))
	c.JSON(http.StatusOK, result)
}

// ImportJSON handles POST /api/import/json. It accepts the JSON export format.
func (ic *ImportController) ImportJSON(c *gin.Context) {
	file, err := uploadedFile(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	defer file.Close()

	books, err := importers.ParseJSON(file)
	if err != nil {
		respondBadRequest(c, "invalid JSON: "+err.Error())
		return
	}

	result := ic.pipeline.Import(importers.NewJSONConverter(books))
	c.JSON(http.StatusOK, result)
}

// ExportController streams the library in one of the download formats.
type ExportController struct {
	library Library
	audit   ExportAuditor
	now     func() time.Time
}

// NewExportController creates the controller. audit may be nil.
func NewExportController(library Library, audit ExportAuditor) *ExportController {
	return &ExportController{library: library, audit: audit, now: time.Now}
}

// Download handles GET /api/export?format=csv|json|yaml&genre=
func (ec *ExportController) Download(c *gin.Context) {
	format, err := exporters.ParseFormat(c.DefaultQuery("format", string(exporters.FormatCSV)))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Field: "format"})
		return
	}
	if format == exporters.FormatMarkdown {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "markdown is exported to the catalog directory, use POST /api/export/run",
			Field: "format",
		})
		return
	}
	exporter, err := exporters.New(format)
	if err != nil {
		respondInternalError(c, err, "export")
		return
	}

	books, err := ec.library.List(services.ListOptions{Genre: c.Query("genre")})
	if err != nil {
		respondServiceError(c, err, "export")
		return
	}

	// Render fully before writing headers so a failure still yields a clean 500.
	var buf bytes.Buffer
	if err := exporter.Export(&buf, books); err != nil {
		ec.logExport(format, "", err)
		respondInternalError(c, err, "export")
		return
	}

	filename := fmt.Sprintf("bookworm-%s.%s", ec.now().Format("20060102"), exporter.Extension())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, exporter.ContentType(), buf.Bytes())

	ec.logExport(format, fmt.Sprintf("Downloaded %d books as %s", len(books), format), nil)
}

func (ec *ExportController) logExport(format exporters.Format, desc string, err error) {
	if err != nil {
		slog.Error("Export failed", "format", format, "error", err)
		desc = "Export failed"
	}
	if ec.audit != nil {
		ec.audit.LogExport(string(format), desc, err)
	}
}
