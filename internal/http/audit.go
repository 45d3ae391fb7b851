package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookworm/internal/database/audit"
	"github.com/mrlokans/bookworm/internal/entities"
)

const (
	defaultAuditLimit = 25
	maxAuditLimit     = 100
)

type AuditController struct {
	events AuditReader
}

func NewAuditController(events AuditReader) *AuditController {
	return &AuditController{events: events}
}

// ListEvents handles GET /api/audit?type=&entity_type=&entity_id=&limit=&offset=
// Events are returned newest first.
func (ac *AuditController) ListEvents(c *gin.Context) {
	limit, ok := queryInt(c, "limit", defaultAuditLimit)
	if !ok {
		return
	}
	if limit == 0 || limit > maxAuditLimit {
		limit = defaultAuditLimit
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return
	}

	filter := audit.EventFilter{
		Type:       entities.AuditEventType(c.Query("type")),
		EntityType: c.Query("entity_type"),
		Limit:      limit,
		Offset:     offset,
	}
	if raw := c.Query("entity_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondBadRequest(c, "invalid entity_id")
			return
		}
		filter.EntityID = uint(id)
	}

	events, total, err := ac.events.ListEvents(filter)
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    events,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(events)) < total,
	})
}
