package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookworm/internal/scheduler"
	"github.com/mrlokans/bookworm/internal/settingsstore"
)

// SettingsController manages the scheduled Markdown catalog export.
type SettingsController struct {
	settings  ExportSettings
	scheduler ExportRunner
	audit     SettingsAuditor
}

// NewSettingsController creates the controller. audit may be nil.
func NewSettingsController(settings ExportSettings, scheduler ExportRunner, audit SettingsAuditor) *SettingsController {
	return &SettingsController{settings: settings, scheduler: scheduler, audit: audit}
}

// ExportSyncResponse is returned by the export settings endpoints.
type ExportSyncResponse struct {
	Config  settingsstore.ExportSyncConfigInfo `json:"config"`
	Status  settingsstore.ExportSyncStatus     `json:"status"`
	Running bool                               `json:"scheduler_running"`
	NextRun *time.Time                         `json:"next_run,omitempty"`
}

func (sc *SettingsController) snapshot() ExportSyncResponse {
	return ExportSyncResponse{
		Config:  sc.settings.ExportSyncConfigInfo(),
		Status:  sc.settings.ExportSyncStatus(),
		Running: sc.scheduler.IsRunning(),
		NextRun: sc.scheduler.NextRunTime(),
	}
}

// GetExportSync handles GET /api/settings/export
func (sc *SettingsController) GetExportSync(c *gin.Context) {
	c.JSON(http.StatusOK, sc.snapshot())
}

// UpdateExportSync handles PUT /api/settings/export. Omitted fields keep their value.
func (sc *SettingsController) UpdateExportSync(c *gin.Context) {
	var upd settingsstore.ExportSyncUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if upd.Schedule != nil {
		trimmed := strings.TrimSpace(*upd.Schedule)
		upd.Schedule = &trimmed
	}

	if err := sc.settings.UpdateExportSync(upd); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if err := sc.scheduler.Reschedule(); err != nil {
		respondInternalError(c, err, "reschedule export")
		return
	}

	sc.logSettings("update_export_sync", describeUpdate(upd))
	c.JSON(http.StatusOK, sc.snapshot())
}

// ResetExportSync handles DELETE /api/settings/export, reverting to environment defaults.
func (sc *SettingsController) ResetExportSync(c *gin.Context) {
	if err := sc.settings.ClearExportSync(); err != nil {
		respondInternalError(c, err, "clear export settings")
		return
	}
	if err := sc.scheduler.Reschedule(); err != nil {
		respondInternalError(c, err, "reschedule export")
		return
	}

	sc.logSettings("reset_export_sync", "Export sync settings reset to defaults")
	c.JSON(http.StatusOK, sc.snapshot())
}

// RunExport handles POST /api/export/run
func (sc *SettingsController) RunExport(c *gin.Context) {
	result, err := sc.scheduler.RunNow()
	switch {
	case errors.Is(err, scheduler.ErrSyncInProgress):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		return
	case err != nil:
		// The failure is already stored in the export status.
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "export failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result": result,
		"status": sc.settings.ExportSyncStatus(),
	})
}

func (sc *SettingsController) logSettings(action, desc string) {
	if sc.audit != nil {
		sc.audit.LogSettings(action, desc)
	}
}

func describeUpdate(upd settingsstore.ExportSyncUpdate) string {
	var parts []string
	if upd.Enabled != nil {
		parts = append(parts, fmt.Sprintf("enabled=%t", *upd.Enabled))
	}
	if upd.ExportDir != nil {
		parts = append(parts, "export_dir="+*upd.ExportDir)
	}
	if upd.Schedule != nil {
		parts = append(parts, "schedule="+*upd.Schedule)
	}
	if len(parts) == 0 {
		return "Export sync settings saved without changes"
	}
	return "Export sync settings updated: " + strings.Join(parts, ", ")
}
