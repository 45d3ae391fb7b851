package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookworm/internal/auth"
)

// NewRouter creates the gin engine with every API endpoint registered.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.Use(RequestLogger())
	router.Use(gin.Recovery())

	router.Use(auth.SecurityHeadersMiddleware())
	router.Use(auth.StrictTransportSecurityMiddleware())

	// CSRF must run before the session middleware so the session context
	// survives the request replacement gorilla/csrf performs.
	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() && len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.AuthService))
	}
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.LoadAndSaveGin())
	}
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	health := NewHealthController(cfg.Health, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	if cfg.AuthService != nil {
		var auditLog auth.AuditLogger
		if cfg.Audit != nil {
			auditLog = cfg.Audit
		}
		auth.NewAuthController(cfg.AuthService, cfg.SessionManager, cfg.RateLimiter, auditLog).RegisterRoutes(router)
	}

	api := router.Group("/api")

	books := NewBooksController(cfg.Library)
	api.GET("/books", books.List)
	api.GET("/books/search", books.Search)
	api.GET("/books/by-title", books.ByTitle)
	api.GET("/books/:id", books.Get)
	api.POST("/books", books.Create)
	api.PATCH("/books/:id", books.Update)
	api.POST("/books/:id/toggle-read", books.ToggleRead)
	api.DELETE("/books/:id", books.Delete)
	api.DELETE("/books", books.DeleteByTitle)
	api.GET("/genres", books.Genres)
	api.GET("/stats", books.Stats)
	api.GET("/schema/book", BookSchema)

	if cfg.Enricher != nil {
		enrich := NewMetadataController(cfg.Enricher, cfg.TaskQueue)
		api.POST("/books/:id/enrich", enrich.EnrichBook)
		api.POST("/books/enrich-all", enrich.EnrichAllMissing)
	}
	if cfg.TaskQueue != nil {
		tasks := NewTasksController(cfg.TaskQueue)
		api.GET("/tasks/types", tasks.ListTaskTypes)
		api.GET("/tasks/:id", tasks.GetTaskStatus)
	}

	if cfg.ImportPipeline != nil {
		imports := NewImportController(cfg.ImportPipeline)
		api.POST("/import/csv", imports.ImportCSV)
		api.POST("/import/json", imports.ImportJSON)
	}

	var exportAudit ExportAuditor
	var settingsAudit SettingsAuditor
	if cfg.Audit != nil {
		exportAudit, settingsAudit = cfg.Audit, cfg.Audit
		api.GET("/audit", NewAuditController(cfg.Audit).ListEvents)
	}
	api.GET("/export", NewExportController(cfg.Library, exportAudit).Download)

	if cfg.ExportSettings != nil && cfg.ExportRunner != nil {
		settings := NewSettingsController(cfg.ExportSettings, cfg.ExportRunner, settingsAudit)
		api.GET("/settings/export", settings.GetExportSync)
		api.PUT("/settings/export", settings.UpdateExportSync)
		api.DELETE("/settings/export", settings.ResetExportSync)
		api.POST("/export/run", settings.RunExport)
	}

	return router
}
