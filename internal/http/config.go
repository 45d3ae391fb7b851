package http

import (
	"github.com/mrlokans/bookworm/internal/auth"
	"github.com/mrlokans/bookworm/internal/config"
	"github.com/mrlokans/bookworm/internal/importers"
)

// RouterConfig contains all dependencies needed to create the HTTP router.
// Optional collaborators left nil disable their routes.
type RouterConfig struct {
	// Core dependencies
	Library        Library
	ImportPipeline *importers.Pipeline
	Health         HealthChecker

	// Audit trail. Implemented by *audit.Service.
	Audit interface {
		AuditReader
		ExportAuditor
		SettingsAuditor
		auth.AuditLogger
	}

	// Metadata enrichment; TaskQueue switches it to background processing.
	Enricher  Enricher
	TaskQueue TaskQueue

	// Scheduled Markdown catalog export
	ExportSettings ExportSettings
	ExportRunner   ExportRunner

	// Authentication
	AuthConfig     config.Auth
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	RateLimiter    *auth.RateLimiter
	CSRFSecret     []byte
	SecureCookies  bool

	// Application info
	Version string
}
