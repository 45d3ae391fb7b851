package entrypoint

import (
	"fmt"

	"github.com/mrlokans/bookworm/internal/audit"
	"github.com/mrlokans/bookworm/internal/auth"
	"github.com/mrlokans/bookworm/internal/config"
	"github.com/mrlokans/bookworm/internal/database"
	auditrepo "github.com/mrlokans/bookworm/internal/database/audit"
	"github.com/mrlokans/bookworm/internal/database/books"
	"github.com/mrlokans/bookworm/internal/database/settings"
	"github.com/mrlokans/bookworm/internal/importers"
	"github.com/mrlokans/bookworm/internal/services"
	"github.com/mrlokans/bookworm/internal/settingsstore"
)

// App holds the stores and services shared by the server and CLI commands.
type App struct {
	Config   *config.Config
	DB       *database.Database
	Books    *books.Repository
	Audit    *audit.Service
	Library  *services.LibraryService
	Settings *settingsstore.SettingsStore
}

// NewApp opens the configured database and wires the library around it.
func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	repo := books.NewRepository(db.DB)
	auditService := audit.NewService(auditrepo.NewRepository(db.DB))
	library := services.NewLibraryService(repo, auditService, audit.NewSnapshotter(cfg.Audit.Dir))

	return &App{
		Config:   cfg,
		DB:       db,
		Books:    repo,
		Audit:    auditService,
		Library:  library,
		Settings: settingsstore.New(settings.NewRepository(db.DB), cfg.Export),
	}, nil
}

// ImportPipeline returns a pipeline adding books through the library.
func (a *App) ImportPipeline() *importers.Pipeline {
	return importers.NewPipeline(a.Library, a.Audit)
}

// AuthService returns the owner authentication service backed by settings.
func (a *App) AuthService() *auth.Service {
	return auth.NewService(a.Settings, a.Config.Auth)
}

func (a *App) Close() error {
	return a.DB.Close()
}
