package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/bookworm/internal/entities"
	"github.com/mrlokans/bookworm/internal/exporters"
	"github.com/mrlokans/bookworm/internal/settingsstore"
)

// ErrSyncInProgress is returned by RunNow while another export is running.
var ErrSyncInProgress = errors.New("export already in progress")

// BookLister provides the books to export.
type BookLister interface {
	GetAll() ([]entities.Book, error)
}

// ExportAuditor records export outcomes. Optional.
type ExportAuditor interface {
	LogExport(format, description string, err error)
}

// ExportScheduler periodically writes the markdown catalog and runs maintenance jobs.
type ExportScheduler struct {
	books    BookLister
	settings *settingsstore.SettingsStore
	audit    ExportAuditor
	now      func() time.Time

	cron     *cron.Cron
	mu       sync.RWMutex
	entryID  cron.EntryID
	hasEntry bool
	running  bool

	syncMu sync.Mutex
}

// NewExportScheduler creates a scheduler. audit may be nil.
func NewExportScheduler(books BookLister, settings *settingsstore.SettingsStore, audit ExportAuditor) *ExportScheduler {
	logger := cronLogger{slog.Default().With("component", "scheduler")}
	return &ExportScheduler{
		books:    books,
		settings: settings,
		audit:    audit,
		now:      time.Now,
		cron: cron.New(
			cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
}

// AddMaintenanceJob registers a job that runs regardless of export settings.
// Call before Start.
func (s *ExportScheduler) AddMaintenanceJob(schedule, name string, job func()) error {
	if err := settingsstore.ValidateCronSchedule(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q for %s: %w", schedule, name, err)
	}
	_, err := s.cron.AddFunc(schedule, func() {
		slog.Debug("Running maintenance job", "job", name)
		job()
	})
	return err
}

// Start schedules the export if enabled and starts the cron loop.
// The scheduler stops when ctx is cancelled.
func (s *ExportScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	if err := s.Reschedule(); err != nil {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return err
	}

	s.cron.Start()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop waits for running jobs and stops the cron loop.
func (s *ExportScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	slog.Info("Export scheduler stopped")
}

// Reschedule replaces the export entry using the current settings.
func (s *ExportScheduler) Reschedule() error {
	cfg := s.settings.ExportSyncConfig()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasEntry {
		s.cron.Remove(s.entryID)
		s.hasEntry = false
	}

	if !cfg.Enabled {
		slog.Info("Export scheduler: sync disabled")
		return nil
	}
	if cfg.ExportDir == "" {
		slog.Warn("Export scheduler: export directory not configured, skipping")
		return nil
	}

	entryID, err := s.cron.AddFunc(cfg.Schedule, func() {
		if _, err := s.RunNow(); err != nil && !errors.Is(err, ErrSyncInProgress) {
			slog.Error("Scheduled export failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", cfg.Schedule, err)
	}
	s.entryID = entryID
	s.hasEntry = true

	next, _ := settingsstore.NextRunTime(cfg.Schedule, s.now())
	slog.Info("Export scheduler: scheduled",
		"schedule", cfg.Schedule,
		"description", settingsstore.DescribeSchedule(cfg.Schedule),
		"next_run", next)
	return nil
}

// IsRunning reports whether the cron loop is active.
func (s *ExportScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// NextRunTime returns the next scheduled export, or nil when none is scheduled.
func (s *ExportScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasEntry {
		return nil
	}
	entry := s.cron.Entry(s.entryID)
	if entry.ID == 0 {
		return nil
	}
	if entry.Next.IsZero() {
		// cron not started yet
		next, err := settingsstore.NextRunTime(s.settings.ExportSchedule(), s.now())
		if err != nil {
			return nil
		}
		return next
	}
	t := entry.Next
	return &t
}

// RunNow exports the catalog synchronously and records the outcome in settings.
func (s *ExportScheduler) RunNow() (exporters.ExportResult, error) {
	if !s.syncMu.TryLock() {
		return exporters.ExportResult{}, ErrSyncInProgress
	}
	defer s.syncMu.Unlock()

	dir := s.settings.ExportDir()
	if dir == "" {
		err := errors.New("export directory not configured")
		s.record(err.Error(), err)
		return exporters.ExportResult{}, err
	}

	start := s.now()
	books, err := s.books.GetAll()
	if err != nil {
		err = fmt.Errorf("failed to load books: %w", err)
		s.record(err.Error(), err)
		return exporters.ExportResult{}, err
	}

	result, err := exporters.NewCatalogExporter(dir).Export(books)
	if err != nil {
		err = fmt.Errorf("export failed: %w", err)
		s.record(err.Error(), err)
		return result, err
	}

	msg := fmt.Sprintf("Exported %d books to %s in %v", result.BooksProcessed, dir, s.now().Sub(start).Round(time.Millisecond))
	if result.BooksFailed > 0 {
		msg += fmt.Sprintf(" (%d failed)", result.BooksFailed)
	}
	s.record(msg, nil)
	return result, nil
}

func (s *ExportScheduler) record(message string, err error) {
	status := settingsstore.StatusSuccess
	if err != nil {
		status = settingsstore.StatusFailed
		slog.Warn("Catalog export", "status", status, "message", message)
	} else {
		slog.Info("Catalog export", "status", status, "message", message)
	}

	if serr := s.settings.SetExportSyncStatus(s.now(), status, message); serr != nil {
		slog.Warn("Failed to store export status", "error", serr)
	}
	if s.audit != nil {
		s.audit.LogExport(string(exporters.FormatMarkdown), message, err)
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
