package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookworm/internal/config"
	"github.com/mrlokans/bookworm/internal/metadata"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(filepath.Join(t.TempDir(), "test-tasks.db"), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestDatabasePath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "bookworm-tasks.db"), DatabasePath(filepath.Join("data", "bookworm.db"), ""))
	assert.Equal(t, filepath.Join("data", "library-tasks.db"), DatabasePath(filepath.Join("data", "library"), ""))
	assert.Equal(t, "/tmp/q.db", DatabasePath("bookworm.db", "/tmp/q.db"))
}

func TestNewClient(t *testing.T) {
	dir := t.TempDir()
	path := DatabasePath(filepath.Join(dir, "test.db"), "")

	cfg := DefaultConfig()
	cfg.Workers = 1
	client, err := NewClient(path, cfg)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "test-tasks.db"))
	assert.NoError(t, err, "tasks database should be created")
	assert.Equal(t, path, client.Path())

	assert.NoError(t, client.Close())
}

func TestClientStartStop(t *testing.T) {
	client := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	assert.True(t, client.Stop(stopCtx), "stop should succeed gracefully")
}

func TestStopWithoutStart(t *testing.T) {
	client := newTestClient(t)
	assert.True(t, client.Stop(context.Background()))
}

type echoTask struct {
	Value string `json:"value"`
}

func (t echoTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "echo_task",
		MaxAttempts: 1,
		Backoff:     time.Second,
		Timeout:     5 * time.Second,
	}
}

func TestEnqueue(t *testing.T) {
	client := newTestClient(t)

	executed := make(chan string, 1)
	client.Register(backlite.NewQueue(func(ctx context.Context, task echoTask) error {
		executed <- task.Value
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	id, err := client.Enqueue(ctx, echoTask{Value: "hello"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case val := <-executed:
		assert.Equal(t, "hello", val)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}
}

type fakeEnricher struct {
	mu      sync.Mutex
	single  []uint
	all     int
	err     error
	updated []string
}

func (f *fakeEnricher) EnrichBook(ctx context.Context, bookID uint) (*metadata.EnrichmentResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.single = append(f.single, bookID)
	if f.err != nil {
		return nil, f.err
	}
	return &metadata.EnrichmentResult{BookID: bookID, Title: "Dune", UpdatedFields: f.updated}, nil
}

func (f *fakeEnricher) EnrichAllMissing(ctx context.Context) (*metadata.BatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.all++
	if f.err != nil {
		return nil, f.err
	}
	return &metadata.BatchResult{Total: 3, Enriched: 2, Failed: 1}, nil
}

func TestEnrichBookProcessor(t *testing.T) {
	enricher := &fakeEnricher{updated: []string{"year"}}
	process := EnrichBookProcessor(enricher)

	require.NoError(t, process(context.Background(), EnrichBookTask{BookID: 7}))
	assert.Equal(t, []uint{7}, enricher.single)

	enricher.err = errors.New("boom")
	assert.Error(t, process(context.Background(), EnrichBookTask{BookID: 8}))

	assert.Error(t, EnrichBookProcessor(nil)(context.Background(), EnrichBookTask{BookID: 1}))
}

func TestEnrichAllBooksProcessor(t *testing.T) {
	enricher := &fakeEnricher{}
	require.NoError(t, EnrichAllBooksProcessor(enricher)(context.Background(), EnrichAllBooksTask{}))
	assert.Equal(t, 1, enricher.all)

	enricher.err = errors.New("boom")
	assert.Error(t, EnrichAllBooksProcessor(enricher)(context.Background(), EnrichAllBooksTask{}))
}

type fakeCleaner struct {
	retention time.Duration
}

func (f *fakeCleaner) DeleteOldEvents(retention time.Duration) (int64, error) {
	f.retention = retention
	return 4, nil
}

func TestCleanupAuditEventsProcessor(t *testing.T) {
	cleaner := &fakeCleaner{}
	process := CleanupAuditEventsProcessor(cleaner)

	require.NoError(t, process(context.Background(), CleanupAuditEventsTask{RetentionDays: 7}))
	assert.Equal(t, 7*24*time.Hour, cleaner.retention)

	require.NoError(t, process(context.Background(), CleanupAuditEventsTask{}))
	assert.Equal(t, 30*24*time.Hour, cleaner.retention)

	assert.Error(t, CleanupAuditEventsProcessor(nil)(context.Background(), CleanupAuditEventsTask{}))
}

func TestAuditRetention(t *testing.T) {
	assert.Equal(t, 90*24*time.Hour, AuditRetention(90))
	assert.Equal(t, AuditRetention(DefaultConfig().AuditRetentionDays), AuditRetention(0))
	assert.Equal(t, AuditRetention(0), AuditRetention(-3))
}

func TestEnrichBookQueueRunsThroughClient(t *testing.T) {
	client := newTestClient(t)
	enricher := &fakeEnricher{}
	client.RegisterDefaults(enricher, &fakeCleaner{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	_, err := client.Enqueue(ctx, EnrichBookTask{BookID: 42})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		enricher.mu.Lock()
		defer enricher.mu.Unlock()
		return len(enricher.single) == 1 && enricher.single[0] == 42
	}, 5*time.Second, 20*time.Millisecond)
}

func TestTaskConfigs(t *testing.T) {
	cfg := EnrichBookTask{BookID: 123}.Config()
	assert.Equal(t, "enrich_book", cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.Backoff)
	assert.NotNil(t, cfg.Retention)

	cfg = EnrichAllBooksTask{}.Config()
	assert.Equal(t, "enrich_all_books", cfg.Name)
	assert.Equal(t, 1, cfg.MaxAttempts)
	assert.Equal(t, 60*time.Minute, cfg.Timeout)

	assert.Equal(t, "cleanup_audit_events", CleanupAuditEventsTask{}.Config().Name)
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.Tasks{Workers: 4, ReleaseAfter: time.Minute}, config.Audit{RetentionDays: 90})
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, 90, cfg.AuditRetentionDays)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)

	def := DefaultConfig()
	assert.Equal(t, 2, def.Workers)
	assert.Equal(t, 3, def.MaxRetries)
	assert.Equal(t, 24*time.Hour, def.RetentionDuration)
}
