package audit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/bookworm/internal/entities"
)

// Snapshotter writes deleted books to JSON files so a destructive delete can
// be reviewed or re-imported later.
type Snapshotter struct {
	Dir string
}

func NewSnapshotter(dir string) *Snapshotter {
	return &Snapshotter{Dir: dir}
}

type deletionSnapshot struct {
	ID        string          `json:"id"`
	Reason    string          `json:"reason"`
	DeletedAt time.Time       `json:"deleted_at"`
	Books     []entities.Book `json:"books"`
}

// SaveDeleted writes books to <dir>/<uuid>.json and returns the file name.
func (s *Snapshotter) SaveDeleted(reason string, books []entities.Book) (string, error) {
	if len(books) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	id := uuid.New().String()
	filename := id + ".json"
	path := filepath.Join(s.Dir, filename)

	data, err := json.MarshalIndent(deletionSnapshot{
		ID:        id,
		Reason:    reason,
		DeletedAt: time.Now().UTC(),
		Books:     books,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}

	slog.Debug("saved deletion snapshot", "path", path, "books", len(books))
	return filename, nil
}
