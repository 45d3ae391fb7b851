package settingsstore

import (
	"os"
	"strings"

	"github.com/mrlokans/bookworm/internal/config"
	"github.com/mrlokans/bookworm/internal/entities"
)

// Repository is the key/value persistence the store reads overrides from.
type Repository interface {
	GetValue(key string) (string, bool, error)
	SetSetting(key, value string) error
	DeleteSettings(keys ...string) error
}

// Value sources reported to clients.
const (
	SourceDatabase    = "database"
	SourceEnvironment = "environment"
	SourceDefault     = "default"
)

// SettingsStore resolves runtime settings.
// Priority: database > environment > default
type SettingsStore struct {
	repo   Repository
	export config.Export
}

// New creates a store. export carries the env-or-default values loaded at startup.
func New(repo Repository, export config.Export) *SettingsStore {
	return &SettingsStore{repo: repo, export: export}
}

// stored returns a non-empty database override. Read errors count as "not set".
func (s *SettingsStore) stored(key string) (string, bool) {
	v, ok, err := s.repo.GetValue(key)
	if err != nil || !ok || v == "" {
		return "", false
	}
	return v, true
}

func envSet(name string) bool {
	return strings.TrimSpace(os.Getenv(name)) != ""
}

func source(fromDB bool, envName string) string {
	if fromDB {
		return SourceDatabase
	}
	if envSet(envName) {
		return SourceEnvironment
	}
	return SourceDefault
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

// OwnerPasswordHash returns the stored bcrypt hash for local auth.
func (s *SettingsStore) OwnerPasswordHash() (string, bool) {
	return s.stored(entities.SettingKeyOwnerPasswordHash)
}

// HasOwnerPassword reports whether local auth has been set up.
func (s *SettingsStore) HasOwnerPassword() bool {
	_, ok := s.OwnerPasswordHash()
	return ok
}

// SetOwnerPasswordHash replaces the owner's password hash.
func (s *SettingsStore) SetOwnerPasswordHash(hash string) error {
	return s.repo.SetSetting(entities.SettingKeyOwnerPasswordHash, hash)
}

// OwnerTokenHash returns the SHA-256 hash of the owner's API token, if one was issued.
func (s *SettingsStore) OwnerTokenHash() (string, bool) {
	return s.stored(entities.SettingKeyOwnerTokenHash)
}

func (s *SettingsStore) SetOwnerTokenHash(hash string) error {
	return s.repo.SetSetting(entities.SettingKeyOwnerTokenHash, hash)
}

func (s *SettingsStore) ClearOwnerTokenHash() error {
	return s.repo.DeleteSettings(entities.SettingKeyOwnerTokenHash)
}
