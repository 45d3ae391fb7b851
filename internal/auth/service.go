package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"

	"github.com/mrlokans/bookworm/internal/config"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrAuthRequired     = errors.New("authentication required")
	ErrPasswordRequired = errors.New("password is required")
	ErrAlreadySetUp     = errors.New("owner password already set")
	ErrNotSetUp         = errors.New("owner password not set")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// OwnerStore persists the owner's credentials.
// *settingsstore.SettingsStore satisfies it.
type OwnerStore interface {
	OwnerPasswordHash() (string, bool)
	SetOwnerPasswordHash(hash string) error
	OwnerTokenHash() (string, bool)
	SetOwnerTokenHash(hash string) error
	ClearOwnerTokenHash() error
}

// Service authenticates the library's single owner.
type Service struct {
	store  OwnerStore
	config config.Auth

	// serializes setup so two concurrent requests cannot both claim the library
	setupMu sync.Mutex
}

func NewService(store OwnerStore, cfg config.Auth) *Service {
	return &Service{
		store:  store,
		config: cfg,
	}
}

// IsSetUp reports whether an owner password exists.
func (s *Service) IsSetUp() bool {
	_, ok := s.store.OwnerPasswordHash()
	return ok
}

// Setup stores the initial owner password. It fails once a password exists.
func (s *Service) Setup(password, confirm string) error {
	s.setupMu.Lock()
	defer s.setupMu.Unlock()

	if s.IsSetUp() {
		return ErrAlreadySetUp
	}
	if password == "" {
		return ErrPasswordRequired
	}
	if password != confirm {
		return ErrPasswordMismatch
	}

	hash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return err
	}
	if err := s.store.SetOwnerPasswordHash(hash); err != nil {
		return fmt.Errorf("failed to save owner password: %w", err)
	}
	return nil
}

// Authenticate checks the owner password.
func (s *Service) Authenticate(password string) error {
	hash, ok := s.store.OwnerPasswordHash()
	if !ok {
		return ErrNotSetUp
	}
	if password == "" {
		return ErrPasswordRequired
	}
	return CheckPassword(password, hash)
}

// ChangePassword replaces the owner password after verifying the current one.
// Setting a password for the first time goes through Setup instead.
func (s *Service) ChangePassword(current, next string) error {
	if err := s.Authenticate(current); err != nil {
		return err
	}

	hash, err := HashPassword(next, s.config.BcryptCost)
	if err != nil {
		return err
	}
	return s.store.SetOwnerPasswordHash(hash)
}

// ResetPassword overwrites the owner password without the current one.
// Used by the CLI, which already has direct access to the database.
func (s *Service) ResetPassword(password string) error {
	hash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return err
	}
	return s.store.SetOwnerPasswordHash(hash)
}

// GenerateToken issues a new API token, replacing any previous one.
// Returns the plaintext token (show once) - only its hash is stored.
func (s *Service) GenerateToken() (string, error) {
	plaintext, hash, err := GenerateAPIToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	if err := s.store.SetOwnerTokenHash(hash); err != nil {
		return "", fmt.Errorf("failed to save token: %w", err)
	}
	return plaintext, nil
}

func (s *Service) RevokeToken() error {
	if err := s.store.ClearOwnerTokenHash(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// ValidateToken checks a plaintext bearer token against the stored hash.
func (s *Service) ValidateToken(token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	stored, ok := s.store.OwnerTokenHash()
	if !ok {
		return ErrInvalidToken
	}
	if subtle.ConstantTimeCompare([]byte(HashToken(token)), []byte(stored)) != 1 {
		return ErrInvalidToken
	}
	return nil
}

// IsAuthEnabled returns true if authentication is required.
func (s *Service) IsAuthEnabled() bool {
	return s.config.Mode == config.AuthModeLocal
}

func (s *Service) Mode() config.AuthMode {
	return s.config.Mode
}
