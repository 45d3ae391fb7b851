package auth

import (
	"errors"
	"sync"
	"testing"

	"github.com/mrlokans/bookworm/internal/config"
)

type memOwnerStore struct {
	mu        sync.Mutex
	password  string
	tokenHash string
}

func (m *memOwnerStore) OwnerPasswordHash() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.password, m.password != ""
}

func (m *memOwnerStore) SetOwnerPasswordHash(hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.password = hash
	return nil
}

func (m *memOwnerStore) OwnerTokenHash() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokenHash, m.tokenHash != ""
}

func (m *memOwnerStore) SetOwnerTokenHash(hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokenHash = hash
	return nil
}

func (m *memOwnerStore) ClearOwnerTokenHash() error {
	return m.SetOwnerTokenHash("")
}

const testPassword = "correct horse battery"

func testAuthConfig() config.Auth {
	return config.Auth{
		Mode:             config.AuthModeLocal,
		BcryptCost:       4,
		MaxLoginAttempts: 3,
	}
}

func newTestService(t *testing.T) (*Service, *memOwnerStore) {
	t.Helper()
	store := &memOwnerStore{}
	return NewService(store, testAuthConfig()), store
}

func TestService_Setup(t *testing.T) {
	svc, store := newTestService(t)

	if svc.IsSetUp() {
		t.Fatal("fresh service should not be set up")
	}
	if err := svc.Setup(testPassword, "something else"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("mismatch: got %v", err)
	}
	if err := svc.Setup("", ""); !errors.Is(err, ErrPasswordRequired) {
		t.Errorf("empty: got %v", err)
	}
	if err := svc.Setup("short", "short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("short: got %v", err)
	}

	if err := svc.Setup(testPassword, testPassword); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if !svc.IsSetUp() {
		t.Error("expected IsSetUp after Setup")
	}
	if store.password == testPassword {
		t.Error("password must be stored hashed")
	}

	if err := svc.Setup("another long password", "another long password"); !errors.Is(err, ErrAlreadySetUp) {
		t.Errorf("second setup: got %v, want ErrAlreadySetUp", err)
	}
}

func TestService_SetupConcurrent(t *testing.T) {
	svc, _ := newTestService(t)

	var wg sync.WaitGroup
	results := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.Setup(testPassword, testPassword)
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, ErrAlreadySetUp) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("expected exactly one successful setup, got %d", succeeded)
	}
}

func TestService_Authenticate(t *testing.T) {
	svc, _ := newTestService(t)

	if err := svc.Authenticate(testPassword); !errors.Is(err, ErrNotSetUp) {
		t.Errorf("before setup: got %v, want ErrNotSetUp", err)
	}
	if err := svc.Setup(testPassword, testPassword); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"correct", testPassword, nil},
		{"wrong", "incorrect horse battery", ErrInvalidPassword},
		{"empty", "", ErrPasswordRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.Authenticate(tt.password); !errors.Is(err, tt.wantErr) {
				t.Errorf("Authenticate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_ChangePassword(t *testing.T) {
	svc, _ := newTestService(t)
	if err := svc.Setup(testPassword, testPassword); err != nil {
		t.Fatal(err)
	}

	if err := svc.ChangePassword("wrong password!!", "new long password"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("wrong current: got %v", err)
	}
	if err := svc.ChangePassword(testPassword, "tiny"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("short new: got %v", err)
	}
	if err := svc.ChangePassword(testPassword, "new long password"); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}

	if err := svc.Authenticate(testPassword); !errors.Is(err, ErrInvalidPassword) {
		t.Error("old password should no longer work")
	}
	if err := svc.Authenticate("new long password"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
}

func TestService_ResetPassword(t *testing.T) {
	svc, _ := newTestService(t)

	if err := svc.ResetPassword(testPassword); err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}
	if err := svc.Authenticate(testPassword); err != nil {
		t.Errorf("Authenticate() after reset = %v", err)
	}
}

func TestService_TokenLifecycle(t *testing.T) {
	svc, store := newTestService(t)

	if err := svc.ValidateToken("anything"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("no token issued: got %v", err)
	}

	token, err := svc.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if store.tokenHash == token {
		t.Error("token must be stored hashed")
	}
	if err := svc.ValidateToken(token); err != nil {
		t.Errorf("ValidateToken() = %v", err)
	}
	if err := svc.ValidateToken(""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("empty token: got %v", err)
	}

	rotated, err := svc.GenerateToken()
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Error("old token should be replaced by the new one")
	}

	if err := svc.RevokeToken(); err != nil {
		t.Fatalf("RevokeToken() error = %v", err)
	}
	if err := svc.ValidateToken(rotated); !errors.Is(err, ErrInvalidToken) {
		t.Error("revoked token should be rejected")
	}
}

func TestService_IsAuthEnabled(t *testing.T) {
	local := NewService(&memOwnerStore{}, config.Auth{Mode: config.AuthModeLocal})
	if !local.IsAuthEnabled() {
		t.Error("local mode should enable auth")
	}
	none := NewService(&memOwnerStore{}, config.Auth{Mode: config.AuthModeNone})
	if none.IsAuthEnabled() {
		t.Error("none mode should disable auth")
	}
}
