package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"

	logpkg "github.com/rivenlabs/pulse/pkg/log"
)

// ErrTokenNotFound reports that no token has been provisioned yet.
var ErrTokenNotFound = errors.New("auth: token not found")

// ErrInsecureTokenFile reports a token file whose permissions would let
// other local users read the secret. The gate fails closed on this.
var ErrInsecureTokenFile = errors.New("auth: token file has insecure permissions")

// SecretStore persists the API token.
type SecretStore interface {
	Get() (string, error)
	Set(token string) error
	Delete() error
	// Description names the backing mechanism for status output.
	Description() string
}

// keyringStore keeps the token in the OS keyring (Keychain, Secret
// Service, Credential Manager).
type keyringStore struct {
	service string
	account string
}

func (s *keyringStore) Get() (string, error) {
	v, err := keyring.Get(s.service, s.account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("auth: keyring get: %w", err)
	}
	return v, nil
}

func (s *keyringStore) Set(token string) error {
	if err := keyring.Set(s.service, s.account, token); err != nil {
		return fmt.Errorf("auth: keyring set: %w", err)
	}
	return nil
}

func (s *keyringStore) Delete() error {
	if err := keyring.Delete(s.service, s.account); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("auth: keyring delete: %w", err)
	}
	return nil
}

func (s *keyringStore) Description() string { return "os-keyring" }

// fileStore keeps the token in a 0600 file. Reads refuse files readable by
// group or other: a loose mode means the secret may already be compromised
// and also likely means the file is managed by something else.
type fileStore struct {
	path string
}

func (s *fileStore) Get() (string, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrTokenNotFound
		}
		return "", err
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o077 != 0 {
		return "", fmt.Errorf("%w: %s mode %04o", ErrInsecureTokenFile, s.path, info.Mode().Perm())
	}
	b, err := os.ReadFile(s.path)
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", ErrTokenNotFound
	}
	return token, nil
}

func (s *fileStore) Set(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token+"\n"), 0o600)
}

func (s *fileStore) Delete() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *fileStore) Description() string { return "file:" + s.path }

// NewSecretStore picks the keyring when one answers, otherwise the file
// fallback. The probe runs once, here, so a keyring that disappears later
// surfaces as an auth_unavailable error instead of a silent backend swap.
func NewSecretStore(service, account, fallbackPath string, logger logpkg.Logger) SecretStore {
	ks := &keyringStore{service: service, account: account}
	if _, err := keyring.Get(service, account); err == nil || errors.Is(err, keyring.ErrNotFound) {
		return ks
	}
	if logger != nil {
		logger.Warn("os keyring unavailable, using token file", logpkg.Str("path", fallbackPath))
	}
	return &fileStore{path: fallbackPath}
}

// NewFileStore returns a file-backed store directly, bypassing the keyring
// probe. Used by tests and by deployments that pin the file backend.
func NewFileStore(path string) SecretStore { return &fileStore{path: path} }

// Manager owns the token lifecycle over a SecretStore and caches the value
// so the hot path never touches the keyring per request.
type Manager struct {
	store SecretStore

	mu     sync.Mutex
	cached string
}

// NewManager wraps a SecretStore.
func NewManager(store SecretStore) *Manager {
	return &Manager{store: store}
}

// Token returns the current token, minting and persisting one on first
// use.
func (m *Manager) Token() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cached != "" {
		return m.cached, nil
	}
	token, err := m.store.Get()
	if err == nil {
		m.cached = token
		return token, nil
	}
	if !errors.Is(err, ErrTokenNotFound) {
		return "", err
	}
	token, err = GenerateToken()
	if err != nil {
		return "", err
	}
	if err := m.store.Set(token); err != nil {
		return "", err
	}
	m.cached = token
	return token, nil
}

// Rotate mints a new token, persists it, and returns it. The old token
// stops validating immediately.
func (m *Manager) Rotate() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, err := GenerateToken()
	if err != nil {
		return "", err
	}
	if err := m.store.Set(token); err != nil {
		return "", err
	}
	m.cached = token
	return token, nil
}

// Reset deletes the stored token. The next Token call mints a fresh one.
func (m *Manager) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cached = ""
	return m.store.Delete()
}

// StoreDescription names the backing store for status output.
func (m *Manager) StoreDescription() string { return m.store.Description() }
