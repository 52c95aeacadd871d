package auth

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestFileStoreRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".auth_token")
	s := NewFileStore(path)

	if _, err := s.Get(); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}
	if err := s.Set("pl_test_token_value"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := s.Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "pl_test_token_value" {
		t.Fatalf("got %q", got)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0o600 {
		t.Fatalf("mode %04o, want 0600", info.Mode().Perm())
	}
	if err := s.Delete(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound after delete, got %v", err)
	}
	if err := s.Delete(); err != nil {
		t.Fatalf("delete should be idempotent: %v", err)
	}
}

func TestFileStoreRefusesLoosePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix permissions only")
	}
	path := filepath.Join(t.TempDir(), ".auth_token")
	if err := os.WriteFile(path, []byte("pl_whatever\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := NewFileStore(path)
	if _, err := s.Get(); !errors.Is(err, ErrInsecureTokenFile) {
		t.Fatalf("expected ErrInsecureTokenFile, got %v", err)
	}
}

func TestManagerMintsOnce(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), ".auth_token"))
	m := NewManager(s)

	a, err := m.Token()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if !TokenPattern.MatchString(a) {
		t.Fatalf("minted token shape: %q", a)
	}
	b, err := m.Token()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if a != b {
		t.Fatalf("token changed between calls")
	}

	// A fresh manager over the same store sees the persisted token.
	m2 := NewManager(s)
	c, err := m2.Token()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if c != a {
		t.Fatalf("persisted token mismatch")
	}
}

func TestManagerRotateAndReset(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), ".auth_token"))
	m := NewManager(s)

	a, _ := m.Token()
	b, err := m.Rotate()
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if a == b {
		t.Fatalf("rotate must mint a different token")
	}
	cur, _ := m.Token()
	if cur != b {
		t.Fatalf("rotated token not effective")
	}

	if err := m.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	c, err := m.Token()
	if err != nil {
		t.Fatalf("token after reset: %v", err)
	}
	if c == b {
		t.Fatalf("reset should mint fresh on next use")
	}
}
