package config

import (
	"os"
	"strings"
	"testing"
)

func TestDefaultDataDirXDGOverride(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	if got := DefaultDataDir(); got != "/custom/data/pulse" {
		t.Fatalf("expected /custom/data/pulse, got %s", got)
	}
}

func TestDefaultDataDirNoHome(t *testing.T) {
	originalHome := os.Getenv("HOME")
	os.Unsetenv("HOME")
	t.Cleanup(func() {
		if originalHome != "" {
			os.Setenv("HOME", originalHome)
		}
	})

	if got := DefaultDataDir(); got != "./data" {
		t.Fatalf("expected fallback to ./data, got %s", got)
	}
}

func TestDefaultDataDirNamesProduct(t *testing.T) {
	got := DefaultDataDir()
	if got == "" {
		t.Fatal("DefaultDataDir should not return empty string")
	}
	if got != "./data" && !strings.Contains(strings.ToLower(got), "pulse") {
		t.Fatalf("expected path to name the product, got %s", got)
	}
}

func TestIsDir(t *testing.T) {
	if !isDir(".") {
		t.Fatal("current directory should be a dir")
	}
	if isDir("/non/existent/path/that/does/not/exist") {
		t.Fatal("missing path should not be a dir")
	}
}
