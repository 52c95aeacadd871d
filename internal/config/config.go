package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// HTTPAddr is the listen address for the HTTP API. Must resolve to a
	// loopback interface; the server refuses to bind anywhere else.
	HTTPAddr string `json:"httpAddr" yaml:"httpAddr"`
	// DataDir is the root directory for durable state. Empty means the
	// per-OS default from DefaultDataDir.
	DataDir string `json:"dataDir" yaml:"dataDir"`
	// Fsync selects the WAL sync policy: always|interval|never.
	Fsync string `json:"fsync" yaml:"fsync"`
	// FsyncIntervalMs controls group-commit when Fsync=interval.
	FsyncIntervalMs int `json:"fsyncIntervalMs" yaml:"fsyncIntervalMs"`
	// RetentionAgeMs bounds how long events stay in the store; 0 keeps
	// everything.
	RetentionAgeMs int64 `json:"retentionAgeMs" yaml:"retentionAgeMs"`
	// QueueCapacity is the per-connection delivery queue depth.
	QueueCapacity int `json:"queueCapacity" yaml:"queueCapacity"`
	// ReplayChunkSize is the number of events fetched per store read during
	// catch-up replay.
	ReplayChunkSize int `json:"replayChunkSize" yaml:"replayChunkSize"`
	// KeepaliveMs is the idle interval after which a stream emits a
	// keepalive comment.
	KeepaliveMs int `json:"keepaliveMs" yaml:"keepaliveMs"`
	// RetryHintMs is the reconnect delay hint sent at stream open.
	RetryHintMs int `json:"retryHintMs" yaml:"retryHintMs"`

	LogLevel  string `json:"logLevel" yaml:"logLevel"`
	LogFormat string `json:"logFormat" yaml:"logFormat"`

	Auth AuthConfig `json:"auth" yaml:"auth"`
}

// AuthConfig controls the token gate in front of the HTTP API.
type AuthConfig struct {
	// Disabled turns off token checks entirely. Local development only.
	Disabled bool `json:"disabled" yaml:"disabled"`
	// MaxFailures is the number of failed attempts per client tolerated
	// inside FailureWindowMs before the gate answers 429.
	MaxFailures int `json:"maxFailures" yaml:"maxFailures"`
	// FailureWindowMs is the sliding window for failed-attempt accounting.
	FailureWindowMs int `json:"failureWindowMs" yaml:"failureWindowMs"`
	// RequestsPerSecond caps authenticated request throughput per client.
	// 0 disables the cap.
	RequestsPerSecond float64 `json:"requestsPerSecond" yaml:"requestsPerSecond"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		HTTPAddr:        "127.0.0.1:7517",
		Fsync:           "interval",
		FsyncIntervalMs: 5,
		QueueCapacity:   10000,
		ReplayChunkSize: 1000,
		KeepaliveMs:     30000,
		RetryHintMs:     3000,
		LogLevel:        "info",
		LogFormat:       "text",
		Auth: AuthConfig{
			MaxFailures:     10,
			FailureWindowMs: 60000,
		},
	}
}

// Load reads configuration from a JSON or YAML file (by extension). If path
// is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	return cfg, nil
}

// ValidateListenAddr ensures addr names a loopback interface. The API is a
// local-only surface; binding 0.0.0.0 or a public address is a configuration
// error, not a warning.
func ValidateListenAddr(addr string) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("config: invalid listen address %q: %w", addr, err)
	}
	if host == "localhost" {
		return nil
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return fmt.Errorf("config: listen host %q is not loopback", host)
	}
	if !ip.IsLoopback() {
		return fmt.Errorf("config: refusing non-loopback listen address %q", addr)
	}
	return nil
}
