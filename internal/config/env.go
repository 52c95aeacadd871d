package config

import (
	"os"
	"strconv"
)

// FromEnv overlays PULSE_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("PULSE_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("PULSE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("PULSE_FSYNC"); v != "" {
		cfg.Fsync = v
	}
	if v := os.Getenv("PULSE_FSYNC_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FsyncIntervalMs = n
		}
	}
	if v := os.Getenv("PULSE_RETENTION_AGE_MS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.RetentionAgeMs = n
		}
	}
	if v := os.Getenv("PULSE_QUEUE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QueueCapacity = n
		}
	}
	if v := os.Getenv("PULSE_REPLAY_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ReplayChunkSize = n
		}
	}
	if v := os.Getenv("PULSE_KEEPALIVE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.KeepaliveMs = n
		}
	}
	if v := os.Getenv("PULSE_RETRY_HINT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RetryHintMs = n
		}
	}
	if v := os.Getenv("PULSE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PULSE_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("PULSE_AUTH_DISABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Auth.Disabled = b
		}
	}
	if v := os.Getenv("PULSE_AUTH_MAX_FAILURES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Auth.MaxFailures = n
		}
	}
	if v := os.Getenv("PULSE_AUTH_FAILURE_WINDOW_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Auth.FailureWindowMs = n
		}
	}
	if v := os.Getenv("PULSE_AUTH_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Auth.RequestsPerSecond = f
		}
	}
}
