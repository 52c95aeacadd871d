package log

import (
	stdlog "log"
)

// Config is a declarative logger configuration.
type Config struct {
	// Level is the minimum level name: debug|info|warn|error.
	Level string
	// Format selects the formatter: text|json (default text).
	Format string
}

// ApplyConfig builds a Logger from the configuration using a console output.
func ApplyConfig(cfg *Config) (Logger, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	var f Formatter
	switch cfg.Format {
	case "json":
		f = &JSONFormatter{}
	default:
		f = &TextFormatter{}
	}
	return NewLogger(WithLevel(lvl), WithFormatter(f), WithOutput(NewConsoleOutput())), nil
}

// RedirectStdLog routes standard-library log output (used by Pebble and other
// dependencies) through the provided logger at info level.
func RedirectStdLog(logger Logger) {
	stdlog.SetFlags(0)
	stdlog.SetOutput(stdLogWriter{logger: logger})
}

type stdLogWriter struct {
	logger Logger
}

func (w stdLogWriter) Write(p []byte) (int, error) {
	msg := string(p)
	if n := len(msg); n > 0 && msg[n-1] == '\n' {
		msg = msg[:n-1]
	}
	w.logger.Info(msg)
	return len(p), nil
}
