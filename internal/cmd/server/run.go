package serverrun

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/rivenlabs/pulse/internal/auth"
	"github.com/rivenlabs/pulse/internal/broadcast"
	cfgpkg "github.com/rivenlabs/pulse/internal/config"
	"github.com/rivenlabs/pulse/internal/runtime"
	httpserver "github.com/rivenlabs/pulse/internal/server/http"
	pebblestore "github.com/rivenlabs/pulse/internal/storage/pebble"
	logpkg "github.com/rivenlabs/pulse/pkg/log"
)

// KeyringService is the service name tokens are filed under in the OS
// keyring.
const KeyringService = "io.rivenlabs.pulse"

// Options configures a server run.
type Options struct {
	DataDir       string
	HTTPAddr      string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
}

// exemptPaths are served without a token: service identity and health.
var exemptPaths = []string{"/", "/v1/healthz"}

// Run starts the HTTP server and blocks until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	// Be robust to callers that don't pass a signal-aware context.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}
	cfg := opts.Config

	logger, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	// Route stdlib logs (e.g. Pebble) through the same masked pipeline.
	logpkg.RedirectStdLog(logger)

	if err := cfgpkg.ValidateListenAddr(opts.HTTPAddr); err != nil {
		return err
	}

	storeDir := filepath.Join(opts.DataDir, "store")
	rt, err := runtime.Open(runtime.Options{DataDir: storeDir, Fsync: opts.Fsync, FsyncInterval: opts.FsyncInterval, Config: cfg})
	if err != nil {
		return err
	}
	defer rt.Close()

	secretStore := auth.NewSecretStore(KeyringService, "auth_token", filepath.Join(opts.DataDir, ".auth_token"), logger)
	manager := auth.NewManager(secretStore)
	var token string
	if !cfg.Auth.Disabled {
		token, err = manager.Token()
		if err != nil {
			return err
		}
	}
	limiter := auth.NewFailureLimiter(cfg.Auth.MaxFailures, time.Duration(cfg.Auth.FailureWindowMs)*time.Millisecond)
	defer limiter.Stop()
	gate := auth.NewGate(manager, limiter, logger.With(logpkg.Component("auth")), auth.GateOptions{
		Disabled:          cfg.Auth.Disabled,
		ExemptPaths:       exemptPaths,
		RequestsPerSecond: cfg.Auth.RequestsPerSecond,
	})

	bc := broadcast.New(rt.Log(), logger.With(logpkg.Component("broadcast")), broadcast.Options{QueueCapacity: cfg.QueueCapacity})
	rp := broadcast.NewReplayer(rt.Log(), cfg.ReplayChunkSize)
	hsrv := httpserver.New(rt, bc, rp, gate, logger.With(logpkg.Component("http")))

	logger.Info("starting pulse server",
		logpkg.Str("http", opts.HTTPAddr),
		logpkg.Str("data_dir", opts.DataDir),
		logpkg.Str("token", auth.MaskToken(token)),
		logpkg.Str("token_store", manager.StoreDescription()),
		logpkg.Bool("auth_disabled", cfg.Auth.Disabled),
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := hsrv.ListenAndServe(sctx, opts.HTTPAddr); err != nil && sctx.Err() == nil {
			logger.Error("http server error", logpkg.Err(err))
			stop()
		}
	}()

	if cfg.RetentionAgeMs > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			retentionLoop(sctx, rt, cfg.RetentionAgeMs, logger)
		}()
	}

	<-sctx.Done()
	// Shut servers down before closing the runtime/DB to avoid races.
	hsrv.Close()
	wg.Wait()
	return nil
}

func buildLogger(cfg cfgpkg.Config) (logpkg.Logger, error) {
	lvl, err := logpkg.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = logpkg.InfoLevel
	}
	var f logpkg.Formatter
	if cfg.LogFormat == "json" {
		f = &logpkg.JSONFormatter{}
	} else {
		f = &logpkg.TextFormatter{}
	}
	// Token scrubbing wraps the output, so every line from every component
	// passes through it.
	out := logpkg.NewMaskingOutput(logpkg.NewConsoleOutput(), auth.TokenPattern, auth.TokenPrefix+"****")
	return logpkg.NewLogger(logpkg.WithLevel(lvl), logpkg.WithFormatter(f), logpkg.WithOutput(out)), nil
}

// retentionLoop trims aged-out events periodically.
func retentionLoop(ctx context.Context, rt *runtime.Runtime, ageMs int64, logger logpkg.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().UnixMilli() - ageMs
			deleted, _, err := rt.Log().TrimOlderThan(ctx, cutoff, 1024, 10*time.Millisecond)
			if err != nil {
				logger.Warn("retention trim failed", logpkg.Err(err))
				continue
			}
			if deleted > 0 {
				logger.Info("retention trim", logpkg.Int("deleted", deleted))
			}
		}
	}
}
