package auth

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	logpkg "github.com/rivenlabs/pulse/pkg/log"
)

// Error codes returned by the gate.
const (
	CodeMissingAuth     = "missing_auth"
	CodeInvalidAuth     = "invalid_auth"
	CodeInvalidToken    = "invalid_token"
	CodeRateLimited     = "rate_limited"
	CodeAuthUnavailable = "auth_unavailable"
)

// GateOptions configures the token gate.
type GateOptions struct {
	// Disabled bypasses all checks. Local development only.
	Disabled bool
	// ExemptPaths are served without a token (identity and health).
	ExemptPaths []string
	// RequestsPerSecond caps authenticated throughput per client; 0
	// disables the cap.
	RequestsPerSecond float64
}

// Gate is the HTTP middleware enforcing token auth and per-client rate
// limits. It wraps the whole API surface; endpoints never see a request
// that has not passed it.
type Gate struct {
	manager *Manager
	limiter *FailureLimiter
	logger  logpkg.Logger
	opts    GateOptions
	exempt  map[string]struct{}

	rlMu     sync.Mutex
	rlByAddr map[string]*rate.Limiter
}

// NewGate builds a Gate over a token Manager and a FailureLimiter.
func NewGate(manager *Manager, limiter *FailureLimiter, logger logpkg.Logger, opts GateOptions) *Gate {
	if logger == nil {
		logger = logpkg.NewLogger().With(logpkg.Component("auth"))
	}
	exempt := make(map[string]struct{}, len(opts.ExemptPaths))
	for _, p := range opts.ExemptPaths {
		exempt[p] = struct{}{}
	}
	return &Gate{
		manager:  manager,
		limiter:  limiter,
		logger:   logger,
		opts:     opts,
		exempt:   exempt,
		rlByAddr: map[string]*rate.Limiter{},
	}
}

// Middleware wraps next with the gate's checks.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Preflight never carries credentials.
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		if _, ok := g.exempt[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}
		if g.opts.Disabled {
			next.ServeHTTP(w, r)
			return
		}

		client := clientKey(r)

		// Failure budget is checked before the token so a flooding client
		// gets 429 even with correct credentials.
		if g.limiter != nil && g.limiter.Limited(client) {
			g.deny(w, http.StatusTooManyRequests, CodeRateLimited, "too many failed attempts, retry later")
			return
		}
		if g.opts.RequestsPerSecond > 0 && !g.allowRate(client) {
			g.deny(w, http.StatusTooManyRequests, CodeRateLimited, "request rate exceeded")
			return
		}

		presented, code := extractToken(r)
		if code != "" {
			g.fail(w, r, client, code)
			return
		}

		expected, err := g.manager.Token()
		if err != nil {
			g.logger.Error("token store unavailable", logpkg.Err(err))
			g.deny(w, http.StatusInternalServerError, CodeAuthUnavailable, "token store unavailable")
			return
		}
		if !ValidateToken(presented, expected) {
			g.fail(w, r, client, CodeInvalidToken)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Gate) fail(w http.ResponseWriter, r *http.Request, client, code string) {
	if g.limiter != nil {
		g.limiter.RecordFailure(client)
	}
	g.logger.Warn("auth failed",
		logpkg.Str("client", client),
		logpkg.Str("path", r.URL.Path),
		logpkg.Str("code", code),
	)
	msg := "authentication failed"
	switch code {
	case CodeMissingAuth:
		msg = "missing Authorization header"
	case CodeInvalidAuth:
		msg = "malformed Authorization header"
	case CodeInvalidToken:
		msg = "invalid token"
	}
	g.deny(w, http.StatusUnauthorized, code, msg)
}

func (g *Gate) deny(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "E_" + strings.ToUpper(code),
		"code":    code,
		"message": msg,
	})
}

func (g *Gate) allowRate(client string) bool {
	g.rlMu.Lock()
	rl, ok := g.rlByAddr[client]
	if !ok {
		rl = rate.NewLimiter(rate.Limit(g.opts.RequestsPerSecond), int(g.opts.RequestsPerSecond)+1)
		g.rlByAddr[client] = rl
	}
	g.rlMu.Unlock()
	return rl.Allow()
}

// extractToken pulls the bearer token from the Authorization header, or
// the token query parameter as a fallback for EventSource clients that
// cannot set headers. Returns an error code when absent or malformed.
func extractToken(r *http.Request) (string, string) {
	h := r.Header.Get("Authorization")
	if h == "" {
		if t := r.URL.Query().Get("token"); t != "" {
			return t, ""
		}
		return "", CodeMissingAuth
	}
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", CodeInvalidAuth
	}
	return strings.TrimSpace(token), ""
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
