package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	logpkg "github.com/rivenlabs/pulse/pkg/log"
)

func newTestGate(t *testing.T, opts GateOptions) (*Gate, string) {
	t.Helper()
	m := NewManager(NewFileStore(filepath.Join(t.TempDir(), ".auth_token")))
	token, err := m.Token()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	l := NewFailureLimiter(10, time.Minute)
	t.Cleanup(l.Stop)
	logger := logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	return NewGate(m, l, logger, opts), token
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doReq(t *testing.T, h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "127.0.0.1:54321"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rec.Body.String())
	}
	return body
}

func TestGateAcceptsValidToken(t *testing.T) {
	g, token := newTestGate(t, GateOptions{ExemptPaths: []string{"/", "/v1/healthz"}})
	h := g.Middleware(okHandler())

	rec := doReq(t, h, http.MethodGet, "/v1/events", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGateMissingToken(t *testing.T) {
	g, _ := newTestGate(t, GateOptions{})
	h := g.Middleware(okHandler())

	rec := doReq(t, h, http.MethodGet, "/v1/events", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body["code"] != CodeMissingAuth || body["error"] != "E_MISSING_AUTH" {
		t.Fatalf("body: %v", body)
	}
}

func TestGateMalformedHeader(t *testing.T) {
	g, token := newTestGate(t, GateOptions{})
	h := g.Middleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/events", nil)
	req.RemoteAddr = "127.0.0.1:54321"
	req.Header.Set("Authorization", "Basic "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", rec.Code)
	}
	if decodeError(t, rec)["code"] != CodeInvalidAuth {
		t.Fatalf("code: %v", rec.Body.String())
	}
}

func TestGateWrongToken(t *testing.T) {
	g, _ := newTestGate(t, GateOptions{})
	h := g.Middleware(okHandler())

	rec := doReq(t, h, http.MethodGet, "/v1/events", "pl_definitely_not_the_token_aaaaaaaaaaaa")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", rec.Code)
	}
	if decodeError(t, rec)["code"] != CodeInvalidToken {
		t.Fatalf("code: %v", rec.Body.String())
	}
}

func TestGateTokenViaQueryParam(t *testing.T) {
	g, token := newTestGate(t, GateOptions{})
	h := g.Middleware(okHandler())

	rec := doReq(t, h, http.MethodGet, "/v1/events/subscribe?token="+token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGateExemptPathsAndPreflight(t *testing.T) {
	g, _ := newTestGate(t, GateOptions{ExemptPaths: []string{"/", "/v1/healthz"}})
	h := g.Middleware(okHandler())

	for _, path := range []string{"/", "/v1/healthz"} {
		if rec := doReq(t, h, http.MethodGet, path, ""); rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", path, rec.Code)
		}
	}
	// CORS preflight passes without credentials on any path.
	if rec := doReq(t, h, http.MethodOptions, "/v1/events", ""); rec.Code != http.StatusOK {
		t.Fatalf("preflight: status %d", rec.Code)
	}
}

func TestGateLimitsAfterRepeatedFailures(t *testing.T) {
	g, token := newTestGate(t, GateOptions{})
	h := g.Middleware(okHandler())

	for i := 0; i < 10; i++ {
		rec := doReq(t, h, http.MethodGet, "/v1/events", "pl_wrong_token_aaaaaaaaaaaaaaaaaaaaa")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status %d", i, rec.Code)
		}
	}

	// Budget exhausted: even the correct token gets 429 until the window
	// slides.
	rec := doReq(t, h, http.MethodGet, "/v1/events", token)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status %d, want 429", rec.Code)
	}
	if decodeError(t, rec)["code"] != CodeRateLimited {
		t.Fatalf("code: %v", rec.Body.String())
	}
}

func TestGateDisabled(t *testing.T) {
	g, _ := newTestGate(t, GateOptions{Disabled: true})
	h := g.Middleware(okHandler())

	if rec := doReq(t, h, http.MethodGet, "/v1/events", ""); rec.Code != http.StatusOK {
		t.Fatalf("disabled gate should pass everything: %d", rec.Code)
	}
}

func TestGateRequestRateCap(t *testing.T) {
	g, token := newTestGate(t, GateOptions{RequestsPerSecond: 1})
	h := g.Middleware(okHandler())

	// Burst allowance is rps+1; the burst after that must be capped.
	limited := false
	for i := 0; i < 5; i++ {
		rec := doReq(t, h, http.MethodGet, "/v1/events", token)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Fatalf("expected rate cap to trigger")
	}
}
