package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rivenlabs/pulse/internal/auth"
	cfgpkg "github.com/rivenlabs/pulse/internal/config"
	logpkg "github.com/rivenlabs/pulse/pkg/log"
	"github.com/spf13/cobra"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

// keyringService matches the service name the server files its token
// under, so client and server share one secret.
const keyringService = "io.rivenlabs.pulse"

// localSecretStore opens the same secret store the server uses.
func localSecretStore() auth.SecretStore {
	logger := logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	path := filepath.Join(cfgpkg.DefaultDataDir(), ".auth_token")
	return auth.NewSecretStore(keyringService, "auth_token", path, logger)
}

// resolveToken picks the auth token: --token flag, then PULSE_TOKEN,
// then the local secret store. An empty result is fine when the server
// runs with auth disabled.
func resolveToken(cmd *cobra.Command) string {
	if tok, _ := cmd.Flags().GetString("token"); tok != "" {
		return tok
	}
	if tok := os.Getenv("PULSE_TOKEN"); tok != "" {
		return tok
	}
	tok, err := localSecretStore().Get()
	if err != nil {
		return ""
	}
	return tok
}

// doJSON issues a request with the auth header set and decodes a JSON
// response into out. Error responses are surfaced using the server's
// error envelope.
func doJSON(ctx context.Context, method, url, token string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		return apiError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// apiError turns an error response into a readable error.
func apiError(resp *http.Response) error {
	var envelope struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Code != "" {
		return fmt.Errorf("%s: %s", envelope.Code, envelope.Message)
	}
	return fmt.Errorf("http error: %s", resp.Status)
}

// sseEvent is one parsed frame from a text/event-stream body.
type sseEvent struct {
	Type string
	ID   string
	Data string
}

// readSSE parses an event-stream body and invokes fn per complete
// frame. Comment lines (keepalives) and retry hints are skipped.
func readSSE(r io.Reader, fn func(sseEvent) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var cur sseEvent
	var sawData bool
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if sawData {
				if err := fn(cur); err != nil {
					return err
				}
			}
			cur = sseEvent{}
			sawData = false
		case strings.HasPrefix(line, ":"):
			// keepalive comment
		case strings.HasPrefix(line, "event: "):
			cur.Type = line[len("event: "):]
		case strings.HasPrefix(line, "id: "):
			cur.ID = line[len("id: "):]
		case strings.HasPrefix(line, "data: "):
			cur.Data = line[len("data: "):]
			sawData = true
		}
	}
	return scanner.Err()
}
