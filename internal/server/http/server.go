package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/rivenlabs/pulse/internal/auth"
	"github.com/rivenlabs/pulse/internal/broadcast"
	"github.com/rivenlabs/pulse/internal/config"
	"github.com/rivenlabs/pulse/internal/runtime"
	"github.com/rivenlabs/pulse/internal/server/http/controllers"
	logpkg "github.com/rivenlabs/pulse/pkg/log"
)

// Server is the HTTP API surface. The handler chain is
// cors -> auth gate -> mux, so the gate sees every request including
// preflights it waves through.
type Server struct {
	rt  *runtime.Runtime
	srv *http.Server
	lis net.Listener
}

// New assembles the server from its wired components.
func New(rt *runtime.Runtime, bc *broadcast.Broadcaster, rp *broadcast.Replayer, gate *auth.Gate, logger logpkg.Logger) *Server {
	mux := http.NewServeMux()
	registry := controllers.NewControllerRegistry(rt, bc, rp, logger)
	registry.RegisterAllRoutes(mux)

	return &Server{rt: rt, srv: &http.Server{Handler: cors(gate.Middleware(mux))}}
}

// ListenAndServe binds addr and serves until ctx is canceled. The address
// must be loopback; anything else is refused before the socket opens.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if err := config.ValidateListenAddr(addr); err != nil {
		return err
	}
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

// Addr returns the bound listener address, empty before ListenAndServe.
func (s *Server) Addr() string {
	if s.lis == nil {
		return ""
	}
	return s.lis.Addr().String()
}

// Close shuts the listener.
func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Last-Event-ID")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
