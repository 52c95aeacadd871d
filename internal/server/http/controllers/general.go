package controllers

import (
	"net/http"

	"github.com/rivenlabs/pulse/internal/runtime"
)

// Version identifies the server build in the identity response.
const Version = "0.1.0"

// GeneralController handles the unauthenticated surface: service identity
// and health. Both routes are on the gate's exempt list, so they must
// never return anything sensitive.
type GeneralController struct {
	rt *runtime.Runtime
}

// NewGeneralController creates a new general controller.
func NewGeneralController(rt *runtime.Runtime) *GeneralController {
	return &GeneralController{rt: rt}
}

// RegisterRoutes registers general routes with the given mux.
func (c *GeneralController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", c.handleRoot)
	mux.HandleFunc("/v1/healthz", c.handleHealth)
}

// handleRoot identifies the service.
func (c *GeneralController) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not_found", "no such route")
		return
	}
	writeJSON(w, map[string]string{"service": "pulse", "version": Version, "api": "v1"})
}

// handleHealth returns the health status of the service.
//
// Returns 200 OK with {"status": "ok"} if healthy, 503 otherwise.
func (c *GeneralController) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := c.rt.CheckHealth(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "not_serving", "storage not available")
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}
