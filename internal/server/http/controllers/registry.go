package controllers

import (
	"net/http"

	"github.com/rivenlabs/pulse/internal/broadcast"
	"github.com/rivenlabs/pulse/internal/runtime"
	logpkg "github.com/rivenlabs/pulse/pkg/log"
)

// ControllerRegistry manages all HTTP controllers.
type ControllerRegistry struct {
	general *GeneralController
	events  *EventsController
}

// NewControllerRegistry creates a new controller registry.
func NewControllerRegistry(rt *runtime.Runtime, bc *broadcast.Broadcaster, rp *broadcast.Replayer, logger logpkg.Logger) *ControllerRegistry {
	if logger == nil {
		logger = logpkg.NewLogger().With(logpkg.Component("http"))
	}
	return &ControllerRegistry{
		general: NewGeneralController(rt),
		events:  NewEventsController(rt, bc, rp, logger),
	}
}

// RegisterAllRoutes registers all controller routes with the given mux.
func (r *ControllerRegistry) RegisterAllRoutes(mux *http.ServeMux) {
	r.general.RegisterRoutes(mux)
	r.events.RegisterRoutes(mux)
}
