package api

import (
	"net/http"
	"time"

	"github.com/rpupo63/portfolio-backend/store"
	"github.com/rs/zerolog/log"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps Dependencies, startupTime time.Time) *routeHandlers {
	return &routeHandlers{
		projectHandler: newProjectHandler(deps.Projects, deps.Images),
		adminHandler:   newAdminHandler(deps.Gate, deps.Tokens),
		contactHandler: newContactHandler(deps.Mailer),
		healthHandler:  newHealthHandler(deps.Projects, startupTime),
	}
}

type healthHandler struct {
	responder   Responder
	projects    *store.ProjectStore
	startupTime time.Time
}

func newHealthHandler(projects *store.ProjectStore, startupTime time.Time) healthHandler {
	return healthHandler{
		responder:   NewResponder(log.With().Str("handlerName", "healthHandler").Logger()),
		projects:    projects,
		startupTime: startupTime,
	}
}

// health reports liveness and whether the gallery has loaded
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func (h healthHandler) health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(h.startupTime).Round(time.Second).String(),
			Loading: h.projects.Loading(),
		})
	}
}
