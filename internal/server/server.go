// Package server wires the HTTP surface: routes, request decoding and the
// mapping from service errors to status codes.
package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jmhart/crewlog/internal/auth"
	"github.com/jmhart/crewlog/internal/identity"
	"github.com/jmhart/crewlog/internal/middleware"
	"github.com/jmhart/crewlog/internal/service"
	"github.com/jmhart/crewlog/internal/storage"
	"github.com/jmhart/crewlog/pkg/response"
)

// Server holds the handler dependencies.
type Server struct {
	groups     *service.GroupService
	identities *identity.Provider
	tokens     *auth.DeviceTokens
}

// New creates a server.
func New(groups *service.GroupService, identities *identity.Provider, tokens *auth.DeviceTokens) *Server {
	return &Server{groups: groups, identities: identities, tokens: tokens}
}

// Router builds the full route tree. Everything under /api runs behind
// identity resolution; /metrics and /healthz do not.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.CORS)
	r.Use(middleware.RequestLogger)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.ResolveIdentity(s.tokens, s.identities))

		r.Get("/identity", s.GetIdentity)
		r.Post("/identity", s.UpdateIdentity)

		r.Route("/groups", func(r chi.Router) {
			r.Get("/", s.ListGroups)
			r.Post("/", s.CreateGroup)
			r.Post("/join", s.JoinGroup)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetGroup)
				r.Delete("/", s.DeleteGroup)
				r.Post("/logs", s.AppendLog)
				r.Post("/tasks/{taskId}/toggle", s.ToggleTask)
				r.Get("/breakdown/members", s.MemberBreakdown)
				r.Get("/breakdown/tasks", s.TaskBreakdown)
			})
		})
	})

	return r
}

// respondError maps the error taxonomy onto status codes: validation
// errors are the caller's fault (400), unknown ids and codes are 404,
// anything else is a store failure (500) that is logged but not retried
// here.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		response.BadRequest(w, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		response.NotFound(w, err.Error())
	default:
		slog.Error("request failed", "error", err)
		response.InternalError(w, "internal error")
	}
}
