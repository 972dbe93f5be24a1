package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/modules", func(r chi.Router) {
			r.Get("/", s.handleListModules)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetModule)
				r.Get("/status", s.handleModuleStatus)
				r.Post("/command", s.handleIssueCommand)
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", s.handleListNotifications)
			r.Post("/{id}/read", s.handleMarkNotificationRead)
		})
	})

	return r
}
