package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the chi router. metrics may be nil.
func NewRouter(h *EventHandler, log *slog.Logger, metrics http.Handler) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger(log))
	r.Use(CORS)

	r.Get("/health", HealthCheck)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.ListEvents)
		r.Get("/{id}", h.GetEvent)
		r.Get("/{id}/capacity", h.CapacityInfo)
		r.Post("/{id}/register", h.Register)
		r.Post("/{id}/unregister", h.Unregister)

		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin)
			r.Post("/", h.CreateEvent)
			r.Put("/{id}", h.UpdateEvent)
			r.Delete("/{id}", h.DeleteEvent)
			r.Get("/{id}/registrations", h.ListRegistrations)
		})
	})

	r.Get("/students/{studentID}/registrations", h.ListStudentRegistrations)

	r.Route("/admin", func(r chi.Router) {
		r.Use(RequireAdmin)
		r.Get("/consistency", h.CheckConsistency)
		r.Post("/consistency/fix", h.RepairConsistency)
	})

	return r
}
