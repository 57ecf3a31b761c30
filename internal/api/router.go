// Package api exposes the HTTP surface: the public catalog, agenda and
// booking endpoints, the admin CRUD, and health probes.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/psicoapp/agenda-service/internal/agenda"
	"github.com/psicoapp/agenda-service/internal/booking"
	"github.com/psicoapp/agenda-service/internal/directory"
)

type RouterConfig struct {
	Directory *directory.Service
	Agenda    *agenda.Service
	Bookings  *booking.Service
	Health    *HealthHandler
	Log       zerolog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Log))

	// Health endpoints
	r.Get("/health", cfg.Health.Readiness)
	r.Get("/health/live", cfg.Health.Liveness)
	r.Get("/health/ready", cfg.Health.Readiness)

	// Public catalog
	r.Route("/api/psicologos", func(r chi.Router) {
		r.Get("/", listPractitionersHandler(cfg.Directory, cfg.Agenda, cfg.Log))
		r.Get("/especialidades/list", listSpecialtiesHandler(cfg.Directory, cfg.Log))
		r.Get("/{id}", getPractitionerHandler(cfg.Directory, cfg.Agenda, cfg.Log))
	})

	// Agenda
	r.Route("/api/agenda", func(r chi.Router) {
		r.Get("/{psicologoId}", getAgendaHandler(cfg.Agenda, cfg.Log))
		r.Get("/{psicologoId}/disponibilidad", checkAvailabilityHandler(cfg.Bookings, cfg.Log))
	})

	// Bookings
	r.Route("/api/reservas", func(r chi.Router) {
		r.Post("/", createBookingHandler(cfg.Bookings, cfg.Log))
		r.Get("/", listBookingsHandler(cfg.Bookings, cfg.Log))
		r.Get("/{id}", getBookingHandler(cfg.Bookings, cfg.Log))
		r.Put("/{id}/cancelar", cancelBookingHandler(cfg.Bookings, cfg.Log))
	})

	// Admin
	r.Route("/api/admin", func(r chi.Router) {
		r.Route("/psicologos", func(r chi.Router) {
			r.Get("/", adminListPractitionersHandler(cfg.Directory, cfg.Log))
			r.Post("/", adminCreatePractitionerHandler(cfg.Directory, cfg.Log))
			r.Put("/{id}", adminUpdatePractitionerHandler(cfg.Directory, cfg.Log))
			r.Delete("/{id}", adminDeletePractitionerHandler(cfg.Directory, cfg.Log))
		})
		r.Route("/horarios", func(r chi.Router) {
			r.Post("/", adminCreateTemplateHandler(cfg.Directory, cfg.Log))
			r.Get("/{psicologoId}", adminListTemplatesHandler(cfg.Directory, cfg.Log))
			r.Put("/{id}", adminUpdateTemplateHandler(cfg.Directory, cfg.Log))
			r.Delete("/{id}", adminDeleteTemplateHandler(cfg.Directory, cfg.Log))
		})
		r.Route("/especialidades", func(r chi.Router) {
			r.Get("/", adminListSpecialtiesHandler(cfg.Directory, cfg.Log))
			r.Post("/", adminCreateSpecialtyHandler(cfg.Directory, cfg.Log))
			r.Put("/{id}", adminUpdateSpecialtyHandler(cfg.Directory, cfg.Log))
			r.Delete("/{id}", adminDeleteSpecialtyHandler(cfg.Directory, cfg.Log))
		})
	})

	return r
}
