package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/vec70rr/sistema-hospitalario/internal/booking"
)

type RouterConfig struct {
	Service *booking.Service
	PgPool  *pgxpool.Pool
	Redis   *redis.Client
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Booking
	r.Post("/bookings/auto", autoAssignHandler(cfg.Service))
	r.Post("/bookings", bookChosenSlotHandler(cfg.Service))
	r.Get("/slots/options", listOptionsHandler(cfg.Service))

	// Appointment lifecycle
	r.Post("/appointments/{id}/cancel", cancelHandler(cfg.Service))
	r.Post("/appointments/{id}/reschedule", rescheduleHandler(cfg.Service))
	r.Post("/appointments/{id}/confirm", confirmHandler(cfg.Service))

	// Reads
	r.Get("/patients/{id}/appointments", listForPatientHandler(cfg.Service))

	return r
}
