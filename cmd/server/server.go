// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/campusbook/campusbook/internal/api"
	"github.com/campusbook/campusbook/internal/api/availability"
	"github.com/campusbook/campusbook/internal/api/bookings"
	"github.com/campusbook/campusbook/internal/api/checkin"
	"github.com/campusbook/campusbook/internal/booking"
	"github.com/campusbook/campusbook/internal/config"
	"github.com/campusbook/campusbook/internal/ratelimit"
)

func newServer(cfg *config.Config, engine *booking.Engine, limiter *ratelimit.Limiter) *http.Server {
	availability.InitHandlers(engine)
	bookings.InitHandlers(engine, limiter, cfg.Booking.PhoneRegion)
	checkin.InitHandlers(engine)

	router := http.NewServeMux()
	registerRoutes(router)

	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
	)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("GET /api/v1/availability", availability.HandleAvailability)

	mux.HandleFunc("POST /api/v1/bookings", bookings.HandleBookingCreate)
	mux.HandleFunc("POST /api/v1/bookings/{id}/approve", bookings.HandleBookingApprove)
	mux.HandleFunc("POST /api/v1/bookings/{id}/reject", bookings.HandleBookingReject)
	mux.HandleFunc("POST /api/v1/bookings/{id}/cancel", bookings.HandleBookingCancel)

	mux.HandleFunc("POST /api/v1/bookings/{id}/checkin", checkin.HandleCheckIn)
	mux.HandleFunc("POST /api/v1/bookings/{id}/checkout", checkin.HandleCheckOut)
}
