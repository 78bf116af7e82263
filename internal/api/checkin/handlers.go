// internal/api/checkin/handlers.go
package checkin

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/campusbook/campusbook/internal/api/apiutil"
	"github.com/campusbook/campusbook/internal/booking"
)

const checkinQueryTimeout = 5 * time.Second

var (
	engine     *booking.Engine
	engineOnce sync.Once
)

type attendanceResponse struct {
	ID         string     `json:"id"`
	Status     string     `json:"status"`
	CheckInAt  *time.Time `json:"checkInAt,omitempty"`
	CheckOutAt *time.Time `json:"checkOutAt,omitempty"`
}

func InitHandlers(e *booking.Engine) {
	if e == nil {
		return
	}
	engineOnce.Do(func() {
		engine = e
	})
}

// POST /api/v1/bookings/{id}/checkin
func HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	handleAttendance(w, r, func(ctx context.Context, id uuid.UUID) (*booking.Reservation, error) {
		return engine.CheckIn(ctx, id)
	})
}

// POST /api/v1/bookings/{id}/checkout
func HandleCheckOut(w http.ResponseWriter, r *http.Request) {
	handleAttendance(w, r, func(ctx context.Context, id uuid.UUID) (*booking.Reservation, error) {
		return engine.CheckOut(ctx, id)
	})
}

func handleAttendance(w http.ResponseWriter, r *http.Request, op func(context.Context, uuid.UUID) (*booking.Reservation, error)) {
	logger := log.Ctx(r.Context())

	if engine == nil {
		logger.Error().Msg("Booking engine not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Reservation ID must be a UUID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), checkinQueryTimeout)
	defer cancel()

	res, err := op(ctx, id)
	if err != nil {
		apiutil.WriteBookingError(w, r, err)
		return
	}

	logger.Info().
		Str("reservation_id", res.ID.String()).
		Str("status", string(res.Status)).
		Msg("Attendance recorded")

	if err := apiutil.WriteJSON(w, http.StatusOK, attendanceResponse{
		ID:         res.ID.String(),
		Status:     string(res.Status),
		CheckInAt:  res.CheckInAt,
		CheckOutAt: res.CheckOutAt,
	}); err != nil {
		logger.Error().Err(err).Str("reservation_id", res.ID.String()).Msg("Failed to write attendance response")
		return
	}
}
