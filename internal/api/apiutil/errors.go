package apiutil

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/campusbook/campusbook/internal/booking"
)

type errorResponse struct {
	Error       string  `json:"error"`
	Code        string  `json:"code,omitempty"`
	WaitSeconds float64 `json:"wait_seconds,omitempty"`
}

// WriteBookingError maps engine errors onto HTTP responses. Validation
// failures and transition refusals keep their codes so clients can show the
// right message; a missing policy is reported as service unavailability
// rather than being masked as empty availability.
func WriteBookingError(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.Ctx(r.Context())

	var verr booking.ValidationError
	var rerr booking.RefusalError
	switch {
	case errors.Is(err, booking.ErrPolicyUnavailable):
		logger.Error().Err(err).Msg("Booking policy unavailable")
		writeError(w, http.StatusServiceUnavailable, errorResponse{
			Error: "booking policy is temporarily unavailable",
		})
	case errors.As(err, &verr):
		writeError(w, http.StatusUnprocessableEntity, errorResponse{
			Error: verr.Message,
			Code:  string(verr.Code),
		})
	case errors.As(err, &rerr):
		writeError(w, http.StatusConflict, errorResponse{
			Error:       rerr.Message,
			Code:        string(rerr.Code),
			WaitSeconds: rerr.Wait.Seconds(),
		})
	case errors.Is(err, booking.ErrReservationNotFound):
		writeError(w, http.StatusNotFound, errorResponse{Error: "reservation not found"})
	case errors.Is(err, booking.ErrFacilityNotFound):
		writeError(w, http.StatusNotFound, errorResponse{Error: "facility not found"})
	default:
		logger.Error().Err(err).Msg("Booking operation failed")
		writeError(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func writeError(w http.ResponseWriter, status int, payload errorResponse) {
	if err := WriteJSON(w, status, payload); err != nil {
		log.Error().Err(err).Msg("Failed to write error response")
	}
}
