// internal/api/availability/handlers.go
package availability

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/campusbook/campusbook/internal/api/apiutil"
	"github.com/campusbook/campusbook/internal/booking"
	"github.com/campusbook/campusbook/internal/request"
)

const availabilityQueryTimeout = 5 * time.Second

var (
	engine     *booking.Engine
	engineOnce sync.Once
)

type slotResponse struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Available bool   `json:"available"`
}

type availabilityResponse struct {
	FacilityID int64          `json:"facilityId"`
	Date       string         `json:"date"`
	Slots      []slotResponse `json:"slots"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(e *booking.Engine) {
	if e == nil {
		return
	}
	engineOnce.Do(func() {
		engine = e
	})
}

// GET /api/v1/availability?facility_id=...&date=YYYY-MM-DD
func HandleAvailability(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if engine == nil {
		logger.Error().Msg("Booking engine not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	facilityID, ok := request.ParseFacilityID(r.URL.Query().Get("facility_id"))
	if !ok {
		http.Error(w, "Facility ID is required", http.StatusBadRequest)
		return
	}
	date, ok := request.ParseDate(r.URL.Query().Get("date"))
	if !ok {
		http.Error(w, "Date is required in YYYY-MM-DD format", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), availabilityQueryTimeout)
	defer cancel()

	slots, err := engine.ComputeAvailability(ctx, facilityID, date)
	if err != nil {
		apiutil.WriteBookingError(w, r, err)
		return
	}

	response := availabilityResponse{
		FacilityID: facilityID,
		Date:       date.Format("2006-01-02"),
		Slots:      make([]slotResponse, 0, len(slots)),
	}
	for _, slot := range slots {
		response.Slots = append(response.Slots, slotResponse{
			Start:     slot.Start.Format("15:04"),
			End:       slot.End.Format("15:04"),
			Available: slot.Available,
		})
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, response); err != nil {
		logger.Error().Err(err).Int64("facility_id", facilityID).Msg("Failed to write availability response")
		return
	}
}
