// internal/api/bookings/handlers.go
package bookings

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"github.com/rs/zerolog/log"

	"github.com/campusbook/campusbook/internal/api/apiutil"
	"github.com/campusbook/campusbook/internal/booking"
	"github.com/campusbook/campusbook/internal/ratelimit"
)

const bookingQueryTimeout = 5 * time.Second

var (
	engine      *booking.Engine
	limiter     *ratelimit.Limiter
	phoneRegion string
	engineOnce  sync.Once
)

type bookingRequest struct {
	FacilityID   int64  `json:"facilityId"`
	RequesterID  int64  `json:"requesterId"`
	StartTime    string `json:"startTime"` // RFC 3339
	EndTime      string `json:"endTime"`   // RFC 3339
	Details      string `json:"details"`
	ContactPhone string `json:"contactPhone"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

type reservationResponse struct {
	ID              string     `json:"id"`
	FacilityID      int64      `json:"facilityId"`
	RequesterID     int64      `json:"requesterId"`
	StartTime       time.Time  `json:"startTime"`
	EndTime         time.Time  `json:"endTime"`
	Status          string     `json:"status"`
	Details         string     `json:"details,omitempty"`
	ContactPhone    string     `json:"contactPhone,omitempty"`
	CheckInAt       *time.Time `json:"checkInAt,omitempty"`
	CheckOutAt      *time.Time `json:"checkOutAt,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(e *booking.Engine, lim *ratelimit.Limiter, region string) {
	if e == nil {
		return
	}
	engineOnce.Do(func() {
		engine = e
		limiter = lim
		phoneRegion = region
	})
}

func toResponse(res *booking.Reservation) reservationResponse {
	return reservationResponse{
		ID:              res.ID.String(),
		FacilityID:      res.FacilityID,
		RequesterID:     res.RequesterID,
		StartTime:       res.Start,
		EndTime:         res.End,
		Status:          string(res.Status),
		Details:         res.Details,
		ContactPhone:    res.ContactPhone,
		CheckInAt:       res.CheckInAt,
		CheckOutAt:      res.CheckOutAt,
		RejectionReason: res.RejectionReason,
	}
}

// POST /api/v1/bookings
func HandleBookingCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if engine == nil {
		logger.Error().Msg("Booking engine not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req bookingRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.FacilityID <= 0 {
		http.Error(w, "Facility ID is required", http.StatusBadRequest)
		return
	}
	if req.RequesterID <= 0 {
		http.Error(w, "Requester ID is required", http.StatusBadRequest)
		return
	}

	start, end, err := parseBookingTimes(req.StartTime, req.EndTime)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	contactPhone, err := normalizeContactPhone(req.ContactPhone)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	clientIP := ratelimit.GetClientIP(r, false)
	if limiter != nil {
		if result := limiter.CheckSubmit(req.RequesterID, clientIP); !result.Allowed {
			ratelimit.LogRateLimitExceeded(req.RequesterID, clientIP, result.Reason)
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(result.RetryAfter.Seconds())+1))
			http.Error(w, "Too many booking requests", http.StatusTooManyRequests)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	res, err := engine.SubmitBooking(ctx, booking.BookingRequest{
		FacilityID:   req.FacilityID,
		RequesterID:  req.RequesterID,
		Start:        start,
		End:          end,
		Details:      strings.TrimSpace(req.Details),
		ContactPhone: contactPhone,
	})
	if err != nil {
		apiutil.WriteBookingError(w, r, err)
		return
	}

	if limiter != nil {
		limiter.RecordSubmit(req.RequesterID, clientIP)
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, toResponse(res)); err != nil {
		logger.Error().Err(err).Str("reservation_id", res.ID.String()).Msg("Failed to write booking response")
		return
	}
}

// POST /api/v1/bookings/{id}/approve
func HandleBookingApprove(w http.ResponseWriter, r *http.Request) {
	handleTransition(w, r, func(ctx context.Context, id uuid.UUID) (*booking.Reservation, error) {
		return engine.Approve(ctx, id)
	})
}

// POST /api/v1/bookings/{id}/reject
func HandleBookingReject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	handleTransition(w, r, func(ctx context.Context, id uuid.UUID) (*booking.Reservation, error) {
		return engine.Reject(ctx, id, strings.TrimSpace(req.Reason))
	})
}

// POST /api/v1/bookings/{id}/cancel
func HandleBookingCancel(w http.ResponseWriter, r *http.Request) {
	handleTransition(w, r, func(ctx context.Context, id uuid.UUID) (*booking.Reservation, error) {
		return engine.Cancel(ctx, id)
	})
}

func handleTransition(w http.ResponseWriter, r *http.Request, op func(context.Context, uuid.UUID) (*booking.Reservation, error)) {
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

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	res, err := op(ctx, id)
	if err != nil {
		apiutil.WriteBookingError(w, r, err)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, toResponse(res)); err != nil {
		logger.Error().Err(err).Str("reservation_id", res.ID.String()).Msg("Failed to write booking response")
		return
	}
}

func parseBookingTimes(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, strings.TrimSpace(startRaw))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("startTime must be RFC 3339")
	}
	end, err := time.Parse(time.RFC3339, strings.TrimSpace(endRaw))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("endTime must be RFC 3339")
	}
	return start, end, nil
}

// normalizeContactPhone formats an optional contact phone as E.164 before it
// reaches the engine. An empty phone is allowed.
func normalizeContactPhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	region := phoneRegion
	if region == "" {
		region = "US"
	}
	parsed, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return "", fmt.Errorf("contactPhone is not a valid phone number")
	}
	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}
