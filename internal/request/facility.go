package request

import (
	"strconv"
	"strings"
	"time"
)

// ParseFacilityID parses a positive int64 facility ID from a query value.
func ParseFacilityID(value string) (int64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	facilityID, err := strconv.ParseInt(value, 10, 64)
	if err != nil || facilityID <= 0 {
		return 0, false
	}

	return facilityID, true
}

// ParseDate parses a YYYY-MM-DD query value in the server's local zone.
// Reservation timestamps and availability queries share that zone; the
// engine performs no cross-zone normalization.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	date, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}
