package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/campusbook/campusbook/internal/booking"
)

// Facilities is the SQLite-backed facility catalog.
type Facilities struct {
	db *DB
}

func NewFacilities(database *DB) *Facilities {
	return &Facilities{db: database}
}

func (s *Facilities) GetFacility(ctx context.Context, id int64) (booking.Facility, error) {
	var facility booking.Facility
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, open_hour, close_hour, capacity FROM facilities WHERE id = ?`, id).
		Scan(&facility.ID, &facility.Name, &facility.Hours.OpenHour, &facility.Hours.CloseHour, &facility.Capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return booking.Facility{}, booking.ErrFacilityNotFound
		}
		return booking.Facility{}, fmt.Errorf("get facility %d: %w", id, err)
	}
	return facility, nil
}

// ListFacilities returns the catalog ordered by name.
func (s *Facilities) ListFacilities(ctx context.Context) ([]booking.Facility, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, open_hour, close_hour, capacity FROM facilities ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list facilities: %w", err)
	}
	defer rows.Close()

	var facilities []booking.Facility
	for rows.Next() {
		var facility booking.Facility
		if err := rows.Scan(&facility.ID, &facility.Name, &facility.Hours.OpenHour, &facility.Hours.CloseHour, &facility.Capacity); err != nil {
			return nil, fmt.Errorf("scan facility: %w", err)
		}
		facilities = append(facilities, facility)
	}
	return facilities, rows.Err()
}
