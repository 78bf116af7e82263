package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/campusbook/campusbook/internal/booking"
)

// Reservations is the SQLite-backed reservation store. CreateReservation
// serializes an overlap re-check with the insert so that at most one of two
// racing submissions for the same interval wins.
type Reservations struct {
	db *DB
}

func NewReservations(database *DB) *Reservations {
	return &Reservations{db: database}
}

const reservationColumns = `id, facility_id, requester_id, start_time, end_time, status, details, contact_phone, check_in_at, check_out_at, rejection_reason, created_at, updated_at`

func (s *Reservations) GetReservation(ctx context.Context, id uuid.UUID) (*booking.Reservation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id.String())

	res, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrReservationNotFound
		}
		return nil, fmt.Errorf("get reservation %s: %w", id, err)
	}
	return res, nil
}

func (s *Reservations) ListForDate(ctx context.Context, facilityID int64, date time.Time) ([]*booking.Reservation, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations
		 WHERE facility_id = ? AND start_time >= ? AND start_time < ?
		 ORDER BY start_time`,
		facilityID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("list reservations for facility %d: %w", facilityID, err)
	}
	defer rows.Close()

	var reservations []*booking.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

func (s *Reservations) CreateReservation(ctx context.Context, res *booking.Reservation) error {
	return s.db.RunInTx(ctx, func(tx *sql.Tx) error {
		// Re-check inside the transaction: between the engine's availability
		// evaluation and this insert, a racing submission may have landed.
		var conflicts int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM reservations
			 WHERE facility_id = ? AND status NOT IN ('cancelled', 'rejected')
			   AND start_time < ? AND end_time > ?`,
			res.FacilityID, res.End, res.Start).Scan(&conflicts)
		if err != nil {
			return fmt.Errorf("conflict re-check: %w", err)
		}
		if conflicts > 0 {
			return booking.ValidationError{Code: booking.ValidationSlotTaken, Message: "requested time is no longer available"}
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO reservations (`+reservationColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			res.ID.String(), res.FacilityID, res.RequesterID, res.Start, res.End,
			string(res.Status), res.Details, res.ContactPhone,
			nullTime(res.CheckInAt), nullTime(res.CheckOutAt),
			res.RejectionReason, res.CreatedAt, res.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert reservation %s: %w", res.ID, err)
		}
		return nil
	})
}

func (s *Reservations) UpdateReservation(ctx context.Context, res *booking.Reservation) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE reservations
		 SET status = ?, details = ?, contact_phone = ?, check_in_at = ?, check_out_at = ?, rejection_reason = ?, updated_at = ?
		 WHERE id = ?`,
		string(res.Status), res.Details, res.ContactPhone,
		nullTime(res.CheckInAt), nullTime(res.CheckOutAt),
		res.RejectionReason, res.UpdatedAt, res.ID.String())
	if err != nil {
		return fmt.Errorf("update reservation %s: %w", res.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update reservation %s: %w", res.ID, err)
	}
	if affected == 0 {
		return booking.ErrReservationNotFound
	}
	return nil
}

func (s *Reservations) ListNoShows(ctx context.Context, before time.Time) ([]*booking.Reservation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations
		 WHERE status = 'approved' AND check_in_at IS NULL AND end_time <= ?
		 ORDER BY end_time`,
		before)
	if err != nil {
		return nil, fmt.Errorf("list no-show reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*booking.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*booking.Reservation, error) {
	var (
		res        booking.Reservation
		rawID      string
		status     string
		checkInAt  sql.NullTime
		checkOutAt sql.NullTime
	)
	err := row.Scan(&rawID, &res.FacilityID, &res.RequesterID, &res.Start, &res.End,
		&status, &res.Details, &res.ContactPhone, &checkInAt, &checkOutAt,
		&res.RejectionReason, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse reservation id %q: %w", rawID, err)
	}
	res.ID = id
	res.Status = booking.Status(status)
	if checkInAt.Valid {
		t := checkInAt.Time
		res.CheckInAt = &t
	}
	if checkOutAt.Valid {
		t := checkOutAt.Time
		res.CheckOutAt = &t
	}
	return &res, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
