package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
)

const bookingSelect = `SELECT b.id, b.start_at, b.end_at, b.item_id, i.name, i.owner_id,
                 b.booker_id, b.status, b.version, b.created_at, b.updated_at
          FROM bookings b JOIN items i ON i.id = b.item_id`

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (start_at, end_at, item_id, booker_id, status, version, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, 1, ?, ?) RETURNING id`
	now := time.Now().UTC()
	var id int64
	err := db.QueryRowContext(ctx, db.rebind(query),
		formatTime(booking.Start),
		formatTime(booking.End),
		booking.ItemID,
		booking.BookerID,
		booking.Status,
		formatTime(now),
		formatTime(now),
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	booking.ID = id
	booking.Start = booking.Start.UTC()
	booking.End = booking.End.UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := scanBooking(db.QueryRowContext(ctx, db.rebind(bookingSelect+` WHERE b.id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: booking %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// UpdateBookingStatusWithVersion moves a booking from one status to another
// only if neither its version nor its status changed since it was read.
// A lost race reports domain.ErrIllegalTransition when the row already left
// the expected status, ErrConcurrentModification otherwise.
func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, id, version int64, from, to models.Status) error {
	query := `UPDATE bookings SET status = ?, version = version + 1, updated_at = ?
              WHERE id = ? AND version = ? AND status = ?`
	result, err := db.ExecContext(ctx, db.rebind(query), to, formatTime(time.Now()), id, version, from)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if rows == 1 {
		return nil
	}

	current, err := db.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if current.Status != from {
		return fmt.Errorf("%w: booking %d is %s", domain.ErrIllegalTransition, id, current.Status)
	}
	return ErrConcurrentModification
}

// FindBookings returns bookings matching the query ordered by start (then id),
// descending unless the query asks otherwise.
func (db *DB) FindBookings(ctx context.Context, q models.BookingQuery) ([]*models.Booking, error) {
	if q.ItemIDs != nil && len(q.ItemIDs) == 0 {
		return []*models.Booking{}, nil
	}

	var (
		conds []string
		args  []interface{}
	)
	if q.BookerID != 0 {
		conds = append(conds, "b.booker_id = ?")
		args = append(args, q.BookerID)
	}
	if len(q.ItemIDs) > 0 {
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(q.ItemIDs)), ", ")
		conds = append(conds, "b.item_id IN ("+marks+")")
		for _, id := range q.ItemIDs {
			args = append(args, id)
		}
	}
	if q.StartAtOrBefore != nil {
		conds = append(conds, "b.start_at <= ?")
		args = append(args, formatTime(*q.StartAtOrBefore))
	}
	if q.StartAfter != nil {
		conds = append(conds, "b.start_at > ?")
		args = append(args, formatTime(*q.StartAfter))
	}
	if q.EndAtOrAfter != nil {
		conds = append(conds, "b.end_at >= ?")
		args = append(args, formatTime(*q.EndAtOrAfter))
	}
	if q.EndBefore != nil {
		conds = append(conds, "b.end_at < ?")
		args = append(args, formatTime(*q.EndBefore))
	}
	if q.Status != "" {
		conds = append(conds, "b.status = ?")
		args = append(args, q.Status)
	}
	if q.ExcludeStatus != "" {
		conds = append(conds, "b.status <> ?")
		args = append(args, q.ExcludeStatus)
	}

	query := bookingSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	if q.Ascending {
		query += " ORDER BY b.start_at ASC, b.id ASC"
	} else {
		query += " ORDER BY b.start_at DESC, b.id DESC"
	}
	if q.Page.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, q.Page.Limit, q.Page.Offset)
	}

	rows, err := db.QueryContext(ctx, db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer rows.Close()

	bookings := []*models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var (
		b                                models.Booking
		start, end, createdAt, updatedAt string
	)
	if err := row.Scan(&b.ID, &start, &end, &b.ItemID, &b.ItemName, &b.OwnerID,
		&b.BookerID, &b.Status, &b.Version, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if b.Start, err = parseTime(start); err != nil {
		return nil, err
	}
	if b.End, err = parseTime(end); err != nil {
		return nil, err
	}
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}
