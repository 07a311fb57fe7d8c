package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/example/booking-engine/internal/persistence"
)

// BookingRepository implements persistence.BookingRepository on SQLite.
type BookingRepository struct {
	pool *ConnectionPool
}

// NewBookingRepository binds the repository to the pool.
func NewBookingRepository(pool *ConnectionPool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

const bookingColumns = `id, tenant_id, space_id, user_id, start_datetime, end_datetime,
	status, is_permanent, approval_pending, approved_by, approved_at,
	booked_by_user_id, booked_at, created_at, updated_at`

// activeStatuses are the states that hold a slot against the space's capacity.
const activeStatuses = `'reserved', 'checked_in'`

// CreateBooking inserts a reservation. The capacity constraint is
// re-validated inside the transaction: counting the overlapping active
// bookings with the insert pending means two writers racing past the
// in-process lock still cannot overbook the space. A violation surfaces
// as ErrDuplicate.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking persistence.Booking) error {
	if booking.ID == "" {
		return persistence.ErrConstraintViolation
	}
	now := time.Now().UTC()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	if booking.UpdatedAt.IsZero() {
		booking.UpdatedAt = now
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var capacity int
		err := tx.QueryRowContext(ctx,
			`SELECT capacity FROM spaces WHERE id = ?`, booking.SpaceID).Scan(&capacity)
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.ErrForeignKeyViolation
		}
		if err != nil {
			return mapError(err)
		}

		// Half-open overlap on lexicographically ordered RFC3339 strings.
		var occupied int
		err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM bookings
			WHERE space_id = ?
			  AND status IN (`+activeStatuses+`)
			  AND start_datetime < ?
			  AND end_datetime > ?`,
			booking.SpaceID, encodeTime(booking.End), encodeTime(booking.Start),
		).Scan(&occupied)
		if err != nil {
			return mapError(err)
		}
		if occupied+1 > capacity {
			return persistence.ErrDuplicate
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO bookings (`+bookingColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			booking.ID,
			booking.TenantID,
			booking.SpaceID,
			booking.UserID,
			encodeTime(booking.Start),
			encodeTime(booking.End),
			booking.Status,
			encodeBool(booking.IsPermanent),
			encodeBool(booking.ApprovalPending),
			nullString(booking.ApprovedBy),
			nullTime(booking.ApprovedAt),
			booking.BookedByUserID,
			encodeTime(booking.BookedAt),
			encodeTime(booking.CreatedAt),
			encodeTime(booking.UpdatedAt),
		)
		return mapError(err)
	})
}

// UpdateBooking rewrites the mutable columns of an existing booking.
func (r *BookingRepository) UpdateBooking(ctx context.Context, booking persistence.Booking) error {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE bookings
		SET status = ?, approval_pending = ?, approved_by = ?, approved_at = ?, updated_at = ?
		WHERE id = ?`,
		booking.Status,
		encodeBool(booking.ApprovalPending),
		nullString(booking.ApprovedBy),
		nullTime(booking.ApprovedAt),
		encodeTime(time.Now().UTC()),
		booking.ID,
	)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetBooking retrieves a booking by ID.
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	row := r.pool.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	booking, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	return booking, err
}

// ListBookings returns bookings matching the filter, ordered by start time.
func (r *BookingRepository) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	query := `SELECT b.id, b.tenant_id, b.space_id, b.user_id, b.start_datetime, b.end_datetime,
		b.status, b.is_permanent, b.approval_pending, b.approved_by, b.approved_at,
		b.booked_by_user_id, b.booked_at, b.created_at, b.updated_at FROM bookings b`

	var (
		conditions []string
		args       []any
	)
	if filter.OfficeID != "" {
		query += ` JOIN spaces s ON s.id = b.space_id`
		conditions = append(conditions, "s.office_id = ?")
		args = append(args, filter.OfficeID)
	}
	if filter.TenantID != "" {
		conditions = append(conditions, "b.tenant_id = ?")
		args = append(args, filter.TenantID)
	}
	if filter.SpaceID != "" {
		conditions = append(conditions, "b.space_id = ?")
		args = append(args, filter.SpaceID)
	}
	if filter.UserID != "" {
		conditions = append(conditions, "b.user_id = ?")
		args = append(args, filter.UserID)
	}
	if len(filter.Statuses) > 0 {
		placeholders := strings.Repeat("?, ", len(filter.Statuses))
		conditions = append(conditions, "b.status IN ("+placeholders[:len(placeholders)-2]+")")
		for _, status := range filter.Statuses {
			args = append(args, status)
		}
	}
	if filter.OverlapStart != nil && filter.OverlapEnd != nil {
		conditions = append(conditions, "b.start_datetime < ?", "b.end_datetime > ?")
		args = append(args, encodeTime(*filter.OverlapEnd), encodeTime(*filter.OverlapStart))
	}
	if filter.StartsFrom != nil {
		conditions = append(conditions, "b.start_datetime >= ?")
		args = append(args, encodeTime(*filter.StartsFrom))
	}
	if filter.StartedBefore != nil {
		conditions = append(conditions, "b.start_datetime < ?")
		args = append(args, encodeTime(*filter.StartedBefore))
	}
	if filter.EndedBy != nil {
		conditions = append(conditions, "b.end_datetime <= ?")
		args = append(args, encodeTime(*filter.EndedBy))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY b.start_datetime, b.id"

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, mapError(rows.Err())
}

func scanBooking(row rowScanner) (persistence.Booking, error) {
	var (
		booking              persistence.Booking
		start, end           string
		isPermanent          int
		approvalPending      int
		approvedBy           sql.NullString
		approvedAt           sql.NullString
		bookedAt             string
		createdAt, updatedAt string
	)
	err := row.Scan(
		&booking.ID,
		&booking.TenantID,
		&booking.SpaceID,
		&booking.UserID,
		&start,
		&end,
		&booking.Status,
		&isPermanent,
		&approvalPending,
		&approvedBy,
		&approvedAt,
		&booking.BookedByUserID,
		&bookedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Booking{}, err
	}

	booking.IsPermanent = isPermanent != 0
	booking.ApprovalPending = approvalPending != 0
	booking.ApprovedBy = stringPtr(approvedBy)
	if booking.ApprovedAt, err = timePtr(approvedAt); err != nil {
		return persistence.Booking{}, err
	}
	if booking.Start, err = decodeTime(start); err != nil {
		return persistence.Booking{}, err
	}
	if booking.End, err = decodeTime(end); err != nil {
		return persistence.Booking{}, err
	}
	if booking.BookedAt, err = decodeTime(bookedAt); err != nil {
		return persistence.Booking{}, err
	}
	if booking.CreatedAt, err = decodeTime(createdAt); err != nil {
		return persistence.Booking{}, err
	}
	if booking.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return persistence.Booking{}, err
	}
	return booking, nil
}
