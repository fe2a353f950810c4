package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/zumagrand/booking-api/internal/model"
)

// dateLayout is how calendar dates are bound into DATE columns.
const dateLayout = "2006-01-02"

// BookingRepo provides data access to the bookings table. The table
// is the sole owner of booking mutable state; every status change
// goes through a conditional update so that a booking leaves the
// pending status at most once regardless of how many concurrent
// verification calls race on the same payment reference.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, full_name, email, phone, room_type, room_id, room_number,
                        guests, check_in, check_out, nights, total_amount,
                        special_requests, payment_status, payment_reference,
                        gateway_reference, created_at, updated_at`

// scanBooking scans one bookings row from the given row scanner.
func scanBooking(sc interface{ Scan(...interface{}) error }) (*model.Booking, error) {
	var b model.Booking
	var roomID sql.NullInt64
	var roomNumber sql.NullInt64
	var special sql.NullString
	var gatewayRef sql.NullString
	err := sc.Scan(
		&b.ID, &b.FullName, &b.Email, &b.Phone, &b.RoomType, &roomID, &roomNumber,
		&b.Guests, &b.CheckIn, &b.CheckOut, &b.Nights, &b.TotalAmount,
		&special, &b.PaymentStatus, &b.PaymentReference,
		&gatewayRef, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if roomID.Valid {
		id := uint64(roomID.Int64)
		b.RoomID = &id
	}
	if roomNumber.Valid {
		n := uint32(roomNumber.Int64)
		b.RoomNumber = &n
	}
	if special.Valid {
		s := special.String
		b.SpecialRequests = &s
	}
	if gatewayRef.Valid {
		g := gatewayRef.String
		b.GatewayReference = &g
	}
	return &b, nil
}

// Create inserts a new pending booking and reads the row back to
// populate database-assigned timestamps. Exactly one row is created
// per successful call; on error the caller must not assume partial
// success.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings
               (id, full_name, email, phone, room_type, room_id, room_number,
                guests, check_in, check_out, nights, total_amount,
                special_requests, payment_status, payment_reference)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var roomID, roomNumber interface{}
	if b.RoomID != nil {
		roomID = *b.RoomID
	}
	if b.RoomNumber != nil {
		roomNumber = *b.RoomNumber
	}
	var special interface{}
	if b.SpecialRequests != nil {
		special = *b.SpecialRequests
	}
	_, err := r.db.ExecContext(ctx, q,
		b.ID, b.FullName, b.Email, b.Phone, b.RoomType, roomID, roomNumber,
		b.Guests, b.CheckIn.Format(dateLayout), b.CheckOut.Format(dateLayout),
		b.Nights, b.TotalAmount, special, b.PaymentStatus, b.PaymentReference,
	)
	if err != nil {
		return err
	}
	const sel = `SELECT created_at, updated_at FROM bookings WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, b.ID).Scan(&b.CreatedAt, &b.UpdatedAt)
}

// GetByReference returns the booking with the given payment
// reference, or ErrBookingNotFound when no such booking exists.
func (r *BookingRepo) GetByReference(ctx context.Context, reference string) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE payment_reference = ?`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, reference))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// BookedRoomIDs returns the ids of rooms that have a paid booking
// overlapping the half-open stay interval [checkIn, checkOut).
// Pending bookings are deliberately excluded: an uncompleted payment
// never holds inventory.
func (r *BookingRepo) BookedRoomIDs(ctx context.Context, checkIn, checkOut time.Time) (map[uint64]struct{}, error) {
	const q = `SELECT room_id FROM bookings
               WHERE payment_status = 'paid'
                 AND room_id IS NOT NULL
                 AND check_in < ? AND check_out > ?`
	rows, err := r.db.QueryContext(ctx, q, checkOut.Format(dateLayout), checkIn.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	booked := make(map[uint64]struct{})
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		booked[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return booked, nil
}

// MarkFailed transitions the booking with the given payment reference
// from pending to failed and records the gateway reference. The update
// is conditional on the current status still being pending; when some
// other call already finalised the booking, no row is touched and
// false is returned.
func (r *BookingRepo) MarkFailed(ctx context.Context, reference, gatewayRef string) (bool, error) {
	const q = `UPDATE bookings
               SET payment_status = 'failed', gateway_reference = ?
               WHERE payment_reference = ? AND payment_status = 'pending'`
	res, err := r.db.ExecContext(ctx, q, nullIfEmpty(gatewayRef), reference)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// MarkPaid transitions the booking with the given payment reference
// from pending to paid. Before applying the transition it re-validates,
// inside one transaction, that no other paid booking occupies the same
// room for an overlapping stay. The allocated room's row is locked
// first so that concurrent paid-transitions for the same room
// serialize instead of both passing the overlap check.
//
// Returns true when this call performed the pending -> paid
// transition and false when the booking was already terminal. When
// the room turned out to be taken, the booking is marked failed and
// ErrRoomConflict is returned; the caller must route the guest to the
// refund path.
func (r *BookingRepo) MarkPaid(ctx context.Context, reference, gatewayRef string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const sel = `SELECT id, room_id, check_in, check_out, payment_status
                 FROM bookings WHERE payment_reference = ? FOR UPDATE`
	var id string
	var roomID sql.NullInt64
	var checkIn, checkOut time.Time
	var status string
	err = tx.QueryRowContext(ctx, sel, reference).Scan(&id, &roomID, &checkIn, &checkOut, &status)
	if err == sql.ErrNoRows {
		return false, ErrBookingNotFound
	}
	if err != nil {
		return false, err
	}
	if status != model.PaymentPending {
		// Already finalised by a concurrent call; nothing to apply.
		if err := tx.Commit(); err != nil {
			return false, err
		}
		committed = true
		return false, nil
	}

	if roomID.Valid {
		// Serialize paid-transitions per room, then re-check overlap
		// against paid bookings only. The pre-payment availability
		// check may be stale by now.
		if _, err := tx.ExecContext(ctx, `SELECT id FROM rooms WHERE id = ? FOR UPDATE`, roomID.Int64); err != nil {
			return false, err
		}
		const overlapQ = `SELECT COUNT(*) FROM bookings
                          WHERE room_id = ? AND payment_status = 'paid' AND id <> ?
                            AND check_in < ? AND check_out > ?`
		var conflicts int
		err = tx.QueryRowContext(ctx, overlapQ, roomID.Int64, id,
			checkOut.Format(dateLayout), checkIn.Format(dateLayout)).Scan(&conflicts)
		if err != nil {
			return false, err
		}
		if conflicts > 0 {
			const failQ = `UPDATE bookings SET payment_status = 'failed', gateway_reference = ?
                           WHERE id = ? AND payment_status = 'pending'`
			if _, err := tx.ExecContext(ctx, failQ, nullIfEmpty(gatewayRef), id); err != nil {
				return false, err
			}
			if err := tx.Commit(); err != nil {
				return false, err
			}
			committed = true
			return false, ErrRoomConflict
		}
	}

	const paidQ = `UPDATE bookings SET payment_status = 'paid', gateway_reference = ?
                   WHERE id = ? AND payment_status = 'pending'`
	res, err := tx.ExecContext(ctx, paidQ, nullIfEmpty(gatewayRef), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	return n == 1, nil
}

// nullIfEmpty maps an empty string to SQL NULL so that optional
// columns stay NULL instead of storing "".
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
