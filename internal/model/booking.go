package model

import "time"

// Payment statuses a booking can be in.  A booking is created as
// PaymentPending and moves exactly once to PaymentPaid or
// PaymentFailed; both are terminal.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// Booking is a guest's reservation record, the unit of allocation
// and payment.  The database row is the single source of truth;
// the core never caches booking state across requests.
//
// Fields:
//  ID               – opaque UUID assigned at creation.
//  FullName         – guest's full name.
//  Email            – guest's email address.
//  Phone            – guest's phone number.
//  RoomType         – requested room type code.
//  RoomID           – allocated room, nil until allocation succeeds.
//  RoomNumber       – human-facing number of the allocated room.
//  Guests           – party size.
//  CheckIn          – arrival date (date only, UTC).
//  CheckOut         – departure date, strictly after CheckIn.
//  Nights           – derived night count, CheckOut - CheckIn.
//  TotalAmount      – nightly rate × nights in whole naira, fixed
//                     at creation and never recomputed.
//  SpecialRequests  – optional free-text request from the guest.
//  PaymentStatus    – pending, paid or failed.
//  PaymentReference – unique token correlating the booking with a
//                     gateway transaction; assigned once.
//  GatewayReference – reference echoed back by the gateway after a
//                     successful verification, nil until then.
type Booking struct {
	ID               string     // bookings.id
	FullName         string     // bookings.full_name
	Email            string     // bookings.email
	Phone            string     // bookings.phone
	RoomType         string     // bookings.room_type
	RoomID           *uint64    // bookings.room_id
	RoomNumber       *uint32    // bookings.room_number
	Guests           uint32     // bookings.guests
	CheckIn          time.Time  // bookings.check_in
	CheckOut         time.Time  // bookings.check_out
	Nights           uint32     // bookings.nights
	TotalAmount      uint64     // bookings.total_amount
	SpecialRequests  *string    // bookings.special_requests
	PaymentStatus    string     // bookings.payment_status
	PaymentReference string     // bookings.payment_reference
	GatewayReference *string    // bookings.gateway_reference
	CreatedAt        time.Time  // bookings.created_at
	UpdatedAt        time.Time  // bookings.updated_at
}

// Terminal reports whether the booking's payment status can no
// longer change.
func (b *Booking) Terminal() bool {
	return b.PaymentStatus == PaymentPaid || b.PaymentStatus == PaymentFailed
}

// NightsBetween returns the number of nights between two calendar
// dates.  Callers must ensure checkOut is after checkIn; the
// result is 0 otherwise.
func NightsBetween(checkIn, checkOut time.Time) uint32 {
	d := checkOut.Sub(checkIn)
	if d <= 0 {
		return 0
	}
	return uint32(d.Hours() / 24)
}

// Overlaps reports whether two half-open stay intervals
// [in1, out1) and [in2, out2) share at least one night.
func Overlaps(in1, out1, in2, out2 time.Time) bool {
	return in1.Before(out2) && out1.After(in2)
}
