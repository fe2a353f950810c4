// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingPaidQueue is the durable queue that carries paid-booking events.
const BookingPaidQueue = "booking.paid"

// BookingPaidEvent is published when a booking reaches the paid status.
// It carries the full booking snapshot so downstream consumers can
// notify the operator without querying the primary database.
type BookingPaidEvent struct {
	BookingID   string `json:"booking_id"`
	Reference   string `json:"reference"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	RoomType    string `json:"room_type"`
	RoomNumber  uint32 `json:"room_number"`
	Guests      uint32 `json:"guests"`
	CheckIn     string `json:"check_in"`
	CheckOut    string `json:"check_out"`
	Nights      uint32 `json:"nights"`
	TotalAmount uint64 `json:"total_amount"`
	PaidAt      string `json:"paid_at"`
}
