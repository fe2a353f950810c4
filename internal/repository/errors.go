// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// booking service and handlers to distinguish between different failure
// scenarios. For example, ErrBookingNotFound indicates that a payment
// reference does not match any booking, while ErrRoomConflict signals
// that a paid-transition lost the room to another paid booking with an
// overlapping stay.
package repository

import "errors"

// ErrRoomTypeNotFound is returned when a requested room type code does
// not exist in the catalog.
var ErrRoomTypeNotFound = errors.New("room type not found")

// ErrBookingNotFound is returned when no booking matches the given
// payment reference. Handlers should translate this into an HTTP 404
// response.
var ErrBookingNotFound = errors.New("booking not found")

// ErrRoomConflict is returned when a booking could not be marked paid
// because another paid booking already occupies the same room for an
// overlapping stay. The booking is marked failed instead and the guest
// must be refunded through the manual-intervention path. Handlers
// should translate this into an HTTP 409 response.
var ErrRoomConflict = errors.New("room already taken for these dates")
