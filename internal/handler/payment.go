package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zumagrand/booking-api/internal/booking"
	"github.com/zumagrand/booking-api/internal/model"
	"github.com/zumagrand/booking-api/internal/repository"
)

// BookingService is the slice of the booking core the payment
// endpoints need. Narrowed to an interface so tests can substitute a
// fake without a database or gateway.
type BookingService interface {
	CreateBooking(ctx context.Context, req booking.CreateRequest) (*booking.CreateResult, error)
	Reconcile(ctx context.Context, reference string) (*booking.Outcome, error)
}

// PaymentHandler serves the two booking-UI operations: initializing a
// reservation with a pending payment and verifying the payment's
// outcome afterwards.
type PaymentHandler struct {
	svc BookingService
}

// NewPaymentHandler constructs a PaymentHandler over the given service.
func NewPaymentHandler(svc BookingService) *PaymentHandler {
	if svc == nil {
		panic("nil service passed to NewPaymentHandler")
	}
	return &PaymentHandler{svc: svc}
}

// Initialize handles POST /v1/payments/initialize. It allocates a
// room, persists a pending booking and returns the gateway
// authorization URL the guest must visit to pay. Unavailability is a
// business rejection (409 with unavailable:true), not an error page.
func (h *PaymentHandler) Initialize(c echo.Context) error {
	var req booking.CreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request body"})
	}
	res, err := h.svc.CreateBooking(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrValidation), errors.Is(err, repository.ErrRoomTypeNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": err.Error()})
		case errors.Is(err, booking.ErrUnavailable):
			return c.JSON(http.StatusConflict, echo.Map{
				"success":     false,
				"unavailable": true,
				"error":       "All rooms of this type are booked for the selected dates. Please choose different dates or room type.",
			})
		case errors.Is(err, booking.ErrGatewayTimeout):
			return c.JSON(http.StatusGatewayTimeout, echo.Map{"success": false, "error": "payment provider timed out, please try again"})
		case errors.Is(err, booking.ErrGateway):
			return c.JSON(http.StatusBadGateway, echo.Map{"success": false, "error": "payment provider unavailable, please try again"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to create booking"})
		}
	}
	b := res.Booking
	return c.JSON(http.StatusOK, echo.Map{
		"success":           true,
		"authorization_url": res.AuthorizationURL,
		"reference":         b.PaymentReference,
		"booking_id":        b.ID,
		"room_number":       b.RoomNumber,
	})
}

// Verify handles POST /v1/payments/verify. It reconciles the booking
// matched by the payment reference against the gateway and returns
// the booking's current state. Calling it again for an already
// finalised booking returns the same response without touching the
// gateway.
func (h *PaymentHandler) Verify(c echo.Context) error {
	var req struct {
		Reference string `json:"reference"`
	}
	if err := c.Bind(&req); err != nil || req.Reference == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "missing payment reference"})
	}
	out, err := h.svc.Reconcile(c.Request().Context(), req.Reference)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "unknown payment reference"})
		case errors.Is(err, repository.ErrRoomConflict):
			return c.JSON(http.StatusConflict, echo.Map{
				"success":  false,
				"conflict": true,
				"error":    "The room was taken while payment completed. Our staff will contact you about a refund.",
			})
		case errors.Is(err, booking.ErrGatewayTimeout):
			return c.JSON(http.StatusGatewayTimeout, echo.Map{"success": false, "error": "verification timed out, please try again"})
		case errors.Is(err, booking.ErrGateway):
			return c.JSON(http.StatusBadGateway, echo.Map{"success": false, "error": "payment provider unavailable, please try again"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to verify payment"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"status":  out.Booking.PaymentStatus,
		"booking": bookingJSON(out.Booking),
	})
}

// bookingJSON shapes a booking for the confirmation view. The same
// data is returned however many times verify is called.
func bookingJSON(b *model.Booking) echo.Map {
	var roomNumber interface{}
	if b.RoomNumber != nil {
		roomNumber = *b.RoomNumber
	}
	return echo.Map{
		"id":            b.ID,
		"fullName":      b.FullName,
		"email":         b.Email,
		"roomType":      b.RoomType,
		"roomNumber":    roomNumber,
		"checkIn":       b.CheckIn.Format("2006-01-02"),
		"checkOut":      b.CheckOut.Format("2006-01-02"),
		"nights":        b.Nights,
		"totalAmount":   b.TotalAmount,
		"paymentStatus": b.PaymentStatus,
	}
}
