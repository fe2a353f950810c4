package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zumagrand/booking-api/internal/booking"
	"github.com/zumagrand/booking-api/internal/model"
	"github.com/zumagrand/booking-api/internal/repository"
)

// CatalogService exposes the read-only room catalog operations.
type CatalogService interface {
	RoomTypes(ctx context.Context) ([]model.RoomType, error)
	AvailableRooms(ctx context.Context, roomType string, checkIn, checkOut time.Time) ([]model.Room, error)
}

// RoomHandler serves the room catalog endpoints used by the booking UI.
type RoomHandler struct {
	svc CatalogService
}

// NewRoomHandler constructs a RoomHandler over the given service.
func NewRoomHandler(svc CatalogService) *RoomHandler {
	if svc == nil {
		panic("nil service passed to NewRoomHandler")
	}
	return &RoomHandler{svc: svc}
}

// ListRoomTypes handles GET /v1/rooms. It returns the catalog of room
// types with their nightly rates.
func (h *RoomHandler) ListRoomTypes(c echo.Context) error {
	types, err := h.svc.RoomTypes(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load room types"})
	}
	out := make([]echo.Map, 0, len(types))
	for _, rt := range types {
		out = append(out, echo.Map{
			"code":         rt.Code,
			"name":         rt.Name,
			"nightly_rate": rt.NightlyRate,
			"capacity":     rt.Capacity,
			"floor_area":   rt.FloorArea,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"room_types": out})
}

// Availability handles GET /v1/rooms/:type/availability. The
// check_in and check_out query parameters are calendar dates; the
// response lists the rooms of the type that have no overlapping paid
// booking in that window. A room with only pending bookings counts
// as free.
func (h *RoomHandler) Availability(c echo.Context) error {
	roomType := c.Param("type")
	checkIn, err1 := time.Parse("2006-01-02", c.QueryParam("check_in"))
	checkOut, err2 := time.Parse("2006-01-02", c.QueryParam("check_out"))
	if err1 != nil || err2 != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_in and check_out must be YYYY-MM-DD dates"})
	}
	rooms, err := h.svc.AvailableRooms(c.Request().Context(), roomType, checkIn, checkOut)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrValidation):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrRoomTypeNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown room type"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check availability"})
		}
	}
	out := make([]echo.Map, 0, len(rooms))
	for _, rm := range rooms {
		out = append(out, echo.Map{"id": rm.ID, "room_number": rm.RoomNumber})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"room_type": roomType,
		"check_in":  c.QueryParam("check_in"),
		"check_out": c.QueryParam("check_out"),
		"available": out,
	})
}
