// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/zumagrand/booking-api/internal/handler"
)

// RegisterRoutes registers the health check on the provided Echo
// instance. Load balancers and monitoring probe /healthz to verify
// the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterRooms registers the public room catalog endpoints. These
// are unauthenticated reads the booking UI uses to show rates and
// free rooms before the guest commits.
func RegisterRooms(e *echo.Echo, h *handler.RoomHandler) {
	e.GET("/v1/rooms", h.ListRoomTypes)
	e.GET("/v1/rooms/:type/availability", h.Availability)
}

// RegisterPayments registers the booking flow endpoints. The extra
// middleware (rate limiting) is applied to this group only, since
// these are the endpoints with side effects.
func RegisterPayments(e *echo.Echo, h *handler.PaymentHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/v1/payments", mw...)
	g.POST("/initialize", h.Initialize)
	g.POST("/verify", h.Verify)
}
