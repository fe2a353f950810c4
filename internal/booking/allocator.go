package booking

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zumagrand/booking-api/internal/model"
)

// CreateRequest is the guest's reservation request as received from
// the booking UI. Nights and TotalAmount are accepted for interface
// compatibility but recomputed server-side from the catalog rate;
// the client's figures are never trusted.
type CreateRequest struct {
	FullName        string `json:"fullName" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required"`
	RoomType        string `json:"roomType" validate:"required"`
	Guests          uint32 `json:"guests" validate:"required,gt=0"`
	CheckIn         string `json:"checkIn" validate:"required"`
	CheckOut        string `json:"checkOut" validate:"required"`
	Nights          uint32 `json:"nights"`
	TotalAmount     uint64 `json:"totalAmount"`
	SpecialRequests string `json:"specialRequests"`
}

// CreateResult is returned on successful allocation: the persisted
// pending booking plus the gateway URL the guest pays at.
type CreateResult struct {
	Booking          *model.Booking
	AuthorizationURL string
}

const dateLayout = "2006-01-02"

// CreateBooking validates the request, allocates a room and persists
// a pending booking, then opens a gateway transaction for it.
//
// Room selection is deterministic: active rooms of the type are
// ordered by ascending id and the first one without an overlapping
// paid booking wins. Pending bookings do not hold inventory, so two
// guests racing for the last room can both end up pending on it; the
// conflict is resolved at payment time by Store.MarkPaid.
func (s *Service) CreateBooking(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	checkIn, err := time.Parse(dateLayout, req.CheckIn)
	if err != nil {
		return nil, fmt.Errorf("%w: bad checkIn date %q", ErrValidation, req.CheckIn)
	}
	checkOut, err := time.Parse(dateLayout, req.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("%w: bad checkOut date %q", ErrValidation, req.CheckOut)
	}
	nights := model.NightsBetween(checkIn, checkOut)
	if nights == 0 {
		return nil, fmt.Errorf("%w: checkOut must be after checkIn", ErrValidation)
	}

	roomType, err := s.catalog.RoomTypeByCode(ctx, req.RoomType)
	if err != nil {
		return nil, err
	}

	room, err := s.pickRoom(ctx, roomType.Code, checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	total := roomType.NightlyRate * uint64(nights)
	reference, err := newReference()
	if err != nil {
		return nil, err
	}

	b := &model.Booking{
		ID:               uuid.New().String(),
		FullName:         req.FullName,
		Email:            req.Email,
		Phone:            req.Phone,
		RoomType:         roomType.Code,
		RoomID:           &room.ID,
		RoomNumber:       &room.RoomNumber,
		Guests:           req.Guests,
		CheckIn:          checkIn,
		CheckOut:         checkOut,
		Nights:           nights,
		TotalAmount:      total,
		PaymentStatus:    model.PaymentPending,
		PaymentReference: reference,
	}
	if req.SpecialRequests != "" {
		sr := req.SpecialRequests
		b.SpecialRequests = &sr
	}
	if err := s.store.Create(ctx, b); err != nil {
		return nil, err
	}
	s.log.Info("booking created",
		zap.String("booking_id", b.ID),
		zap.String("reference", reference),
		zap.Uint32("room_number", room.RoomNumber),
		zap.Uint64("total_amount", total))

	auth, err := s.gateway.Initialize(ctx, GatewayInit{
		Reference:   reference,
		Amount:      total,
		Email:       b.Email,
		CallbackURL: fmt.Sprintf("%s/book?reference=%s", s.callbackURL, reference),
		Metadata: map[string]interface{}{
			"booking_id":  b.ID,
			"full_name":   b.FullName,
			"room_type":   b.RoomType,
			"room_number": room.RoomNumber,
			"check_in":    req.CheckIn,
			"check_out":   req.CheckOut,
		},
	})
	if err != nil {
		// The pending row stays behind; it never blocks inventory and
		// the guest can simply retry.
		return nil, err
	}
	return &CreateResult{Booking: b, AuthorizationURL: auth.AuthorizationURL}, nil
}

// AvailableRooms returns the active rooms of a type that have no paid
// booking overlapping [checkIn, checkOut). A room with only pending
// bookings in the window is reported as free.
func (s *Service) AvailableRooms(ctx context.Context, roomType string, checkIn, checkOut time.Time) ([]model.Room, error) {
	if !checkOut.After(checkIn) {
		return nil, fmt.Errorf("%w: checkOut must be after checkIn", ErrValidation)
	}
	if _, err := s.catalog.RoomTypeByCode(ctx, roomType); err != nil {
		return nil, err
	}
	rooms, err := s.catalog.ActiveRoomsByType(ctx, roomType)
	if err != nil {
		return nil, err
	}
	booked, err := s.store.BookedRoomIDs(ctx, checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	free := make([]model.Room, 0, len(rooms))
	for _, rm := range rooms {
		if _, taken := booked[rm.ID]; !taken {
			free = append(free, rm)
		}
	}
	return free, nil
}

// pickRoom returns the first free room of the type for the window, or
// ErrUnavailable when every active room is booked (or none exist).
func (s *Service) pickRoom(ctx context.Context, roomType string, checkIn, checkOut time.Time) (*model.Room, error) {
	rooms, err := s.catalog.ActiveRoomsByType(ctx, roomType)
	if err != nil {
		return nil, err
	}
	if len(rooms) == 0 {
		return nil, ErrUnavailable
	}
	booked, err := s.store.BookedRoomIDs(ctx, checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	for i := range rooms {
		if _, taken := booked[rooms[i].ID]; !taken {
			return &rooms[i], nil
		}
	}
	return nil, ErrUnavailable
}

// newReference generates a payment reference of the form
// ZUMA-<unix millis>-<random hex>. The random suffix comes from
// crypto/rand so references cannot be guessed or collide in practice.
func newReference() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("ZUMA-%d-%s", time.Now().UnixMilli(), hex.EncodeToString(b)), nil
}
