// Package booking implements the room-allocation and
// payment-reconciliation core. The service is stateless between
// requests: the relational store owns all booking state, the payment
// gateway and the notifier are injected as capability interfaces so
// alternate providers can be substituted in tests.
package booking

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/zumagrand/booking-api/internal/model"
	"github.com/zumagrand/booking-api/internal/queue"
)

// Catalog is the read-only view of the room catalog the allocator
// needs. Implemented by repository.RoomRepo.
type Catalog interface {
	RoomTypes(ctx context.Context) ([]model.RoomType, error)
	RoomTypeByCode(ctx context.Context, code string) (*model.RoomType, error)
	ActiveRoomsByType(ctx context.Context, code string) ([]model.Room, error)
}

// Store is the mutable booking state. Implemented by
// repository.BookingRepo. MarkPaid and MarkFailed are conditional
// updates: they report whether this call performed the
// pending -> terminal transition.
type Store interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByReference(ctx context.Context, reference string) (*model.Booking, error)
	BookedRoomIDs(ctx context.Context, checkIn, checkOut time.Time) (map[uint64]struct{}, error)
	MarkPaid(ctx context.Context, reference, gatewayRef string) (bool, error)
	MarkFailed(ctx context.Context, reference, gatewayRef string) (bool, error)
}

// GatewayInit is the request to open a transaction with the payment
// provider. Amount is in whole naira; adapters convert to the
// provider's minor unit themselves.
type GatewayInit struct {
	Reference   string
	Amount      uint64
	Email       string
	CallbackURL string
	Metadata    map[string]interface{}
}

// GatewayAuthorization is what the provider returns when a
// transaction is opened: the URL the guest must visit to pay.
type GatewayAuthorization struct {
	AuthorizationURL string
	AccessCode       string
}

// GatewayVerification is the provider's answer about a transaction's
// true outcome. Success means the guest paid; anything else is a
// failed payment. Transport or envelope trouble is reported through
// errors, never through Success=false.
type GatewayVerification struct {
	Success          bool
	GatewayReference string
}

// Gateway is the payment provider boundary. Responses must be treated
// as untrusted: adapters map malformed envelopes to errors rather
// than to a verification result.
type Gateway interface {
	Initialize(ctx context.Context, init GatewayInit) (*GatewayAuthorization, error)
	Verify(ctx context.Context, reference string) (*GatewayVerification, error)
}

// Notifier is the best-effort side channel that tells the operator
// about a newly paid booking. Failures are logged and swallowed by
// the service; retries, if any, belong to the notification layer.
type Notifier interface {
	BookingPaid(ctx context.Context, ev queue.BookingPaidEvent) error
}

// Service wires the allocator and the reconciliation engine over the
// injected store, catalog, gateway and notifier.
type Service struct {
	catalog     Catalog
	store       Store
	gateway     Gateway
	notifier    Notifier
	validate    *validator.Validate
	log         *zap.Logger
	callbackURL string // public base URL the gateway redirects back to
}

// NewService constructs the booking service. The notifier may be nil,
// in which case paid bookings are only logged. callbackURL is the
// public site base, e.g. "https://zumagrand.com".
func NewService(catalog Catalog, store Store, gateway Gateway, notifier Notifier, callbackURL string, log *zap.Logger) *Service {
	if catalog == nil || store == nil || gateway == nil {
		panic("nil dependency passed to booking.NewService")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		catalog:     catalog,
		store:       store,
		gateway:     gateway,
		notifier:    notifier,
		validate:    validator.New(),
		log:         log,
		callbackURL: callbackURL,
	}
}

// RoomTypes returns the room catalog for display.
func (s *Service) RoomTypes(ctx context.Context) ([]model.RoomType, error) {
	return s.catalog.RoomTypes(ctx)
}
