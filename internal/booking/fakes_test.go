package booking

import (
	"context"
	"sync"
	"time"

	"github.com/zumagrand/booking-api/internal/model"
	"github.com/zumagrand/booking-api/internal/queue"
	"github.com/zumagrand/booking-api/internal/repository"
)

// fakeCatalog serves a fixed room catalog from memory.
type fakeCatalog struct {
	types map[string]model.RoomType
	rooms map[string][]model.Room // keyed by room type code, already ordered by id
}

func (f *fakeCatalog) RoomTypes(ctx context.Context) ([]model.RoomType, error) {
	out := make([]model.RoomType, 0, len(f.types))
	for _, rt := range f.types {
		out = append(out, rt)
	}
	return out, nil
}

func (f *fakeCatalog) RoomTypeByCode(ctx context.Context, code string) (*model.RoomType, error) {
	rt, ok := f.types[code]
	if !ok {
		return nil, repository.ErrRoomTypeNotFound
	}
	return &rt, nil
}

func (f *fakeCatalog) ActiveRoomsByType(ctx context.Context, code string) ([]model.Room, error) {
	rooms := make([]model.Room, 0)
	for _, rm := range f.rooms[code] {
		if rm.IsActive {
			rooms = append(rooms, rm)
		}
	}
	return rooms, nil
}

// fakeStore is an in-memory Store with the same conditional-update
// semantics as the MySQL repository: transitions only apply while the
// booking is still pending, and MarkPaid re-validates room overlap
// against paid bookings.
type fakeStore struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking // by payment reference
}

func newFakeStore() *fakeStore {
	return &fakeStore{bookings: make(map[string]*model.Booking)}
}

func (f *fakeStore) Create(ctx context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *b
	f.bookings[b.PaymentReference] = &cp
	return nil
}

func (f *fakeStore) GetByReference(ctx context.Context, reference string) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[reference]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) BookedRoomIDs(ctx context.Context, checkIn, checkOut time.Time) (map[uint64]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booked := make(map[uint64]struct{})
	for _, b := range f.bookings {
		if b.PaymentStatus == model.PaymentPaid && b.RoomID != nil &&
			model.Overlaps(b.CheckIn, b.CheckOut, checkIn, checkOut) {
			booked[*b.RoomID] = struct{}{}
		}
	}
	return booked, nil
}

func (f *fakeStore) MarkPaid(ctx context.Context, reference, gatewayRef string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[reference]
	if !ok {
		return false, repository.ErrBookingNotFound
	}
	if b.PaymentStatus != model.PaymentPending {
		return false, nil
	}
	if b.RoomID != nil {
		for _, other := range f.bookings {
			if other.ID == b.ID || other.PaymentStatus != model.PaymentPaid || other.RoomID == nil {
				continue
			}
			if *other.RoomID == *b.RoomID && model.Overlaps(other.CheckIn, other.CheckOut, b.CheckIn, b.CheckOut) {
				b.PaymentStatus = model.PaymentFailed
				if gatewayRef != "" {
					b.GatewayReference = &gatewayRef
				}
				return false, repository.ErrRoomConflict
			}
		}
	}
	b.PaymentStatus = model.PaymentPaid
	if gatewayRef != "" {
		b.GatewayReference = &gatewayRef
	}
	return true, nil
}

func (f *fakeStore) MarkFailed(ctx context.Context, reference, gatewayRef string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[reference]
	if !ok {
		return false, repository.ErrBookingNotFound
	}
	if b.PaymentStatus != model.PaymentPending {
		return false, nil
	}
	b.PaymentStatus = model.PaymentFailed
	if gatewayRef != "" {
		b.GatewayReference = &gatewayRef
	}
	return true, nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bookings)
}

// fakeGateway scripts the provider's answers for a test.
type fakeGateway struct {
	mu          sync.Mutex
	initCalls   int
	verifyCalls int
	initErr     error
	verifyErr   error
	verify      GatewayVerification
	lastInit    GatewayInit
}

func (f *fakeGateway) Initialize(ctx context.Context, init GatewayInit) (*GatewayAuthorization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initCalls++
	f.lastInit = init
	if f.initErr != nil {
		return nil, f.initErr
	}
	return &GatewayAuthorization{AuthorizationURL: "https://checkout.paystack.com/" + init.Reference}, nil
}

func (f *fakeGateway) Verify(ctx context.Context, reference string) (*GatewayVerification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalls++
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	v := f.verify
	return &v, nil
}

// fakeNotifier records every event it receives.
type fakeNotifier struct {
	mu     sync.Mutex
	events []queue.BookingPaidEvent
	err    error
}

func (f *fakeNotifier) BookingPaid(ctx context.Context, ev queue.BookingPaidEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

// testCatalog is the seeded hotel catalog most tests use.
func testCatalog() *fakeCatalog {
	return &fakeCatalog{
		types: map[string]model.RoomType{
			"single": {ID: 1, Code: "single", Name: "Single Room", NightlyRate: 45000, Capacity: 1, FloorArea: "25 sqm"},
			"double": {ID: 2, Code: "double", Name: "Double Room", NightlyRate: 75000, Capacity: 2, FloorArea: "35 sqm"},
			"suite":  {ID: 3, Code: "suite", Name: "Executive Suite", NightlyRate: 150000, Capacity: 4, FloorArea: "65 sqm"},
		},
		rooms: map[string][]model.Room{
			"single": {{ID: 11, RoomTypeID: 1, RoomNumber: 101, IsActive: true}},
			"double": {
				{ID: 21, RoomTypeID: 2, RoomNumber: 201, IsActive: true},
				{ID: 22, RoomTypeID: 2, RoomNumber: 202, IsActive: true},
			},
			"suite": {}, // no active suites
		},
	}
}
