package booking

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/zumagrand/booking-api/internal/model"
)

func newTestService(store *fakeStore, gw *fakeGateway, notif *fakeNotifier) *Service {
	return NewService(testCatalog(), store, gw, notif, "https://zumagrand.com", zap.NewNop())
}

func validRequest() CreateRequest {
	return CreateRequest{
		FullName: "Amina Bello",
		Email:    "amina@example.com",
		Phone:    "+2349048234626",
		RoomType: "single",
		Guests:   1,
		CheckIn:  "2025-06-01",
		CheckOut: "2025-06-03",
	}
}

func TestCreateBookingAllocatesPendingBooking(t *testing.T) {
	store := newFakeStore()
	gw := &fakeGateway{}
	svc := newTestService(store, gw, &fakeNotifier{})

	res, err := svc.CreateBooking(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	b := res.Booking
	if b.PaymentStatus != model.PaymentPending {
		t.Errorf("payment status = %q, want pending", b.PaymentStatus)
	}
	if b.Nights != 2 {
		t.Errorf("nights = %d, want 2", b.Nights)
	}
	if b.TotalAmount != 90000 {
		t.Errorf("total amount = %d, want 90000 (45000 x 2)", b.TotalAmount)
	}
	if b.RoomNumber == nil || *b.RoomNumber != 101 {
		t.Errorf("room number = %v, want 101", b.RoomNumber)
	}
	if !strings.HasPrefix(b.PaymentReference, "ZUMA-") {
		t.Errorf("reference %q lacks ZUMA- prefix", b.PaymentReference)
	}
	if res.AuthorizationURL == "" {
		t.Error("authorization URL is empty")
	}
	if store.count() != 1 {
		t.Errorf("stored bookings = %d, want 1", store.count())
	}
	if gw.lastInit.Amount != 90000 {
		t.Errorf("gateway amount = %d, want 90000", gw.lastInit.Amount)
	}
	if !strings.Contains(gw.lastInit.CallbackURL, b.PaymentReference) {
		t.Errorf("callback URL %q does not carry the reference", gw.lastInit.CallbackURL)
	}
}

func TestCreateBookingTotalAmountIsRateTimesNights(t *testing.T) {
	tests := []struct {
		name     string
		roomType string
		checkIn  string
		checkOut string
		want     uint64
	}{
		{"single one night", "single", "2025-06-01", "2025-06-02", 45000},
		{"single two nights", "single", "2025-06-01", "2025-06-03", 90000},
		{"double week", "double", "2025-07-01", "2025-07-08", 525000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newFakeStore(), &fakeGateway{}, &fakeNotifier{})
			req := validRequest()
			req.RoomType = tt.roomType
			req.CheckIn = tt.checkIn
			req.CheckOut = tt.checkOut
			res, err := svc.CreateBooking(context.Background(), req)
			if err != nil {
				t.Fatalf("CreateBooking: %v", err)
			}
			if res.Booking.TotalAmount != tt.want {
				t.Errorf("total = %d, want %d", res.Booking.TotalAmount, tt.want)
			}
		})
	}
}

func TestCreateBookingIgnoresClientAmount(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeGateway{}, &fakeNotifier{})
	req := validRequest()
	req.Nights = 99
	req.TotalAmount = 1 // the client must not set its own price
	res, err := svc.CreateBooking(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if res.Booking.Nights != 2 || res.Booking.TotalAmount != 90000 {
		t.Errorf("got nights=%d total=%d, want server-computed 2/90000",
			res.Booking.Nights, res.Booking.TotalAmount)
	}
}

func TestCreateBookingPendingDoesNotBlock(t *testing.T) {
	// Two overlapping requests for the only single room: the first
	// stays pending, so the second still allocates the same room.
	store := newFakeStore()
	svc := newTestService(store, &fakeGateway{}, &fakeNotifier{})

	first, err := svc.CreateBooking(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("first CreateBooking: %v", err)
	}
	second, err := svc.CreateBooking(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("second CreateBooking: %v", err)
	}
	if *first.Booking.RoomID != *second.Booking.RoomID {
		t.Errorf("expected both pending bookings on the same room, got %d and %d",
			*first.Booking.RoomID, *second.Booking.RoomID)
	}
	if first.Booking.PaymentReference == second.Booking.PaymentReference {
		t.Error("payment references must be unique")
	}
}

func TestCreateBookingPaidRoomIsSkipped(t *testing.T) {
	// Room 21 holds a paid booking for the window; the allocator must
	// pick room 22, the next in catalog order.
	store := newFakeStore()
	svc := newTestService(store, &fakeGateway{}, &fakeNotifier{})

	req := validRequest()
	req.RoomType = "double"
	res, err := svc.CreateBooking(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if _, err := store.MarkPaid(context.Background(), res.Booking.PaymentReference, "gw-1"); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}

	res2, err := svc.CreateBooking(context.Background(), req)
	if err != nil {
		t.Fatalf("second CreateBooking: %v", err)
	}
	if *res2.Booking.RoomID != 22 {
		t.Errorf("allocated room id = %d, want 22", *res2.Booking.RoomID)
	}
}

func TestCreateBookingUnavailable(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeGateway{}, &fakeNotifier{})
	req := validRequest()
	req.RoomType = "suite" // type exists, zero active rooms
	_, err := svc.CreateBooking(context.Background(), req)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if store.count() != 0 {
		t.Errorf("stored bookings = %d, want 0 after Unavailable", store.count())
	}
}

func TestCreateBookingValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateRequest)
	}{
		{"missing name", func(r *CreateRequest) { r.FullName = "" }},
		{"bad email", func(r *CreateRequest) { r.Email = "not-an-email" }},
		{"missing phone", func(r *CreateRequest) { r.Phone = "" }},
		{"zero guests", func(r *CreateRequest) { r.Guests = 0 }},
		{"checkOut equals checkIn", func(r *CreateRequest) { r.CheckOut = r.CheckIn }},
		{"checkOut before checkIn", func(r *CreateRequest) { r.CheckOut = "2025-05-30" }},
		{"garbage date", func(r *CreateRequest) { r.CheckIn = "01/06/2025" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			svc := newTestService(store, &fakeGateway{}, &fakeNotifier{})
			req := validRequest()
			tt.mutate(&req)
			_, err := svc.CreateBooking(context.Background(), req)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
			if store.count() != 0 {
				t.Errorf("stored bookings = %d, want 0 after validation failure", store.count())
			}
		})
	}
}

func TestCreateBookingGatewayFailureLeavesPendingRow(t *testing.T) {
	store := newFakeStore()
	gw := &fakeGateway{initErr: ErrGateway}
	svc := newTestService(store, gw, &fakeNotifier{})
	_, err := svc.CreateBooking(context.Background(), validRequest())
	if !errors.Is(err, ErrGateway) {
		t.Fatalf("err = %v, want ErrGateway", err)
	}
	// The pending row stays; it never blocks inventory.
	if store.count() != 1 {
		t.Errorf("stored bookings = %d, want 1", store.count())
	}
}

func TestAvailableRoomsExcludesPaidOverlapsOnly(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeGateway{}, &fakeNotifier{})

	req := validRequest()
	req.RoomType = "double"
	res, err := svc.CreateBooking(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	in := res.Booking.CheckIn
	out := res.Booking.CheckOut

	// Pending only: both doubles still free.
	free, err := svc.AvailableRooms(context.Background(), "double", in, out)
	if err != nil {
		t.Fatalf("AvailableRooms: %v", err)
	}
	if len(free) != 2 {
		t.Fatalf("free rooms = %d, want 2 while booking is pending", len(free))
	}

	if _, err := store.MarkPaid(context.Background(), res.Booking.PaymentReference, "gw-1"); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	free, err = svc.AvailableRooms(context.Background(), "double", in, out)
	if err != nil {
		t.Fatalf("AvailableRooms: %v", err)
	}
	if len(free) != 1 || free[0].ID != 22 {
		t.Fatalf("free rooms after paid = %+v, want only room 22", free)
	}

	// A disjoint window is unaffected by the paid booking.
	free, err = svc.AvailableRooms(context.Background(), "double", out, out.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("AvailableRooms: %v", err)
	}
	if len(free) != 2 {
		t.Fatalf("free rooms in disjoint window = %d, want 2", len(free))
	}
}
