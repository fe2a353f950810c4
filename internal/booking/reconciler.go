package booking

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/zumagrand/booking-api/internal/model"
	"github.com/zumagrand/booking-api/internal/queue"
	"github.com/zumagrand/booking-api/internal/repository"
)

// Outcome is the result of a reconciliation call: the booking in its
// current (possibly previously finalised) state.
type Outcome struct {
	Booking *model.Booking
	// Applied is true when this call performed the pending -> terminal
	// transition, false when the booking was already terminal.
	Applied bool
}

// Reconcile drives a booking through the single allowed transition out
// of pending, based on the gateway's verdict for its payment
// reference.
//
// The operation is idempotent: a booking already in a terminal state
// is returned as-is without another gateway call, so re-verifying a
// paid booking is a side-effect-free no-op yielding the same response
// as the first successful call. Concurrent calls for the same
// reference cannot both apply a transition because the store's
// conditional update only succeeds while the row is still pending.
//
// When the gateway reports success but another paid booking occupies
// the room by now, the booking is marked failed and
// repository.ErrRoomConflict is returned for the refund path.
func (s *Service) Reconcile(ctx context.Context, reference string) (*Outcome, error) {
	b, err := s.store.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if b.Terminal() {
		return &Outcome{Booking: b}, nil
	}

	v, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		// Timeout or a broken envelope: neither terminal state may be
		// assumed, leave the booking pending for a later retry.
		return nil, err
	}

	var applied bool
	if v.Success {
		applied, err = s.store.MarkPaid(ctx, reference, v.GatewayReference)
		if errors.Is(err, repository.ErrRoomConflict) {
			s.log.Warn("paid verification lost the room, booking failed",
				zap.String("reference", reference))
			return nil, err
		}
	} else {
		applied, err = s.store.MarkFailed(ctx, reference, v.GatewayReference)
	}
	if err != nil {
		return nil, err
	}

	b, err = s.store.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	s.log.Info("booking reconciled",
		zap.String("reference", reference),
		zap.String("status", b.PaymentStatus),
		zap.Bool("applied", applied))

	// Notify exactly once: only the call that actually flipped the
	// booking to paid fires the notifier, and its failure never
	// escalates past this point.
	if applied && b.PaymentStatus == model.PaymentPaid {
		s.notifyPaid(ctx, b)
	}
	return &Outcome{Booking: b, Applied: applied}, nil
}

// notifyPaid sends the paid-booking snapshot to the operator channel,
// absorbing any failure.
func (s *Service) notifyPaid(ctx context.Context, b *model.Booking) {
	if s.notifier == nil {
		return
	}
	var roomNumber uint32
	if b.RoomNumber != nil {
		roomNumber = *b.RoomNumber
	}
	ev := queue.BookingPaidEvent{
		BookingID:   b.ID,
		Reference:   b.PaymentReference,
		FullName:    b.FullName,
		Email:       b.Email,
		Phone:       b.Phone,
		RoomType:    b.RoomType,
		RoomNumber:  roomNumber,
		Guests:      b.Guests,
		CheckIn:     b.CheckIn.Format(dateLayout),
		CheckOut:    b.CheckOut.Format(dateLayout),
		Nights:      b.Nights,
		TotalAmount: b.TotalAmount,
		PaidAt:      time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.notifier.BookingPaid(ctx, ev); err != nil {
		s.log.Error("paid-booking notification failed",
			zap.String("booking_id", b.ID), zap.Error(err))
	}
}
