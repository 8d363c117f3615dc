package rental

import (
	"time"

	"github.com/drivehub/service-rental/internal/common/domain"
	"github.com/google/uuid"
)

// Payment is an append-only record of money received against a booking. It is
// a recorded fact, not a processed transaction.
type Payment struct {
	ID          uuid.UUID
	BookingID   uuid.UUID
	AmountCents int64
	Mode        string
	Reference   string
	CreatedAt   time.Time
}

// NewPayment creates a payment fact for a booking.
func NewPayment(bookingID uuid.UUID, amountCents int64, mode, reference string) (*Payment, error) {
	if bookingID == uuid.Nil {
		return nil, domain.NewValidationError("booking ID is required")
	}
	if amountCents <= 0 {
		return nil, domain.NewValidationError("payment amount must be positive")
	}
	if mode == "" {
		return nil, domain.NewValidationError("payment mode is required")
	}
	return &Payment{
		ID:          uuid.New(),
		BookingID:   bookingID,
		AmountCents: amountCents,
		Mode:        mode,
		Reference:   reference,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// CustomerBooking is a customer-facing listing row: the booking plus the
// derived can-review flag (completed and not yet reviewed).
type CustomerBooking struct {
	Booking   *Booking
	CanReview bool
}
