package application

import (
	"context"
	"fmt"
	"time"

	"github.com/drivehub/service-rental/internal/common/kafka"
	"github.com/drivehub/service-rental/internal/domain/rental"
	events "github.com/drivehub/service-rental/internal/events/schema"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecordPaymentRequest records money received against a booking. Reference is
// optional; when empty a synthetic transaction reference is generated.
type RecordPaymentRequest struct {
	BookingID   uuid.UUID `json:"booking_id" binding:"required"`
	AmountCents int64     `json:"amount_cents" binding:"required"`
	Mode        string    `json:"mode" binding:"required"`
	Reference   string    `json:"reference"`
}

// PaymentDTO is the response representation of a payment.
type PaymentDTO struct {
	ID          uuid.UUID `json:"id"`
	BookingID   uuid.UUID `json:"booking_id"`
	AmountCents int64     `json:"amount_cents"`
	Mode        string    `json:"mode"`
	Reference   string    `json:"reference"`
	CreatedAt   time.Time `json:"created_at"`
}

// PaymentService records payment facts against bookings. It does not process
// money; capture happens upstream.
type PaymentService struct {
	store    rental.Store
	producer *kafka.Producer
	logger   *zap.Logger
}

// NewPaymentService creates a new PaymentService. producer may be nil when
// eventing is disabled.
func NewPaymentService(store rental.Store, producer *kafka.Producer, logger *zap.Logger) *PaymentService {
	return &PaymentService{store: store, producer: producer, logger: logger}
}

// RecordPayment appends a payment fact for an existing booking.
func (s *PaymentService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*PaymentDTO, error) {
	reference := req.Reference
	if reference == "" {
		reference = fmt.Sprintf("TXN_%s", uuid.NewString())
	}

	payment, err := rental.NewPayment(req.BookingID, req.AmountCents, req.Mode, reference)
	if err != nil {
		return nil, err
	}

	err = s.store.InTx(ctx, func(st rental.Store) error {
		if _, err := st.Bookings().FindByID(ctx, req.BookingID); err != nil {
			return err
		}
		return st.Payments().Save(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	s.publishPaymentEvent(ctx, payment)

	return toPaymentDTO(payment), nil
}

// ListPayments retrieves every payment recorded against a booking.
func (s *PaymentService) ListPayments(ctx context.Context, bookingID uuid.UUID) ([]PaymentDTO, error) {
	payments, err := s.store.Payments().ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	dtos := make([]PaymentDTO, len(payments))
	for i := range payments {
		dtos[i] = *toPaymentDTO(&payments[i])
	}
	return dtos, nil
}

func (s *PaymentService) publishPaymentEvent(ctx context.Context, p *rental.Payment) {
	if s.producer == nil {
		return
	}

	evt := events.PaymentCapturedEvent{
		BookingID:   p.BookingID,
		AmountCents: p.AmountCents,
		Mode:        p.Mode,
		Reference:   p.Reference,
		OccurredAt:  time.Now().UTC(),
	}

	// Published on the booking stream, not the payment stream this service
	// consumes, so recording a captured payment cannot re-trigger itself.
	cloudEvent, err := kafka.NewCloudEvent("service-rental", events.PaymentRecorded, evt)
	if err != nil {
		s.logger.Error("failed to create cloud event", zap.Error(err))
		return
	}

	if err := s.producer.PublishEvent(ctx, events.TopicBookingEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish payment event",
			zap.String("booking_id", p.BookingID.String()),
			zap.Error(err),
		)
	}
}

func toPaymentDTO(p *rental.Payment) *PaymentDTO {
	return &PaymentDTO{
		ID:          p.ID,
		BookingID:   p.BookingID,
		AmountCents: p.AmountCents,
		Mode:        p.Mode,
		Reference:   p.Reference,
		CreatedAt:   p.CreatedAt,
	}
}
