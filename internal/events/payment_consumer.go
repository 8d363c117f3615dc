package events

import (
	"context"

	"github.com/drivehub/service-rental/internal/application"
	"github.com/drivehub/service-rental/internal/common/domain"
	"github.com/drivehub/service-rental/internal/common/kafka"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// PaymentEventConsumer records payments captured by the upstream payment
// processor against their bookings.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	payments *application.PaymentService
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a consumer for the payment event stream.
func NewPaymentEventConsumer(brokers []string, groupID string, payments *application.PaymentService, logger *zap.Logger) *PaymentEventConsumer {
	return &PaymentEventConsumer{
		consumer: kafka.NewConsumer(brokers, groupID, TopicPaymentEvents, logger),
		payments: payments,
		logger:   logger,
	}
}

// Start runs the consume loop until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	ce, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		// Malformed envelope; commit and move on, redelivery cannot fix it.
		c.logger.Warn("skipping malformed event", zap.Error(err))
		return nil
	}

	if ce.Type != PaymentCaptured {
		return nil
	}

	var evt PaymentCapturedEvent
	if err := ce.ParseData(&evt); err != nil {
		c.logger.Warn("skipping event with malformed payload",
			zap.String("event_id", ce.ID),
			zap.Error(err),
		)
		return nil
	}

	_, err = c.payments.RecordPayment(ctx, application.RecordPaymentRequest{
		BookingID:   evt.BookingID,
		AmountCents: evt.AmountCents,
		Mode:        evt.Mode,
		Reference:   evt.Reference,
	})
	if err != nil {
		// A payment for an unknown booking will never succeed; drop it.
		if domain.IsNotFound(err) {
			c.logger.Warn("dropping payment for unknown booking",
				zap.String("booking_id", evt.BookingID.String()),
			)
			return nil
		}
		return err
	}

	c.logger.Info("payment recorded from event",
		zap.String("booking_id", evt.BookingID.String()),
		zap.Int64("amount_cents", evt.AmountCents),
	)
	return nil
}
