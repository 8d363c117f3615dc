package schema

import (
	"time"

	"github.com/google/uuid"
)

// Topics for the rental service's event streams.
const (
	TopicBookingEvents = "rental.booking.events"
	TopicPaymentEvents = "rental.payment.events"
)

// Booking event types published on TopicBookingEvents.
const (
	BookingReserved  = "booking.reserved"
	BookingUpdated   = "booking.updated"
	BookingActivated = "booking.activated"
	BookingCompleted = "booking.completed"
	BookingCancelled = "booking.cancelled"
	PaymentRecorded  = "payment.recorded"
)

// Payment event types consumed from TopicPaymentEvents.
const (
	PaymentCaptured = "payment.captured"
)

// BookingEvent is the payload for every booking lifecycle event.
type BookingEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	VehicleID  uuid.UUID `json:"vehicle_id"`
	Status     string    `json:"status"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	TotalCents int64     `json:"total_cents"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PaymentCapturedEvent is published by the payment processor once money has
// been captured for a booking.
type PaymentCapturedEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	AmountCents int64     `json:"amount_cents"`
	Mode        string    `json:"mode"`
	Reference   string    `json:"reference"`
	OccurredAt  time.Time `json:"occurred_at"`
}
