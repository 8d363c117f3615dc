package events

import (
	"github.com/drivehub/service-rental/internal/events/schema"
)

// The event topics, type names, and payloads are declared in the schema
// subpackage so that internal/application can depend on them without
// importing this package (which imports application for the consumer).
// They are re-exported here so callers keep using the events package.

// Topics for the rental service's event streams.
const (
	TopicBookingEvents = schema.TopicBookingEvents
	TopicPaymentEvents = schema.TopicPaymentEvents
)

// Booking event types published on TopicBookingEvents.
const (
	BookingReserved  = schema.BookingReserved
	BookingUpdated   = schema.BookingUpdated
	BookingActivated = schema.BookingActivated
	BookingCompleted = schema.BookingCompleted
	BookingCancelled = schema.BookingCancelled
	PaymentRecorded  = schema.PaymentRecorded
)

// Payment event types consumed from TopicPaymentEvents.
const (
	PaymentCaptured = schema.PaymentCaptured
)

// BookingEvent is the payload for every booking lifecycle event.
type BookingEvent = schema.BookingEvent

// PaymentCapturedEvent is published by the payment processor once money has
// been captured for a booking.
type PaymentCapturedEvent = schema.PaymentCapturedEvent
