package rental

import (
	"fmt"
	"time"

	"github.com/drivehub/service-rental/internal/common/domain"
	"github.com/google/uuid"
)

// Booking is the aggregate root for the rental domain. A booking in status
// reserved or active holds its vehicle's window; per vehicle no two such
// bookings may overlap.
type Booking struct {
	id                uuid.UUID
	customerID        uuid.UUID
	vehicleID         uuid.UUID
	make              string
	model             string
	year              int
	pickupBranchID    uuid.UUID
	dropoffBranchID   uuid.UUID
	window            Window
	status            BookingStatus
	promoCode         *string
	insurancePolicyID *uuid.UUID
	totalCents        int64

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a reserved Booking for a resolved vehicle and priced window.
func NewBooking(
	customerID uuid.UUID,
	vehicle *Vehicle,
	pickupBranchID uuid.UUID,
	dropoffBranchID uuid.UUID,
	window Window,
	promoCode *string,
	insurancePolicyID *uuid.UUID,
	totalCents int64,
) (*Booking, error) {
	if customerID == uuid.Nil {
		return nil, domain.NewValidationError("customer ID is required")
	}
	if vehicle == nil || vehicle.ID == uuid.Nil {
		return nil, domain.NewValidationError("vehicle is required")
	}
	if pickupBranchID == uuid.Nil || dropoffBranchID == uuid.Nil {
		return nil, domain.NewValidationError("pickup and dropoff branches are required")
	}
	if totalCents < 0 {
		return nil, domain.NewValidationError("total amount cannot be negative")
	}

	now := time.Now().UTC()
	return &Booking{
		id:                uuid.New(),
		customerID:        customerID,
		vehicleID:         vehicle.ID,
		make:              vehicle.Make,
		model:             vehicle.Model,
		year:              vehicle.Year,
		pickupBranchID:    pickupBranchID,
		dropoffBranchID:   dropoffBranchID,
		window:            window,
		status:            StatusReserved,
		promoCode:         promoCode,
		insurancePolicyID: insurancePolicyID,
		totalCents:        totalCents,
		version:           1,
		createdAt:         now,
		updatedAt:         now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	customerID uuid.UUID,
	vehicleID uuid.UUID,
	make, model string,
	year int,
	pickupBranchID uuid.UUID,
	dropoffBranchID uuid.UUID,
	window Window,
	status BookingStatus,
	promoCode *string,
	insurancePolicyID *uuid.UUID,
	totalCents int64,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                id,
		customerID:        customerID,
		vehicleID:         vehicleID,
		make:              make,
		model:             model,
		year:              year,
		pickupBranchID:    pickupBranchID,
		dropoffBranchID:   dropoffBranchID,
		window:            window,
		status:            status,
		promoCode:         promoCode,
		insurancePolicyID: insurancePolicyID,
		totalCents:        totalCents,
		version:           version,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// CustomerID returns the renting customer's ID.
func (b *Booking) CustomerID() uuid.UUID { return b.customerID }

// VehicleID returns the assigned vehicle's ID. Assignment is immutable after
// creation; updates move the window, never the vehicle.
func (b *Booking) VehicleID() uuid.UUID { return b.vehicleID }

// Make returns the vehicle make snapshot taken at creation.
func (b *Booking) Make() string { return b.make }

// Model returns the vehicle model snapshot taken at creation.
func (b *Booking) Model() string { return b.model }

// Year returns the vehicle year snapshot taken at creation.
func (b *Booking) Year() int { return b.year }

// PickupBranchID returns the pickup branch.
func (b *Booking) PickupBranchID() uuid.UUID { return b.pickupBranchID }

// DropoffBranchID returns the drop-off branch.
func (b *Booking) DropoffBranchID() uuid.UUID { return b.dropoffBranchID }

// Window returns the rental window.
func (b *Booking) Window() Window { return b.window }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// PromoCode returns the applied promotion code, or nil.
func (b *Booking) PromoCode() *string { return b.promoCode }

// InsurancePolicyID returns the chosen insurance option, or nil.
func (b *Booking) InsurancePolicyID() *uuid.UUID { return b.insurancePolicyID }

// TotalCents returns the booked total in cents.
func (b *Booking) TotalCents() int64 { return b.totalCents }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// Activate transitions the booking from reserved to active at vehicle handover.
func (b *Booking) Activate() error {
	if !b.status.CanTransitionTo(StatusActive) {
		return domain.NewInvalidStateError(string(b.status), string(StatusActive))
	}
	b.status = StatusActive
	b.updatedAt = time.Now().UTC()
	return nil
}

// Complete transitions the booking from active to completed on vehicle return.
func (b *Booking) Complete() error {
	if !b.status.CanTransitionTo(StatusCompleted) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCompleted))
	}
	b.status = StatusCompleted
	b.updatedAt = time.Now().UTC()
	return nil
}

// Cancel transitions the booking to cancelled, freeing the vehicle's window.
func (b *Booking) Cancel() error {
	if !b.status.CanTransitionTo(StatusCancelled) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	b.status = StatusCancelled
	b.updatedAt = time.Now().UTC()
	return nil
}

// Reschedule moves the rental window. Callers must have re-validated
// availability for the new window before committing.
func (b *Booking) Reschedule(w Window) error {
	if !b.status.CanBeAmended() {
		return domain.NewStateError(fmt.Sprintf("booking in status %s cannot be amended", b.status))
	}
	b.window = w
	b.updatedAt = time.Now().UTC()
	return nil
}

// SetPricingOptions replaces the promotion code and insurance selection.
func (b *Booking) SetPricingOptions(promoCode *string, insurancePolicyID *uuid.UUID) error {
	if !b.status.CanBeAmended() {
		return domain.NewStateError(fmt.Sprintf("booking in status %s cannot be amended", b.status))
	}
	b.promoCode = promoCode
	b.insurancePolicyID = insurancePolicyID
	b.updatedAt = time.Now().UTC()
	return nil
}

// ApplyQuote replaces the stored total with a freshly computed one.
func (b *Booking) ApplyQuote(totalCents int64) {
	b.totalCents = totalCents
	b.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
