package rental

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// ListByCustomer retrieves a customer's bookings, newest start time first,
	// each annotated with the can-review flag.
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]CustomerBooking, error)

	// CountOverlapping counts reservations (reserved or active) for the vehicle
	// whose windows overlap w, optionally excluding one booking by id.
	CountOverlapping(ctx context.Context, vehicleID uuid.UUID, w Window, exclude *uuid.UUID) (int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, b *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, b *Booking) error
}

// VehicleRepository defines read access to the vehicle catalog.
type VehicleRepository interface {
	// FindByID retrieves a vehicle by id.
	FindByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)

	// LockByID retrieves a vehicle and holds a row lock on it for the rest of
	// the surrounding transaction, serializing check-then-write sequences.
	LockByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)

	// FindByClassAtBranch lists active vehicles of a rate class at a branch,
	// ordered by vehicle id for deterministic selection.
	FindByClassAtBranch(ctx context.Context, branchID uuid.UUID, key RateClassKey) ([]*Vehicle, error)

	// FindAvailableAtBranch lists vehicles at a branch that are active and free
	// of overlapping reservations and maintenance for the window.
	FindAvailableAtBranch(ctx context.Context, branchID uuid.UUID, w Window) ([]AvailableVehicle, error)

	// RateFor resolves a rate class by key.
	RateFor(ctx context.Context, key RateClassKey) (*RateClass, error)
}

// MaintenanceRepository manages shop-visit logs.
type MaintenanceRepository interface {
	// Open records a new maintenance log entry.
	Open(ctx context.Context, log *MaintenanceLog) error

	// Close sets the date-out on an open log entry.
	Close(ctx context.Context, id uuid.UUID, dateOut time.Time) error

	// HasOverlap reports whether any log for the vehicle covers part of w.
	// An open log (no date-out) covers everything from its date-in onward.
	HasOverlap(ctx context.Context, vehicleID uuid.UUID, w Window) (bool, error)
}

// PaymentRepository appends and reads payment facts.
type PaymentRepository interface {
	Save(ctx context.Context, p *Payment) error
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]Payment, error)
}

// PromotionRepository reads promotion reference data.
type PromotionRepository interface {
	FindByCode(ctx context.Context, code string) (*Promotion, error)
}

// InsuranceRepository reads insurance reference data.
type InsuranceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*InsuranceOption, error)
}

// Store groups the repositories behind one transactional boundary. InTx runs
// fn against a store whose repositories share a single transaction: either
// everything fn writes commits, or nothing does. Contention and timeouts
// surface as conflict errors, never as partial writes.
type Store interface {
	Bookings() BookingRepository
	Vehicles() VehicleRepository
	Maintenance() MaintenanceRepository
	Payments() PaymentRepository
	Promotions() PromotionRepository
	Insurance() InsuranceRepository

	InTx(ctx context.Context, fn func(Store) error) error
}
