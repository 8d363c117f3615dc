package application

import (
	"context"
	"fmt"
	"time"

	"github.com/drivehub/service-rental/internal/common/domain"
	"github.com/drivehub/service-rental/internal/common/kafka"
	"github.com/drivehub/service-rental/internal/domain/rental"
	events "github.com/drivehub/service-rental/internal/events/schema"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateBookingRequest holds the data needed to create a new booking. A
// vehicle is selected either explicitly by id or by rate class
// (make/model/year) at the pickup branch.
type CreateBookingRequest struct {
	CustomerID        uuid.UUID  `json:"customer_id" binding:"required"`
	VehicleID         *uuid.UUID `json:"vehicle_id"`
	Make              string     `json:"make"`
	Model             string     `json:"model"`
	Year              int        `json:"year"`
	PickupBranchID    uuid.UUID  `json:"pickup_branch_id" binding:"required"`
	DropoffBranchID   uuid.UUID  `json:"dropoff_branch_id" binding:"required"`
	StartTime         time.Time  `json:"start_time" binding:"required"`
	EndTime           time.Time  `json:"end_time" binding:"required"`
	PromoCode         *string    `json:"promo_code"`
	InsurancePolicyID *uuid.UUID `json:"insurance_policy_id"`
}

// UpdateBookingRequest is a partial update. Nil fields are left unchanged; an
// empty promo code removes the promotion.
type UpdateBookingRequest struct {
	StartTime         *time.Time `json:"start_time"`
	EndTime           *time.Time `json:"end_time"`
	PromoCode         *string    `json:"promo_code"`
	InsurancePolicyID *uuid.UUID `json:"insurance_policy_id"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                uuid.UUID  `json:"id"`
	CustomerID        uuid.UUID  `json:"customer_id"`
	VehicleID         uuid.UUID  `json:"vehicle_id"`
	Make              string     `json:"make"`
	Model             string     `json:"model"`
	Year              int        `json:"year"`
	PickupBranchID    uuid.UUID  `json:"pickup_branch_id"`
	DropoffBranchID   uuid.UUID  `json:"dropoff_branch_id"`
	StartTime         time.Time  `json:"start_time"`
	EndTime           time.Time  `json:"end_time"`
	Status            string     `json:"status"`
	PromoCode         *string    `json:"promo_code,omitempty"`
	InsurancePolicyID *uuid.UUID `json:"insurance_policy_id,omitempty"`
	TotalCents        int64      `json:"total_cents"`
	Version           int64      `json:"version"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	// PricingWarnings carries soft pricing failures, e.g. a rejected promo
	// code. The booking itself still succeeds.
	PricingWarnings []string `json:"pricing_warnings,omitempty"`
}

// CustomerBookingDTO is a listing row with the derived can-review flag.
type CustomerBookingDTO struct {
	BookingDTO
	CanReview bool `json:"can_review"`
}

// BookingService orchestrates the booking lifecycle. Every mutation runs its
// availability check and its write inside one store transaction; the
// per-vehicle row lock taken by resolveVehicle serializes concurrent
// check-then-write sequences for the same vehicle.
type BookingService struct {
	store    rental.Store
	producer *kafka.Producer
	logger   *zap.Logger
}

// NewBookingService creates a new BookingService. producer may be nil when
// eventing is disabled (tests, local runs without a broker).
func NewBookingService(store rental.Store, producer *kafka.Producer, logger *zap.Logger) *BookingService {
	return &BookingService{store: store, producer: producer, logger: logger}
}

// CreateBooking reserves a vehicle for the requested window. The vehicle
// resolution, availability check, quote and insert commit as one unit; on
// contention the caller receives a retryable conflict and is expected to
// retry the whole operation so the vehicle is re-resolved.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*BookingDTO, error) {
	w, err := rental.NewWindow(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if req.VehicleID == nil && (req.Make == "" || req.Model == "" || req.Year == 0) {
		return nil, domain.NewValidationError("either vehicle_id or make/model/year must be provided")
	}

	var (
		created  *rental.Booking
		warnings []string
	)
	err = s.store.InTx(ctx, func(st rental.Store) error {
		vehicle, err := s.resolveVehicle(ctx, st, req, w)
		if err != nil {
			return err
		}

		rate, err := st.Vehicles().RateFor(ctx, vehicle.RateKey())
		if err != nil {
			return err
		}

		promo, storedCode, warns, err := s.resolvePromotion(ctx, st, req.PromoCode)
		if err != nil {
			return err
		}
		warnings = warns

		insurance, err := s.resolveInsurance(ctx, st, req.InsurancePolicyID)
		if err != nil {
			return err
		}

		quote := rental.ComputeQuote(rental.QuoteInput{
			DailyRateCents: rate.DailyRateCents,
			Window:         w,
			Promotion:      promo,
			Insurance:      insurance,
		})

		bk, err := rental.NewBooking(
			req.CustomerID,
			vehicle,
			req.PickupBranchID,
			req.DropoffBranchID,
			w,
			storedCode,
			req.InsurancePolicyID,
			quote.TotalCents,
		)
		if err != nil {
			return err
		}

		if err := st.Bookings().Save(ctx, bk); err != nil {
			return err
		}
		created = bk
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishBookingEvent(ctx, events.BookingReserved, created)

	dto := toBookingDTO(created)
	dto.PricingWarnings = warnings
	return &dto, nil
}

// UpdateBooking amends a booking's window and/or pricing options. A window
// change re-validates availability for the same vehicle, excluding the
// booking's own reservation from the overlap check. The total is always
// recomputed.
func (s *BookingService) UpdateBooking(ctx context.Context, bookingID uuid.UUID, req UpdateBookingRequest) (*BookingDTO, error) {
	var (
		updated  *rental.Booking
		warnings []string
	)
	err := s.store.InTx(ctx, func(st rental.Store) error {
		bk, err := st.Bookings().FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if !bk.Status().CanBeAmended() {
			return domain.NewStateError(fmt.Sprintf("booking in status %s cannot be updated", bk.Status()))
		}

		// Lock the vehicle before re-checking the window so concurrent
		// creates and updates for it are serialized.
		vehicle, err := st.Vehicles().LockByID(ctx, bk.VehicleID())
		if err != nil {
			return err
		}

		newWindow, windowChanged, err := mergeWindow(bk.Window(), req.StartTime, req.EndTime)
		if err != nil {
			return err
		}
		if windowChanged {
			own := bk.ID()
			free, err := s.vehicleFree(ctx, st, vehicle, newWindow, &own)
			if err != nil {
				return err
			}
			if !free {
				return domain.NewNoVehicleAvailableError("vehicle is not available for the new window")
			}
			if err := bk.Reschedule(newWindow); err != nil {
				return err
			}
		}

		promoCode := bk.PromoCode()
		if req.PromoCode != nil {
			if *req.PromoCode == "" {
				promoCode = nil
			} else {
				promoCode = req.PromoCode
			}
		}
		insuranceID := bk.InsurancePolicyID()
		if req.InsurancePolicyID != nil {
			insuranceID = req.InsurancePolicyID
		}

		promo, storedCode, warns, err := s.resolvePromotion(ctx, st, promoCode)
		if err != nil {
			return err
		}
		warnings = warns

		insurance, err := s.resolveInsurance(ctx, st, insuranceID)
		if err != nil {
			return err
		}

		rate, err := st.Vehicles().RateFor(ctx, vehicle.RateKey())
		if err != nil {
			return err
		}

		quote := rental.ComputeQuote(rental.QuoteInput{
			DailyRateCents: rate.DailyRateCents,
			Window:         newWindow,
			Promotion:      promo,
			Insurance:      insurance,
		})

		if err := bk.SetPricingOptions(storedCode, insuranceID); err != nil {
			return err
		}
		bk.ApplyQuote(quote.TotalCents)
		bk.IncrementVersion()

		if err := st.Bookings().Update(ctx, bk); err != nil {
			return err
		}
		updated = bk
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishBookingEvent(ctx, events.BookingUpdated, updated)

	dto := toBookingDTO(updated)
	dto.PricingWarnings = warnings
	return &dto, nil
}

// CancelBooking cancels a booking, freeing its vehicle's window. Cancelling
// an already-cancelled booking is treated as success so client retries are
// harmless; cancelling a completed booking is an invalid-state error.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	var (
		cancelled        *rental.Booking
		alreadyCancelled bool
	)
	err := s.store.InTx(ctx, func(st rental.Store) error {
		bk, err := st.Bookings().FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if bk.Status() == rental.StatusCancelled {
			cancelled = bk
			alreadyCancelled = true
			return nil
		}
		if err := bk.Cancel(); err != nil {
			return err
		}
		bk.IncrementVersion()
		if err := st.Bookings().Update(ctx, bk); err != nil {
			return err
		}
		cancelled = bk
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !alreadyCancelled {
		s.publishBookingEvent(ctx, events.BookingCancelled, cancelled)
	}

	dto := toBookingDTO(cancelled)
	return &dto, nil
}

// ActivateBooking transitions a reserved booking to active at vehicle handover.
func (s *BookingService) ActivateBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, events.BookingActivated, (*rental.Booking).Activate)
}

// CompleteBooking transitions an active booking to completed on vehicle return.
func (s *BookingService) CompleteBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, events.BookingCompleted, (*rental.Booking).Complete)
}

// GetBooking retrieves a single booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.store.Bookings().FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	dto := toBookingDTO(bk)
	return &dto, nil
}

// ListCustomerBookings retrieves a customer's bookings, newest start first,
// each annotated with the can-review flag.
func (s *BookingService) ListCustomerBookings(ctx context.Context, customerID uuid.UUID) ([]CustomerBookingDTO, error) {
	rows, err := s.store.Bookings().ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	dtos := make([]CustomerBookingDTO, len(rows))
	for i, row := range rows {
		dtos[i] = CustomerBookingDTO{
			BookingDTO: toBookingDTO(row.Booking),
			CanReview:  row.CanReview,
		}
	}
	return dtos, nil
}

// --- Internals ---

func (s *BookingService) transition(ctx context.Context, bookingID uuid.UUID, eventType string, apply func(*rental.Booking) error) (*BookingDTO, error) {
	var bk *rental.Booking
	err := s.store.InTx(ctx, func(st rental.Store) error {
		var err error
		bk, err = st.Bookings().FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := apply(bk); err != nil {
			return err
		}
		bk.IncrementVersion()
		return st.Bookings().Update(ctx, bk)
	})
	if err != nil {
		return nil, err
	}

	s.publishBookingEvent(ctx, eventType, bk)

	dto := toBookingDTO(bk)
	return &dto, nil
}

// resolveVehicle picks and row-locks a concrete vehicle for the window. With
// an explicit id the vehicle must pass the availability predicate; with a
// class selector the first free vehicle at the pickup branch wins, in vehicle
// id order.
func (s *BookingService) resolveVehicle(ctx context.Context, st rental.Store, req CreateBookingRequest, w rental.Window) (*rental.Vehicle, error) {
	if req.VehicleID != nil {
		vehicle, err := st.Vehicles().LockByID(ctx, *req.VehicleID)
		if err != nil {
			return nil, err
		}
		free, err := s.vehicleFree(ctx, st, vehicle, w, nil)
		if err != nil {
			return nil, err
		}
		if !free {
			return nil, domain.NewNoVehicleAvailableError("vehicle is not available for the requested window")
		}
		return vehicle, nil
	}

	key := rental.RateClassKey{Make: req.Make, Model: req.Model, Year: req.Year}
	candidates, err := st.Vehicles().FindByClassAtBranch(ctx, req.PickupBranchID, key)
	if err != nil {
		return nil, err
	}
	for _, candidate := range candidates {
		vehicle, err := st.Vehicles().LockByID(ctx, candidate.ID)
		if err != nil {
			return nil, err
		}
		free, err := s.vehicleFree(ctx, st, vehicle, w, nil)
		if err != nil {
			return nil, err
		}
		if free {
			return vehicle, nil
		}
	}
	return nil, domain.NewNoVehicleAvailableError("no vehicle of the requested class is available at the branch")
}

// vehicleFree is the availability predicate: the vehicle is active, has no
// overlapping live reservation (optionally excluding one booking), and no
// overlapping maintenance log. The status check short-circuits the rest.
func (s *BookingService) vehicleFree(ctx context.Context, st rental.Store, vehicle *rental.Vehicle, w rental.Window, exclude *uuid.UUID) (bool, error) {
	if vehicle.Status != rental.VehicleActive {
		return false, nil
	}

	overlapping, err := st.Bookings().CountOverlapping(ctx, vehicle.ID, w, exclude)
	if err != nil {
		return false, err
	}
	if overlapping > 0 {
		return false, nil
	}

	busy, err := st.Maintenance().HasOverlap(ctx, vehicle.ID, w)
	if err != nil {
		return false, err
	}
	return !busy, nil
}

// resolvePromotion looks up a promo code. An unknown or expired code is a
// soft failure: the booking proceeds without a discount and the rejection is
// surfaced as a warning. Only store errors abort the operation.
func (s *BookingService) resolvePromotion(ctx context.Context, st rental.Store, code *string) (*rental.Promotion, *string, []string, error) {
	if code == nil || *code == "" {
		return nil, nil, nil, nil
	}

	promo, err := st.Promotions().FindByCode(ctx, *code)
	if err != nil {
		if domain.IsNotFound(err) {
			warning := fmt.Sprintf("promotion %q is not valid; booked without discount", *code)
			return nil, nil, []string{warning}, nil
		}
		return nil, nil, nil, err
	}
	if !promo.ValidAt(time.Now().UTC()) {
		warning := fmt.Sprintf("promotion %q has expired; booked without discount", *code)
		return nil, nil, []string{warning}, nil
	}
	return promo, code, nil, nil
}

func (s *BookingService) resolveInsurance(ctx context.Context, st rental.Store, id *uuid.UUID) (*rental.InsuranceOption, error) {
	if id == nil {
		return nil, nil
	}
	return st.Insurance().FindByID(ctx, *id)
}

func mergeWindow(current rental.Window, start, end *time.Time) (rental.Window, bool, error) {
	if start == nil && end == nil {
		return current, false, nil
	}

	newStart := current.Start
	if start != nil {
		newStart = *start
	}
	newEnd := current.End
	if end != nil {
		newEnd = *end
	}

	w, err := rental.NewWindow(newStart, newEnd)
	if err != nil {
		return rental.Window{}, false, err
	}
	changed := !w.Start.Equal(current.Start) || !w.End.Equal(current.End)
	return w, changed, nil
}

func (s *BookingService) publishBookingEvent(ctx context.Context, eventType string, bk *rental.Booking) {
	if s.producer == nil {
		return
	}

	evt := events.BookingEvent{
		BookingID:  bk.ID(),
		CustomerID: bk.CustomerID(),
		VehicleID:  bk.VehicleID(),
		Status:     string(bk.Status()),
		StartTime:  bk.Window().Start,
		EndTime:    bk.Window().End,
		TotalCents: bk.TotalCents(),
		OccurredAt: time.Now().UTC(),
	}

	cloudEvent, err := kafka.NewCloudEvent("service-rental", eventType, evt)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, events.TopicBookingEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.String("booking_id", bk.ID().String()),
			zap.Error(err),
		)
	}
}

func toBookingDTO(bk *rental.Booking) BookingDTO {
	w := bk.Window()
	return BookingDTO{
		ID:                bk.ID(),
		CustomerID:        bk.CustomerID(),
		VehicleID:         bk.VehicleID(),
		Make:              bk.Make(),
		Model:             bk.Model(),
		Year:              bk.Year(),
		PickupBranchID:    bk.PickupBranchID(),
		DropoffBranchID:   bk.DropoffBranchID(),
		StartTime:         w.Start,
		EndTime:           w.End,
		Status:            string(bk.Status()),
		PromoCode:         bk.PromoCode(),
		InsurancePolicyID: bk.InsurancePolicyID(),
		TotalCents:        bk.TotalCents(),
		Version:           bk.Version(),
		CreatedAt:         bk.CreatedAt(),
		UpdatedAt:         bk.UpdatedAt(),
	}
}
