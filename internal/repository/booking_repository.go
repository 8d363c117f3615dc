package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/drivehub/service-rental/internal/common/domain"
	"github.com/drivehub/service-rental/internal/domain/rental"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CustomerID        uuid.UUID  `gorm:"type:uuid;index;not null"`
	VehicleID         uuid.UUID  `gorm:"type:uuid;index;not null"`
	Make              string     `gorm:"not null;size:50"`
	Model             string     `gorm:"not null;size:50"`
	Year              int        `gorm:"not null"`
	PickupBranchID    uuid.UUID  `gorm:"type:uuid;not null"`
	DropoffBranchID   uuid.UUID  `gorm:"type:uuid;not null"`
	StartTime         time.Time  `gorm:"not null;index"`
	EndTime           time.Time  `gorm:"not null"`
	Status            string     `gorm:"not null;size:20;index"`
	PromoCode         *string    `gorm:"size:30"`
	InsurancePolicyID *uuid.UUID `gorm:"type:uuid"`
	TotalCents        int64      `gorm:"not null"`
	Version           int64      `gorm:"not null;default:1"`
	CreatedAt         time.Time  `gorm:"not null"`
	UpdatedAt         time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// FeedbackModel is the GORM model for customer feedback. The booking engine
// only consults its existence (the can-review flag); reviews themselves are
// written elsewhere.
type FeedbackModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Rating    int       `gorm:"not null"`
	Comment   string    `gorm:"size:1000"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (FeedbackModel) TableName() string {
	return "feedbacks"
}

// GormBookingRepository is the GORM-based implementation of rental.BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*rental.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// ListByCustomer retrieves a customer's bookings, newest start time first,
// annotated with the can-review flag (completed and not yet reviewed).
func (r *GormBookingRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]rental.CustomerBooking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("start_time DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list customer bookings: %w", err)
	}

	completed := make([]uuid.UUID, 0, len(models))
	for _, m := range models {
		if m.Status == string(rental.StatusCompleted) {
			completed = append(completed, m.ID)
		}
	}

	reviewed := make(map[uuid.UUID]bool, len(completed))
	if len(completed) > 0 {
		var feedbackIDs []uuid.UUID
		if err := r.db.WithContext(ctx).
			Model(&FeedbackModel{}).
			Where("booking_id IN ?", completed).
			Pluck("booking_id", &feedbackIDs).Error; err != nil {
			return nil, fmt.Errorf("failed to load feedback for bookings: %w", err)
		}
		for _, id := range feedbackIDs {
			reviewed[id] = true
		}
	}

	out := make([]rental.CustomerBooking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, err
		}
		out[i] = rental.CustomerBooking{
			Booking:   bk,
			CanReview: m.Status == string(rental.StatusCompleted) && !reviewed[m.ID],
		}
	}
	return out, nil
}

// CountOverlapping counts live reservations for the vehicle overlapping w.
// Overlap is half-open: touching endpoints do not count, so back-to-back
// rentals are allowed.
func (r *GormBookingRepository) CountOverlapping(ctx context.Context, vehicleID uuid.UUID, w rental.Window, exclude *uuid.UUID) (int64, error) {
	q := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("vehicle_id = ?", vehicleID).
		Where("status IN ?", []string{string(rental.StatusReserved), string(rental.StatusActive)}).
		Where("start_time < ? AND end_time > ?", w.End, w.Start)
	if exclude != nil {
		q = q.Where("id <> ?", *exclude)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count overlapping bookings: %w", err)
	}
	return count, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *rental.Booking) error {
	model := toBookingModel(bk)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *rental.Booking) error {
	model := toBookingModel(bk)

	// Only update if the version matches (current version - 1, since
	// IncrementVersion was called on the aggregate).
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"start_time":          model.StartTime,
			"end_time":            model.EndTime,
			"status":              model.Status,
			"promo_code":          model.PromoCode,
			"insurance_policy_id": model.InsurancePolicyID,
			"total_cents":         model.TotalCents,
			"version":             model.Version,
			"updated_at":          model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// --- Conversion helpers ---

func toBookingModel(bk *rental.Booking) *BookingModel {
	w := bk.Window()
	return &BookingModel{
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

func toDomainBooking(m *BookingModel) (*rental.Booking, error) {
	status, err := rental.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return rental.ReconstructBooking(
		m.ID,
		m.CustomerID,
		m.VehicleID,
		m.Make,
		m.Model,
		m.Year,
		m.PickupBranchID,
		m.DropoffBranchID,
		rental.Window{Start: m.StartTime.UTC(), End: m.EndTime.UTC()},
		status,
		m.PromoCode,
		m.InsurancePolicyID,
		m.TotalCents,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
