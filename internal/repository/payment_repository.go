package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/drivehub/service-rental/internal/domain/rental"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentModel is the GORM model for the payments table. Rows are append-only.
type PaymentModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingID   uuid.UUID `gorm:"type:uuid;index;not null"`
	AmountCents int64     `gorm:"not null"`
	Mode        string    `gorm:"not null;size:30"`
	Reference   string    `gorm:"not null;size:60"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PaymentModel) TableName() string {
	return "payments"
}

// GormPaymentRepository is the GORM-based implementation of rental.PaymentRepository.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository.
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Save appends a payment fact.
func (r *GormPaymentRepository) Save(ctx context.Context, p *rental.Payment) error {
	model := PaymentModel{
		ID:          p.ID,
		BookingID:   p.BookingID,
		AmountCents: p.AmountCents,
		Mode:        p.Mode,
		Reference:   p.Reference,
		CreatedAt:   p.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

// ListByBooking retrieves all payments recorded against a booking.
func (r *GormPaymentRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]rental.Payment, error) {
	var models []PaymentModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	payments := make([]rental.Payment, len(models))
	for i, m := range models {
		payments[i] = rental.Payment{
			ID:          m.ID,
			BookingID:   m.BookingID,
			AmountCents: m.AmountCents,
			Mode:        m.Mode,
			Reference:   m.Reference,
			CreatedAt:   m.CreatedAt,
		}
	}
	return payments, nil
}
