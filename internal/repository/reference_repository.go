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

// PromotionModel is the GORM model for promotion reference data.
type PromotionModel struct {
	Code      string     `gorm:"primaryKey;size:30"`
	Kind      string     `gorm:"not null;size:10"`
	Value     int64      `gorm:"not null"`
	ExpiresAt *time.Time `gorm:""`
	Active    bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for the GORM model.
func (PromotionModel) TableName() string {
	return "promotions"
}

// InsuranceModel is the GORM model for insurance reference data.
type InsuranceModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name     string    `gorm:"not null;size:100"`
	Kind     string    `gorm:"not null;size:10"`
	FeeCents int64     `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (InsuranceModel) TableName() string {
	return "insurance_options"
}

// GormPromotionRepository is the GORM-based implementation of rental.PromotionRepository.
type GormPromotionRepository struct {
	db *gorm.DB
}

// NewGormPromotionRepository creates a new GormPromotionRepository.
func NewGormPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

// FindByCode resolves a promotion by its code.
func (r *GormPromotionRepository) FindByCode(ctx context.Context, code string) (*rental.Promotion, error) {
	var model PromotionModel
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Promotion", code)
		}
		return nil, fmt.Errorf("failed to find promotion: %w", err)
	}
	return &rental.Promotion{
		Code:      model.Code,
		Kind:      rental.PromotionKind(model.Kind),
		Value:     model.Value,
		ExpiresAt: model.ExpiresAt,
		Active:    model.Active,
	}, nil
}

// GormInsuranceRepository is the GORM-based implementation of rental.InsuranceRepository.
type GormInsuranceRepository struct {
	db *gorm.DB
}

// NewGormInsuranceRepository creates a new GormInsuranceRepository.
func NewGormInsuranceRepository(db *gorm.DB) *GormInsuranceRepository {
	return &GormInsuranceRepository{db: db}
}

// FindByID resolves an insurance option by id.
func (r *GormInsuranceRepository) FindByID(ctx context.Context, id uuid.UUID) (*rental.InsuranceOption, error) {
	var model InsuranceModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("InsuranceOption", id.String())
		}
		return nil, fmt.Errorf("failed to find insurance option: %w", err)
	}
	return &rental.InsuranceOption{
		ID:       model.ID,
		Name:     model.Name,
		Kind:     rental.InsuranceKind(model.Kind),
		FeeCents: model.FeeCents,
	}, nil
}
