package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/drivehub/service-rental/internal/common/domain"
	"github.com/drivehub/service-rental/internal/domain/rental"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaintenanceLogModel is the GORM model for the maintenance_logs table.
type MaintenanceLogModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	VehicleID   uuid.UUID  `gorm:"type:uuid;index;not null"`
	DateIn      time.Time  `gorm:"not null"`
	DateOut     *time.Time `gorm:""`
	Description string     `gorm:"size:500"`
	CostCents   int64      `gorm:"not null;default:0"`
	CreatedAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (MaintenanceLogModel) TableName() string {
	return "maintenance_logs"
}

// GormMaintenanceRepository is the GORM-based implementation of rental.MaintenanceRepository.
type GormMaintenanceRepository struct {
	db *gorm.DB
}

// NewGormMaintenanceRepository creates a new GormMaintenanceRepository.
func NewGormMaintenanceRepository(db *gorm.DB) *GormMaintenanceRepository {
	return &GormMaintenanceRepository{db: db}
}

// Open records a new maintenance log entry.
func (r *GormMaintenanceRepository) Open(ctx context.Context, log *rental.MaintenanceLog) error {
	model := MaintenanceLogModel{
		ID:          log.ID,
		VehicleID:   log.VehicleID,
		DateIn:      log.DateIn,
		DateOut:     log.DateOut,
		Description: log.Description,
		CostCents:   log.CostCents,
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save maintenance log: %w", err)
	}
	return nil
}

// Close sets the date-out on an open log entry.
func (r *GormMaintenanceRepository) Close(ctx context.Context, id uuid.UUID, dateOut time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&MaintenanceLogModel{}).
		Where("id = ? AND date_out IS NULL", id).
		Update("date_out", dateOut)
	if result.Error != nil {
		return fmt.Errorf("failed to close maintenance log: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("MaintenanceLog", id.String())
	}
	return nil
}

// HasOverlap reports whether any maintenance log for the vehicle covers part
// of w. Open logs block everything from date-in onward.
func (r *GormMaintenanceRepository) HasOverlap(ctx context.Context, vehicleID uuid.UUID, w rental.Window) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&MaintenanceLogModel{}).
		Where("vehicle_id = ?", vehicleID).
		Where("date_in < ?", w.End).
		Where("date_out IS NULL OR date_out > ?", w.Start).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check maintenance overlap: %w", err)
	}
	return count > 0, nil
}
