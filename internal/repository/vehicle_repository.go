package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/drivehub/service-rental/internal/common/domain"
	"github.com/drivehub/service-rental/internal/domain/rental"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VehicleModel is the GORM model for the vehicles table.
type VehicleModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Make         string    `gorm:"not null;size:50"`
	Model        string    `gorm:"not null;size:50"`
	Year         int       `gorm:"not null"`
	LicensePlate string    `gorm:"uniqueIndex;not null;size:20"`
	BranchID     uuid.UUID `gorm:"type:uuid;index;not null"`
	Status       string    `gorm:"not null;size:20;index"`
}

// TableName returns the table name for the GORM model.
func (VehicleModel) TableName() string {
	return "vehicles"
}

// RateClassModel is the GORM model for rate class reference data.
type RateClassModel struct {
	Make           string `gorm:"primaryKey;size:50"`
	Model          string `gorm:"primaryKey;size:50"`
	Year           int    `gorm:"primaryKey"`
	Category       string `gorm:"not null;size:30"`
	DailyRateCents int64  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (RateClassModel) TableName() string {
	return "rate_classes"
}

// BranchModel is the GORM model for rental branches.
type BranchModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"not null;size:100"`
	City string    `gorm:"not null;size:100"`
}

// TableName returns the table name for the GORM model.
func (BranchModel) TableName() string {
	return "branches"
}

// GormVehicleRepository is the GORM-based implementation of rental.VehicleRepository.
type GormVehicleRepository struct {
	db *gorm.DB
}

// NewGormVehicleRepository creates a new GormVehicleRepository.
func NewGormVehicleRepository(db *gorm.DB) *GormVehicleRepository {
	return &GormVehicleRepository{db: db}
}

// FindByID retrieves a vehicle by id.
func (r *GormVehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*rental.Vehicle, error) {
	var model VehicleModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Vehicle", id.String())
		}
		return nil, fmt.Errorf("failed to find vehicle by ID: %w", err)
	}
	return toDomainVehicle(&model)
}

// LockByID retrieves a vehicle under a FOR UPDATE row lock. Within a
// transaction this serializes every availability-check-then-write sequence
// for that vehicle. SQLite has no row locks; its writer lock covers the same
// hazard for local development.
func (r *GormVehicleRepository) LockByID(ctx context.Context, id uuid.UUID) (*rental.Vehicle, error) {
	q := r.db.WithContext(ctx)
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var model VehicleModel
	if err := q.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Vehicle", id.String())
		}
		return nil, fmt.Errorf("failed to lock vehicle: %w", err)
	}
	return toDomainVehicle(&model)
}

// FindByClassAtBranch lists active vehicles of a rate class at a branch,
// ordered by vehicle id so class-based selection is deterministic.
func (r *GormVehicleRepository) FindByClassAtBranch(ctx context.Context, branchID uuid.UUID, key rental.RateClassKey) ([]*rental.Vehicle, error) {
	var models []VehicleModel
	if err := r.db.WithContext(ctx).
		Where("branch_id = ?", branchID).
		Where("make = ? AND model = ? AND year = ?", key.Make, key.Model, key.Year).
		Where("status = ?", string(rental.VehicleActive)).
		Order("id").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find vehicles by class: %w", err)
	}

	vehicles := make([]*rental.Vehicle, len(models))
	for i, m := range models {
		v, err := toDomainVehicle(&m)
		if err != nil {
			return nil, err
		}
		vehicles[i] = v
	}
	return vehicles, nil
}

// FindAvailableAtBranch lists vehicles at a branch that are active and have
// neither an overlapping live reservation nor overlapping maintenance for w.
// Non-active vehicles are excluded before the overlap checks run.
func (r *GormVehicleRepository) FindAvailableAtBranch(ctx context.Context, branchID uuid.UUID, w rental.Window) ([]rental.AvailableVehicle, error) {
	var rows []rental.AvailableVehicle
	err := r.db.WithContext(ctx).
		Table("vehicles").
		Select("vehicles.id, vehicles.make, vehicles.model, vehicles.year, vehicles.license_plate, vehicles.branch_id, rate_classes.category, rate_classes.daily_rate_cents").
		Joins("JOIN rate_classes ON rate_classes.make = vehicles.make AND rate_classes.model = vehicles.model AND rate_classes.year = vehicles.year").
		Where("vehicles.branch_id = ?", branchID).
		Where("vehicles.status = ?", string(rental.VehicleActive)).
		Where(`NOT EXISTS (
			SELECT 1 FROM bookings
			WHERE bookings.vehicle_id = vehicles.id
			  AND bookings.status IN ?
			  AND bookings.start_time < ? AND bookings.end_time > ?)`,
			[]string{string(rental.StatusReserved), string(rental.StatusActive)}, w.End, w.Start).
		Where(`NOT EXISTS (
			SELECT 1 FROM maintenance_logs
			WHERE maintenance_logs.vehicle_id = vehicles.id
			  AND maintenance_logs.date_in < ?
			  AND (maintenance_logs.date_out IS NULL OR maintenance_logs.date_out > ?))`,
			w.End, w.Start).
		Order("vehicles.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search available vehicles: %w", err)
	}
	return rows, nil
}

// RateFor resolves a rate class by key.
func (r *GormVehicleRepository) RateFor(ctx context.Context, key rental.RateClassKey) (*rental.RateClass, error) {
	var model RateClassModel
	if err := r.db.WithContext(ctx).
		Where("make = ? AND model = ? AND year = ?", key.Make, key.Model, key.Year).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("RateClass", fmt.Sprintf("%s %s %d", key.Make, key.Model, key.Year))
		}
		return nil, fmt.Errorf("failed to find rate class: %w", err)
	}
	return &rental.RateClass{
		Make:           model.Make,
		Model:          model.Model,
		Year:           model.Year,
		Category:       model.Category,
		DailyRateCents: model.DailyRateCents,
	}, nil
}

func toDomainVehicle(m *VehicleModel) (*rental.Vehicle, error) {
	status, err := rental.ParseVehicleStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return &rental.Vehicle{
		ID:           m.ID,
		Make:         m.Make,
		Model:        m.Model,
		Year:         m.Year,
		LicensePlate: m.LicensePlate,
		BranchID:     m.BranchID,
		Status:       status,
	}, nil
}
