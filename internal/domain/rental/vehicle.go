package rental

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// VehicleStatus is the operational state of a vehicle in the fleet.
type VehicleStatus string

const (
	VehicleActive      VehicleStatus = "active"
	VehicleMaintenance VehicleStatus = "maintenance"
	VehicleRetired     VehicleStatus = "retired"
)

// IsValid returns true if the status is a recognized vehicle status.
func (s VehicleStatus) IsValid() bool {
	switch s {
	case VehicleActive, VehicleMaintenance, VehicleRetired:
		return true
	}
	return false
}

// ParseVehicleStatus converts a string to a VehicleStatus.
func ParseVehicleStatus(s string) (VehicleStatus, error) {
	status := VehicleStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid vehicle status: %s", s)
	}
	return status, nil
}

// Vehicle is a read-only catalog view of one fleet unit. The engine never
// mutates vehicles; maintenance and retirement workflows own their status.
type Vehicle struct {
	ID           uuid.UUID
	Make         string
	Model        string
	Year         int
	LicensePlate string
	BranchID     uuid.UUID
	Status       VehicleStatus
}

// RateKey returns the vehicle's rate class key.
func (v Vehicle) RateKey() RateClassKey {
	return RateClassKey{Make: v.Make, Model: v.Model, Year: v.Year}
}

// RateClassKey identifies a rate class by (make, model, year).
type RateClassKey struct {
	Make  string
	Model string
	Year  int
}

// RateClass maps a vehicle class to its category and daily rate. Immutable
// reference data.
type RateClass struct {
	Make           string
	Model          string
	Year           int
	Category       string
	DailyRateCents int64
}

// AvailableVehicle is a search result row: a free vehicle with its rate info.
type AvailableVehicle struct {
	ID             uuid.UUID `json:"id"`
	Make           string    `json:"make"`
	Model          string    `json:"model"`
	Year           int       `json:"year"`
	LicensePlate   string    `json:"license_plate"`
	BranchID       uuid.UUID `json:"branch_id"`
	Category       string    `json:"category"`
	DailyRateCents int64     `json:"daily_rate_cents"`
}

// MaintenanceLog records a shop visit. While open (DateOut nil) it blocks the
// vehicle from DateIn onward.
type MaintenanceLog struct {
	ID          uuid.UUID
	VehicleID   uuid.UUID
	DateIn      time.Time
	DateOut     *time.Time
	Description string
	CostCents   int64
}

// Branch is a rental location. Reference data only.
type Branch struct {
	ID   uuid.UUID
	Name string
	City string
}
