package application

import (
	"context"
	"time"

	"github.com/drivehub/service-rental/internal/domain/rental"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OpenMaintenanceRequest takes a vehicle into the shop. A zero DateIn means now.
type OpenMaintenanceRequest struct {
	VehicleID   uuid.UUID `json:"vehicle_id" binding:"required"`
	DateIn      time.Time `json:"date_in"`
	Description string    `json:"description"`
	CostCents   int64     `json:"cost_cents"`
}

// MaintenanceDTO is the response representation of a maintenance log entry.
type MaintenanceDTO struct {
	ID          uuid.UUID  `json:"id"`
	VehicleID   uuid.UUID  `json:"vehicle_id"`
	DateIn      time.Time  `json:"date_in"`
	DateOut     *time.Time `json:"date_out,omitempty"`
	Description string     `json:"description"`
	CostCents   int64      `json:"cost_cents"`
}

// FleetService serves availability search and the maintenance workflow.
type FleetService struct {
	store  rental.Store
	logger *zap.Logger
}

// NewFleetService creates a new FleetService.
func NewFleetService(store rental.Store, logger *zap.Logger) *FleetService {
	return &FleetService{store: store, logger: logger}
}

// SearchAvailable lists the vehicles at a branch that are free for the whole
// window, with their rate class info. The result is a point-in-time snapshot;
// booking creation re-checks availability under lock.
func (s *FleetService) SearchAvailable(ctx context.Context, branchID uuid.UUID, start, end time.Time) ([]rental.AvailableVehicle, error) {
	w, err := rental.NewWindow(start, end)
	if err != nil {
		return nil, err
	}
	return s.store.Vehicles().FindAvailableAtBranch(ctx, branchID, w)
}

// OpenMaintenance records a vehicle going into the shop. An open entry blocks
// the vehicle from date-in onward until closed.
func (s *FleetService) OpenMaintenance(ctx context.Context, req OpenMaintenanceRequest) (*MaintenanceDTO, error) {
	dateIn := req.DateIn
	if dateIn.IsZero() {
		dateIn = time.Now().UTC()
	}

	log := &rental.MaintenanceLog{
		ID:          uuid.New(),
		VehicleID:   req.VehicleID,
		DateIn:      dateIn.UTC(),
		Description: req.Description,
		CostCents:   req.CostCents,
	}

	var dto *MaintenanceDTO
	err := s.store.InTx(ctx, func(st rental.Store) error {
		if _, err := st.Vehicles().FindByID(ctx, req.VehicleID); err != nil {
			return err
		}
		if err := st.Maintenance().Open(ctx, log); err != nil {
			return err
		}
		dto = toMaintenanceDTO(log)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("maintenance opened",
		zap.String("log_id", log.ID.String()),
		zap.String("vehicle_id", log.VehicleID.String()),
	)
	return dto, nil
}

// CloseMaintenance releases a vehicle from the shop as of dateOut. A zero
// dateOut means now.
func (s *FleetService) CloseMaintenance(ctx context.Context, logID uuid.UUID, dateOut time.Time) error {
	if dateOut.IsZero() {
		dateOut = time.Now().UTC()
	}
	if err := s.store.Maintenance().Close(ctx, logID, dateOut.UTC()); err != nil {
		return err
	}

	s.logger.Info("maintenance closed", zap.String("log_id", logID.String()))
	return nil
}

func toMaintenanceDTO(log *rental.MaintenanceLog) *MaintenanceDTO {
	return &MaintenanceDTO{
		ID:          log.ID,
		VehicleID:   log.VehicleID,
		DateIn:      log.DateIn,
		DateOut:     log.DateOut,
		Description: log.Description,
		CostCents:   log.CostCents,
	}
}
