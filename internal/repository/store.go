package repository

import (
	"context"
	"errors"
	"time"

	"github.com/drivehub/service-rental/internal/common/domain"
	"github.com/drivehub/service-rental/internal/domain/rental"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// GormStore groups the GORM repositories behind the rental.Store boundary.
type GormStore struct {
	db        *gorm.DB
	txTimeout time.Duration
}

// NewGormStore creates a store over the given connection. txTimeout bounds
// every transaction started through InTx.
func NewGormStore(db *gorm.DB, txTimeout time.Duration) *GormStore {
	return &GormStore{db: db, txTimeout: txTimeout}
}

// Bookings returns the booking repository bound to this store's connection.
func (s *GormStore) Bookings() rental.BookingRepository {
	return NewGormBookingRepository(s.db)
}

// Vehicles returns the vehicle repository bound to this store's connection.
func (s *GormStore) Vehicles() rental.VehicleRepository {
	return NewGormVehicleRepository(s.db)
}

// Maintenance returns the maintenance repository bound to this store's connection.
func (s *GormStore) Maintenance() rental.MaintenanceRepository {
	return NewGormMaintenanceRepository(s.db)
}

// Payments returns the payment repository bound to this store's connection.
func (s *GormStore) Payments() rental.PaymentRepository {
	return NewGormPaymentRepository(s.db)
}

// Promotions returns the promotion repository bound to this store's connection.
func (s *GormStore) Promotions() rental.PromotionRepository {
	return NewGormPromotionRepository(s.db)
}

// Insurance returns the insurance repository bound to this store's connection.
func (s *GormStore) Insurance() rental.InsuranceRepository {
	return NewGormInsuranceRepository(s.db)
}

// InTx runs fn against a store bound to one database transaction. The
// transaction is bounded by the configured timeout; on any error the
// transaction rolls back, so no partial booking rows ever persist.
// Lock contention, serialization failures, constraint violations and
// timeouts all surface as retryable conflict errors.
func (s *GormStore) InTx(ctx context.Context, fn func(rental.Store) error) error {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	err := s.db.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, txTimeout: s.txTimeout})
	})
	return translateTxError(err)
}

// AllModels lists every GORM model for schema migration.
func AllModels() []interface{} {
	return []interface{}{
		&BranchModel{},
		&RateClassModel{},
		&VehicleModel{},
		&BookingModel{},
		&MaintenanceLogModel{},
		&PaymentModel{},
		&FeedbackModel{},
		&PromotionModel{},
		&InsuranceModel{},
	}
}

// retryablePgCodes are Postgres error codes that mean "the operation lost a
// race, run it again": serialization failure, deadlock, lock timeout, unique
// violation and exclusion violation.
var retryablePgCodes = map[string]bool{
	"40001": true,
	"40P01": true,
	"55P03": true,
	"23505": true,
	"23P01": true,
}

func translateTxError(err error) error {
	if err == nil {
		return nil
	}

	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewConflictError("transaction timed out; retry the operation")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && retryablePgCodes[pgErr.Code] {
		return domain.NewConflictError("transaction conflict; retry the operation")
	}

	return err
}
