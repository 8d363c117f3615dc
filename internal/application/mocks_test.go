package application

import (
	"context"
	"time"

	"github.com/drivehub/service-rental/internal/domain/rental"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// mockStore satisfies rental.Store over per-repository mocks. InTx runs the
// callback against the store itself, so service logic under test sees the
// same repositories inside and outside the transaction.
type mockStore struct {
	bookings    *mockBookingRepo
	vehicles    *mockVehicleRepo
	maintenance *mockMaintenanceRepo
	payments    *mockPaymentRepo
	promotions  *mockPromotionRepo
	insurance   *mockInsuranceRepo
}

func newMockStore() *mockStore {
	return &mockStore{
		bookings:    &mockBookingRepo{},
		vehicles:    &mockVehicleRepo{},
		maintenance: &mockMaintenanceRepo{},
		payments:    &mockPaymentRepo{},
		promotions:  &mockPromotionRepo{},
		insurance:   &mockInsuranceRepo{},
	}
}

func (s *mockStore) Bookings() rental.BookingRepository        { return s.bookings }
func (s *mockStore) Vehicles() rental.VehicleRepository        { return s.vehicles }
func (s *mockStore) Maintenance() rental.MaintenanceRepository { return s.maintenance }
func (s *mockStore) Payments() rental.PaymentRepository        { return s.payments }
func (s *mockStore) Promotions() rental.PromotionRepository    { return s.promotions }
func (s *mockStore) Insurance() rental.InsuranceRepository     { return s.insurance }

func (s *mockStore) InTx(ctx context.Context, fn func(rental.Store) error) error {
	return fn(s)
}

type mockBookingRepo struct{ mock.Mock }

func (m *mockBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*rental.Booking, error) {
	args := m.Called(ctx, id)
	if b := args.Get(0); b != nil {
		return b.(*rental.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBookingRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]rental.CustomerBooking, error) {
	args := m.Called(ctx, customerID)
	if rows := args.Get(0); rows != nil {
		return rows.([]rental.CustomerBooking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBookingRepo) CountOverlapping(ctx context.Context, vehicleID uuid.UUID, w rental.Window, exclude *uuid.UUID) (int64, error) {
	args := m.Called(ctx, vehicleID, w, exclude)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockBookingRepo) Save(ctx context.Context, b *rental.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockBookingRepo) Update(ctx context.Context, b *rental.Booking) error {
	return m.Called(ctx, b).Error(0)
}

type mockVehicleRepo struct{ mock.Mock }

func (m *mockVehicleRepo) FindByID(ctx context.Context, id uuid.UUID) (*rental.Vehicle, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*rental.Vehicle), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVehicleRepo) LockByID(ctx context.Context, id uuid.UUID) (*rental.Vehicle, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*rental.Vehicle), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVehicleRepo) FindByClassAtBranch(ctx context.Context, branchID uuid.UUID, key rental.RateClassKey) ([]*rental.Vehicle, error) {
	args := m.Called(ctx, branchID, key)
	if vs := args.Get(0); vs != nil {
		return vs.([]*rental.Vehicle), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVehicleRepo) FindAvailableAtBranch(ctx context.Context, branchID uuid.UUID, w rental.Window) ([]rental.AvailableVehicle, error) {
	args := m.Called(ctx, branchID, w)
	if vs := args.Get(0); vs != nil {
		return vs.([]rental.AvailableVehicle), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVehicleRepo) RateFor(ctx context.Context, key rental.RateClassKey) (*rental.RateClass, error) {
	args := m.Called(ctx, key)
	if r := args.Get(0); r != nil {
		return r.(*rental.RateClass), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockMaintenanceRepo struct{ mock.Mock }

func (m *mockMaintenanceRepo) Open(ctx context.Context, log *rental.MaintenanceLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *mockMaintenanceRepo) Close(ctx context.Context, id uuid.UUID, dateOut time.Time) error {
	return m.Called(ctx, id, dateOut).Error(0)
}

func (m *mockMaintenanceRepo) HasOverlap(ctx context.Context, vehicleID uuid.UUID, w rental.Window) (bool, error) {
	args := m.Called(ctx, vehicleID, w)
	return args.Bool(0), args.Error(1)
}

type mockPaymentRepo struct{ mock.Mock }

func (m *mockPaymentRepo) Save(ctx context.Context, p *rental.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPaymentRepo) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]rental.Payment, error) {
	args := m.Called(ctx, bookingID)
	if ps := args.Get(0); ps != nil {
		return ps.([]rental.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPromotionRepo struct{ mock.Mock }

func (m *mockPromotionRepo) FindByCode(ctx context.Context, code string) (*rental.Promotion, error) {
	args := m.Called(ctx, code)
	if p := args.Get(0); p != nil {
		return p.(*rental.Promotion), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockInsuranceRepo struct{ mock.Mock }

func (m *mockInsuranceRepo) FindByID(ctx context.Context, id uuid.UUID) (*rental.InsuranceOption, error) {
	args := m.Called(ctx, id)
	if o := args.Get(0); o != nil {
		return o.(*rental.InsuranceOption), args.Error(1)
	}
	return nil, args.Error(1)
}
