//go:build integration

package main_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/drivehub/service-rental/internal/application"
	"github.com/drivehub/service-rental/internal/common/domain"
	rentalEvents "github.com/drivehub/service-rental/internal/events"
	"github.com/drivehub/service-rental/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createReq(branchID, vehicleID uuid.UUID, start time.Time, days int) application.CreateBookingRequest {
	return application.CreateBookingRequest{
		CustomerID:      uuid.New(),
		VehicleID:       &vehicleID,
		PickupBranchID:  branchID,
		DropoffBranchID: branchID,
		StartTime:       start,
		EndTime:         start.Add(time.Duration(days) * 24 * time.Hour),
	}
}

// TestConcurrentBooking_ExactlyOneWins drives two simultaneous creates for
// the same vehicle and an overlapping window. Exactly one must get the
// reservation; the loser must get a clean domain error, never a second row.
func TestConcurrentBooking_ExactlyOneWins(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRentalStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	branchID, vehicleIDs := seedFleet(t, infra.DB, 1)
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := stack.Bookings.CreateBooking(context.Background(),
				createReq(branchID, vehicleIDs[0], start, 3))
			errs[i] = err
		}(i)
	}
	wg.Wait()

	var wins int
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		kind := domain.KindOf(err)
		assert.Contains(t, []domain.ErrorKind{domain.KindUnavailable, domain.KindConflict}, kind,
			"losers get a domain error, got: %v", err)
	}
	assert.Equal(t, 1, wins, "exactly one create wins the window")

	var count int64
	require.NoError(t, infra.DB.Model(&repository.BookingModel{}).
		Where("vehicle_id = ? AND status = ?", vehicleIDs[0], "reserved").
		Count(&count).Error)
	assert.Equal(t, int64(1), count, "exactly one reserved row persisted")
}

// TestBackToBackBookings_BothSucceed checks the half-open window semantics:
// a booking ending exactly when another starts does not overlap it.
func TestBackToBackBookings_BothSucceed(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRentalStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	branchID, vehicleIDs := seedFleet(t, infra.DB, 1)
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)

	first, err := stack.Bookings.CreateBooking(context.Background(),
		createReq(branchID, vehicleIDs[0], start, 2))
	require.NoError(t, err)

	second, err := stack.Bookings.CreateBooking(context.Background(),
		createReq(branchID, vehicleIDs[0], first.EndTime, 2))
	require.NoError(t, err, "window starting at the previous end must be free")
	assert.Equal(t, vehicleIDs[0], second.VehicleID)
}

// TestCancelFreesWindow verifies a cancelled reservation no longer blocks the
// vehicle, and that repeating the cancel is harmless.
func TestCancelFreesWindow(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRentalStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	branchID, vehicleIDs := seedFleet(t, infra.DB, 1)
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)
	req := createReq(branchID, vehicleIDs[0], start, 3)

	first, err := stack.Bookings.CreateBooking(context.Background(), req)
	require.NoError(t, err)

	_, err = stack.Bookings.CreateBooking(context.Background(), req)
	require.Error(t, err, "same window is taken")

	cancelled, err := stack.Bookings.CancelBooking(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)

	again, err := stack.Bookings.CancelBooking(context.Background(), first.ID)
	require.NoError(t, err, "repeated cancel succeeds")
	assert.Equal(t, "cancelled", again.Status)

	retry, err := stack.Bookings.CreateBooking(context.Background(), req)
	require.NoError(t, err, "cancelled booking no longer blocks the window")
	assert.Equal(t, vehicleIDs[0], retry.VehicleID)
}

// TestMaintenanceBlocksAvailability verifies an open maintenance log removes
// the vehicle from search and from booking, and closing it restores both.
func TestMaintenanceBlocksAvailability(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRentalStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	branchID, vehicleIDs := seedFleet(t, infra.DB, 1)
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)
	end := start.Add(48 * time.Hour)

	log, err := stack.Fleet.OpenMaintenance(context.Background(), application.OpenMaintenanceRequest{
		VehicleID:   vehicleIDs[0],
		DateIn:      start.Add(-time.Hour),
		Description: "brake service",
	})
	require.NoError(t, err)

	rows, err := stack.Fleet.SearchAvailable(context.Background(), branchID, start, end)
	require.NoError(t, err)
	assert.Empty(t, rows, "vehicle in the shop is not searchable")

	_, err = stack.Bookings.CreateBooking(context.Background(),
		createReq(branchID, vehicleIDs[0], start, 2))
	require.Error(t, err, "vehicle in the shop cannot be booked")

	require.NoError(t, stack.Fleet.CloseMaintenance(context.Background(), log.ID, start.Add(-time.Minute)))

	rows, err = stack.Fleet.SearchAvailable(context.Background(), branchID, start, end)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(5000), rows[0].DailyRateCents)

	_, err = stack.Bookings.CreateBooking(context.Background(),
		createReq(branchID, vehicleIDs[0], start, 2))
	require.NoError(t, err, "vehicle released from the shop is bookable again")
}

// TestPaymentCaptured_RecordsPayment publishes a payment.captured event and
// verifies the consumer records the payment against its booking.
func TestPaymentCaptured_RecordsPayment(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRentalStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	branchID, vehicleIDs := seedFleet(t, infra.DB, 1)
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)

	booking, err := stack.Bookings.CreateBooking(context.Background(),
		createReq(branchID, vehicleIDs[0], start, 3))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	evt := rentalEvents.PaymentCapturedEvent{
		BookingID:   booking.ID,
		AmountCents: booking.TotalCents,
		Mode:        "card",
		Reference:   "TXN_integration",
		OccurredAt:  time.Now().UTC(),
	}
	publishTestEvent(t, infra.KafkaBrokers, rentalEvents.TopicPaymentEvents,
		"service-payment", rentalEvents.PaymentCaptured, evt)

	require.Eventually(t, func() bool {
		payments, err := stack.Payments.ListPayments(context.Background(), booking.ID)
		return err == nil && len(payments) == 1
	}, 15*time.Second, 200*time.Millisecond, "payment not recorded from event")

	payments, err := stack.Payments.ListPayments(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.TotalCents, payments[0].AmountCents)
	assert.Equal(t, "TXN_integration", payments[0].Reference)
}

// TestBookingEvents_PublishedOnLifecycle checks the reserved event lands on
// the booking stream with the right payload.
func TestBookingEvents_PublishedOnLifecycle(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRentalStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	branchID, vehicleIDs := seedFleet(t, infra.DB, 1)
	seedPromotion(t, infra.DB, "SPRING20", 20)
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)

	req := createReq(branchID, vehicleIDs[0], start, 3)
	code := "SPRING20"
	req.PromoCode = &code

	booking, err := stack.Bookings.CreateBooking(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(12000), booking.TotalCents, "3 days at 5000, 20% off")

	ce := consumeOneEvent(t, infra.KafkaBrokers, rentalEvents.TopicBookingEvents,
		rentalEvents.BookingReserved, 15*time.Second)

	var reserved rentalEvents.BookingEvent
	require.NoError(t, ce.ParseData(&reserved))
	assert.Equal(t, booking.ID, reserved.BookingID)
	assert.Equal(t, vehicleIDs[0], reserved.VehicleID)
	assert.Equal(t, "reserved", reserved.Status)
	assert.Equal(t, int64(12000), reserved.TotalCents)
}
