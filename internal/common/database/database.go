package database

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	_ "modernc.org/sqlite"
)

// Connect opens a GORM connection from a DSN. A postgres:// DSN selects the
// Postgres driver; anything else is treated as a SQLite path for local
// development.
func Connect(dsn string, log *zap.Logger) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		log.Info("connecting to postgres")
		db, err := gorm.Open(postgres.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return db, nil
	}

	log.Info("using sqlite for local development", zap.String("dsn", dsn))
	db, err := gorm.Open(gormsqlite.New(gormsqlite.Config{
		DriverName: "sqlite",
		DSN:        dsn,
	}), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	return db, nil
}

// IsPostgres reports whether the connection speaks the Postgres dialect.
func IsPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}

// EnsureBookingConstraints installs the exclusion constraint that makes
// overlapping live reservations for one vehicle impossible at the store level.
// The row lock taken during booking creation is the primary guard; this
// constraint catches anything that slips past it. Postgres only.
func EnsureBookingConstraints(db *gorm.DB, log *zap.Logger) error {
	if !IsPostgres(db) {
		log.Warn("skipping booking exclusion constraint on non-postgres store")
		return nil
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		return fmt.Errorf("failed to create btree_gist extension: %w", err)
	}

	stmt := `
		ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap
		EXCLUDE USING gist (
			vehicle_id WITH =,
			tstzrange(start_time, end_time) WITH &&
		) WHERE (status IN ('reserved', 'active'))`
	if err := db.Exec(stmt).Error; err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return nil
		}
		return fmt.Errorf("failed to create booking exclusion constraint: %w", err)
	}
	return nil
}
