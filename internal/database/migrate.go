package database

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tutorhub/internal/database/migrations"
	"tutorhub/internal/domain"
)

// Partial unique index; a cancelled booking frees its start time.
const bookingSlotIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_teacher_start
ON bookings (teacher_id, start_time) WHERE status <> 'cancelled'`

const activeSubscriptionIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_subscriptions_one_active
ON subscriptions (user_id) WHERE status = 'active'`

// Migrate brings the schema up to date. PostgreSQL runs the embedded goose
// migrations; sqlite is migrated from the gorm models.
func Migrate(ctx context.Context, db *gorm.DB, logger *zap.Logger) error {
	if db.Dialector.Name() != "postgres" {
		logger.Info("auto-migrating sqlite schema")
		return AutoMigrate(db)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}

	goose.SetBaseFS(migrations.Files)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	logger.Info("applying database migrations")
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return fmt.Errorf("get version: %w", err)
	}
	logger.Info("migrations applied", zap.Int64("version", version))
	return nil
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(domain.Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec(bookingSlotIndex).Error; err != nil {
		return fmt.Errorf("create booking slot index: %w", err)
	}
	if err := db.Exec(activeSubscriptionIndex).Error; err != nil {
		return fmt.Errorf("create active subscription index: %w", err)
	}
	return nil
}
