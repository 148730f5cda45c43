package database

import (
	"errors"
	"fmt"

	"saas-template/internal/domain/creators"
	"saas-template/internal/domain/platform"
	"saas-template/internal/domain/products"
	"saas-template/internal/domain/subscribers"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open connects to Postgres. Duplicate-key and FK errors are translated to
// gorm sentinels so handlers can map them without driver-specific checks.
func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         NewGormLogger(log.Logger, logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

func InitDB(dsn string) {
	db, err := Open(dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	DB = db
	log.Info().Msg("Connected to database")
}

// Migrate creates or updates every table and seeds the platform settings row.
func Migrate(db *gorm.DB) error {
	// gen_random_uuid()
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		return fmt.Errorf("enable pgcrypto: %w", err)
	}

	if err := db.AutoMigrate(
		&creators.Creator{},
		&products.Product{},
		&products.PricingTier{},
		&products.WhitelabelConfig{},
		&subscribers.Subscriber{},
		&subscribers.UsageMetric{},
		&platform.Settings{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	defaults := platform.DefaultSettings()
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&defaults).Error; err != nil {
		return fmt.Errorf("seed platform settings: %w", err)
	}
	return nil
}
