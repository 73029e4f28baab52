package db

import (
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/windoze95/forkful-api/internal/config"
	"github.com/windoze95/forkful-api/internal/db/migrations"
	"github.com/windoze95/forkful-api/internal/logger"
	"github.com/windoze95/forkful-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// New creates a new database connection and migrates the schema.
func New(cfg *config.Config) (*gorm.DB, error) {
	database, err := connectToDatabaseWithRetry(cfg.EnvVars.DatabaseUrl)
	if err != nil {
		return nil, err
	}
	if err := migrate(database); err != nil {
		return nil, err
	}
	return database, nil
}

// connectToDatabaseWithRetry connects to the database and retries if necessary.
// The connection runs over lib/pq so constraint errors surface as *pq.Error.
func connectToDatabaseWithRetry(databaseURL string) (*gorm.DB, error) {
	logger.Get().Info("connecting to database")
	var database *gorm.DB
	var err error

	start := time.Now()
	for {
		database, err = gorm.Open(postgres.New(postgres.Config{
			DriverName: "postgres",
			DSN:        databaseURL,
		}), &gorm.Config{})
		if err == nil {
			break
		}
		if time.Since(start) > 1*time.Minute {
			return nil, fmt.Errorf("could not connect to database after 1 minute: %w", err)
		}
		logger.Get().Warn("could not connect to database, retrying...", zap.Error(err))
		time.Sleep(5 * time.Second)
	}

	return database, nil
}

func migrate(database *gorm.DB) error {
	if err := database.AutoMigrate(
		&models.User{},
		&models.UserAuth{},
		&models.UserSettings{},
		&models.Recipe{},
		&models.Like{},
		&models.Save{},
		&models.Collection{},
		&models.Notification{},
		&models.DeviceToken{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	// Community listings sort by created_at inside the discoverable pool.
	if err := database.Exec(`CREATE INDEX IF NOT EXISTS idx_recipes_discoverable_created
		ON recipes (created_at DESC) WHERE is_discoverable AND deleted_at IS NULL`).Error; err != nil {
		return fmt.Errorf("create discoverable index: %w", err)
	}

	if err := migrations.BackfillSearchableFields(database); err != nil {
		return fmt.Errorf("backfill searchable fields: %w", err)
	}
	return nil
}
