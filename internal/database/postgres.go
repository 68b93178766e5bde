package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/kultura-go/internal/models"
)

const memoryDSN = "file::memory:?cache=shared"

// Connect opens the dev backend database. Postgres URLs and key/value DSNs go to
// Postgres, anything else is treated as a sqlite path. An empty dsn opens an
// in-memory sqlite database.
func Connect(dsn string) (*gorm.DB, error) {
	if isPostgresDSN(dsn) {
		return ConnectPostgres(dsn)
	}
	return ConnectSQLite(dsn)
}

// ConnectPostgres establishes a connection to the PostgreSQL database using the provided DSN.
func ConnectPostgres(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn must not be empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return db, nil
}

// ConnectSQLite opens a sqlite database at path, or in memory when path is empty.
func ConnectSQLite(path string) (*gorm.DB, error) {
	if path == "" {
		path = memoryDSN
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	return db, nil
}

// Migrate creates or updates every table the dev backend uses.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.Province{},
		&models.City{},
		&models.Location{},
		&models.Event{},
		&models.Thread{},
		&models.DiscussionParticipant{},
		&models.Message{},
		&models.Badge{},
		&models.UserBadge{},
		&models.AiSession{},
		&models.AiMessage{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func isPostgresDSN(dsn string) bool {
	lower := strings.ToLower(dsn)
	return strings.HasPrefix(lower, "postgres://") ||
		strings.HasPrefix(lower, "postgresql://") ||
		strings.Contains(lower, "host=")
}
