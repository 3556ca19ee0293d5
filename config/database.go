package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"mazzeh-api/models"
)

var ErrUnknownDriver = errors.New("unknown database driver")

// sqliteDSN turns on foreign keys so cascades are enforced.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// InitDB opens the configured database. Unique and foreign key violations come back
// as gorm.ErrDuplicatedKey and gorm.ErrForeignKeyViolated.
func InitDB(cfg DatabaseConfig) (*gorm.DB, error) {
	var (
		dialector gorm.Dialector
		maxOpen   = cfg.MaxOpenConns
	)

	switch cfg.Driver {
	case "", "sqlite":
		dialector = sqlite.Open(sqliteDSN(cfg.DSN))
		// sqlite serialises writers anyway; one connection also keeps :memory: databases alive
		if maxOpen == 0 {
			maxOpen = 1
		}
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
		if maxOpen == 0 {
			maxOpen = 100
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
