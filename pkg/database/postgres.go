package database

import (
	"time"

	"github.com/juju/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fullreservas/reservas-api/config"
	"github.com/fullreservas/reservas-api/internal/models"
)

// NewPostgresDB opens the pool described by cfg and migrates the schema.
func NewPostgresDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, errors.Annotate(err, "connecting to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Trace(err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := models.AutoMigrate(db); err != nil {
		return nil, errors.Annotate(err, "migrating schema")
	}
	return db, nil
}
