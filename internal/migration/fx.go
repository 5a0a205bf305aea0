package migration

import (
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/eboutiques/catalogsync/internal/config"
	projection "github.com/eboutiques/catalogsync/internal/projection/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		// golang-migrate has no driver for the pure-Go sqlite used in
		// tests and local runs; gorm derives the same schema there.
		if cfg.DBType == "sqlite" {
			return conn.AutoMigrate(
				&projection.Product{},
				&projection.ProductVariant{},
				&projection.ProductGallery{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		operation := func() error {
			return RunMigrations(sqlDB, cfg.DBType)
		}
		notify := func(err error, next time.Duration) {
			log.Warn("migration attempt failed",
				zap.Duration("retry_in", next),
				zap.Error(err),
			)
		}
		return backoff.RetryNotify(operation,
			backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(cfg.MigrateAttempts)),
			notify,
		)
	}),
)
