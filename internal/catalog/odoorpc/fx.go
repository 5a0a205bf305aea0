package odoorpc

import (
	"github.com/eboutiques/catalogsync/internal/catalog/domain"
	"github.com/eboutiques/catalogsync/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewFromConfig(cfg config.Config, log *zap.Logger) domain.Client {
	return New(Config{
		URL:      cfg.RemoteURL,
		Database: cfg.RemoteDB,
		Username: cfg.RemoteUser,
		Password: cfg.RemotePassword,
		Timeout:  cfg.RemoteTimeout,
	}, log)
}

var Module = fx.Module("catalog.client",
	fx.Provide(NewFromConfig),
)
