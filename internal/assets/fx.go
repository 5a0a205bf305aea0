package assets

import (
	"github.com/eboutiques/catalogsync/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newBuilder(cfg config.Config) *URLBuilder {
	return NewURLBuilder(cfg.AssetBaseURL)
}

func newProber(cfg config.Config, log *zap.Logger) Prober {
	return NewHTTPProber(cfg.ProbeTimeout, log)
}

var Module = fx.Module("assets",
	fx.Provide(newBuilder),
	fx.Provide(newProber),
)
