package watermark

import (
	"github.com/eboutiques/catalogsync/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("watermark",
	fx.Provide(func(cfg config.Config) *Store {
		return NewStore(cfg.WatermarkFile, cfg.WatermarkBackfill)
	}),
)
