package projection

import (
	"github.com/eboutiques/catalogsync/internal/projection/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("projection",
	fx.Provide(repository.NewRepository),
)
