package drift

import "go.uber.org/fx"

var Module = fx.Module("drift",
	fx.Provide(New),
)
