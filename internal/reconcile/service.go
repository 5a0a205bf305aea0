package reconcile

import (
	"github.com/eboutiques/catalogsync/internal/assets"
	"github.com/eboutiques/catalogsync/internal/config"
	projection "github.com/eboutiques/catalogsync/internal/projection/domain"
	"github.com/eboutiques/catalogsync/internal/tax"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Repo   projection.Repository
	Taxes  *tax.Calculator
	URLs   *assets.URLBuilder
	Prober assets.Prober
	Log    *zap.Logger
	Config config.Config
}

// Service projects source templates onto the destination store. One
// call reconciles one product and cascades to its variants and gallery.
type Service struct {
	repo          projection.Repository
	taxes         *tax.Calculator
	urls          *assets.URLBuilder
	prober        assets.Prober
	log           *zap.Logger
	skipUnchanged bool
}

func New(p Params) *Service {
	return &Service{
		repo:          p.Repo,
		taxes:         p.Taxes,
		urls:          p.URLs,
		prober:        p.Prober,
		log:           p.Log.Named("reconcile"),
		skipUnchanged: p.Config.SkipUnchangedUpdates,
	}
}

// VariantOutcome summarizes one product's variant cascade.
type VariantOutcome struct {
	Synced  int
	Errors  int
	Skipped int
}

// Result summarizes one product reconciliation.
type Result struct {
	Product       *projection.Product
	Variants      VariantOutcome
	GalleryImages int
}

var Module = fx.Module("reconcile",
	fx.Provide(New),
)
