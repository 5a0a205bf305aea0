package main

import (
	"github.com/eboutiques/catalogsync/internal/assets"
	"github.com/eboutiques/catalogsync/internal/catalog/odoorpc"
	"github.com/eboutiques/catalogsync/internal/config"
	"github.com/eboutiques/catalogsync/internal/drift"
	"github.com/eboutiques/catalogsync/internal/logger"
	"github.com/eboutiques/catalogsync/internal/metrics"
	"github.com/eboutiques/catalogsync/internal/migration"
	"github.com/eboutiques/catalogsync/internal/projection"
	"github.com/eboutiques/catalogsync/internal/reconcile"
	"github.com/eboutiques/catalogsync/internal/scheduler"
	"github.com/eboutiques/catalogsync/internal/tax"
	"github.com/eboutiques/catalogsync/internal/watermark"
	"github.com/eboutiques/catalogsync/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		metrics.Module,
		db.Module,
		migration.Module,

		odoorpc.Module,
		assets.Module,
		tax.Module,
		projection.Module,
		reconcile.Module,
		drift.Module,
		watermark.Module,

		scheduler.Module,
	)
	app.Run()
}
