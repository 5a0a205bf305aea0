package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	catalog "github.com/eboutiques/catalogsync/internal/catalog/domain"
	"github.com/eboutiques/catalogsync/internal/config"
	"github.com/eboutiques/catalogsync/internal/drift"
	"github.com/eboutiques/catalogsync/internal/metrics"
	"github.com/eboutiques/catalogsync/internal/reconcile"
	"github.com/eboutiques/catalogsync/internal/watermark"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Client    catalog.Client
	Reconcile *reconcile.Service
	Drift     *drift.Detector
	Watermark *watermark.Store
	Metrics   *metrics.Metrics
	Log       *zap.Logger
	AppConfig config.Config
	Config    Config `optional:"true"`
}

// Scheduler drives the periodic sync jobs: the watermark-gated
// reconciliation pass and the two drift detectors.
type Scheduler struct {
	client    catalog.Client
	reconcile *reconcile.Service
	drift     *drift.Detector
	watermark *watermark.Store
	metrics   *metrics.Metrics
	log       *zap.Logger
	cfg       Config

	qtyField string
}

func New(p Params) (*Scheduler, error) {
	if p.Client == nil || p.Reconcile == nil || p.Drift == nil || p.Watermark == nil || p.Metrics == nil || p.Log == nil {
		return nil, ErrInvalidConfig
	}
	cfg := p.Config.withDefaults()
	return &Scheduler{
		client:    p.Client,
		reconcile: p.Reconcile,
		drift:     p.Drift,
		watermark: p.Watermark,
		metrics:   p.Metrics,
		log:       p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:       cfg,
		qtyField:  p.AppConfig.RemoteQuantityField,
	}, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	timeout time.Duration,
	fn func(ctx context.Context) error,
) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	log := s.log.With(zap.String("job", name))
	s.metrics.IncJobRun(name)

	err := fn(ctx)
	s.metrics.ObserveJobDuration(name, time.Since(start))
	if err == nil {
		return nil
	}

	s.metrics.IncJobError(name)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		log.Warn("job timed out",
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}

	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error

	jobs := []struct {
		Name    string
		Enabled bool
		Run     func(context.Context) error
	}{
		{"reconcile", s.isJobEnabled("reconcile"), func(ctx context.Context) error {
			return s.runJob(ctx, "reconcile", s.cfg.JobTimeout, s.ReconcileJob)
		}},
		{"quantity_drift", s.isJobEnabled("quantity_drift"), func(ctx context.Context) error {
			return s.runJob(ctx, "quantity_drift", s.cfg.JobTimeout, s.QuantityDriftJob)
		}},
		{"image_drift", s.isJobEnabled("image_drift"), func(ctx context.Context) error {
			return s.runJob(ctx, "image_drift", s.cfg.JobTimeout, s.ImageDriftJob)
		}},
	}

	for _, job := range jobs {
		if job.Enabled {
			err = errors.Join(err, job.Run(parent))
		}
	}

	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	// Empty EnabledJobs enables everything (single-worker mode).
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}

func (s *Scheduler) QuantityDriftJob(ctx context.Context) error {
	corrected, err := s.drift.DetectQuantity(ctx)
	if corrected > 0 {
		s.log.Info("quantity drift pass finished", zap.Int("corrected", corrected))
	}
	return err
}

func (s *Scheduler) ImageDriftJob(ctx context.Context) error {
	rebuilt, err := s.drift.DetectImages(ctx)
	if rebuilt > 0 {
		s.log.Info("image drift pass finished", zap.Int("rebuilt", rebuilt))
	}
	return err
}
