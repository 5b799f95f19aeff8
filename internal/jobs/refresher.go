package jobs

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/clearbook-finance/rates-adapter/internal/surface"
)

// Rebuilder is the slice of the fetch service the refresher drives.
type Rebuilder interface {
	Rebuild(ctx context.Context) (*surface.Snapshot, error)
}

// SurfaceRefresher periodically rebuilds the rate surface so the grid's last
// date tracks the current day and fresh provider fixings get picked up. It
// also listens on a NATS command subject for on-demand rebuilds.
type SurfaceRefresher struct {
	logger   *zap.Logger
	nc       *nats.Conn
	svc      Rebuilder
	subject  string // command subject, empty disables the listener
	interval time.Duration
	stopCh   chan struct{}
}

// NewSurfaceRefresher constructs a background job that runs periodically.
// nc may be nil when no command listener is wanted.
func NewSurfaceRefresher(logger *zap.Logger, nc *nats.Conn, svc Rebuilder, subject string, interval time.Duration) *SurfaceRefresher {
	return &SurfaceRefresher{
		logger:   logger,
		nc:       nc,
		svc:      svc,
		subject:  subject,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the rebuild loop (typically every 6 h) until stopped.
func (r *SurfaceRefresher) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("surface_refresher.started", zap.Duration("interval", r.interval))

	trigger := r.subscribeCommands(ctx)

	for {
		select {
		case <-ticker.C:
			r.runOnce(ctx)
		case <-trigger:
			r.logger.Info("surface_refresher.command_received")
			r.runOnce(ctx)
		case <-r.stopCh:
			r.logger.Info("surface_refresher.stopped (manual stop)")
			return
		case <-ctx.Done():
			r.logger.Info("surface_refresher.stopped (context canceled)")
			return
		}
	}
}

// Stop gracefully halts the refresher.
func (r *SurfaceRefresher) Stop() {
	close(r.stopCh)
}

// subscribeCommands wires the NATS command subject into the run loop. The
// returned channel fires at most once per pending rebuild; bursts coalesce.
func (r *SurfaceRefresher) subscribeCommands(ctx context.Context) <-chan struct{} {
	trigger := make(chan struct{}, 1)
	if r.nc == nil || r.subject == "" {
		return trigger
	}

	sub, err := r.nc.Subscribe(r.subject, func(*nats.Msg) {
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
	if err != nil {
		r.logger.Warn("surface_refresher.subscribe_failed",
			zap.String("subject", r.subject),
			zap.Error(err))
		return trigger
	}

	go func() {
		<-ctx.Done()
		_ = sub.Unsubscribe()
	}()

	r.logger.Info("surface_refresher.listening", zap.String("subject", r.subject))
	return trigger
}

// runOnce executes one rebuild cycle. Failures keep the previous surface.
func (r *SurfaceRefresher) runOnce(ctx context.Context) {
	start := time.Now()
	r.logger.Info("surface_refresher.running")

	snap, err := r.svc.Rebuild(ctx)
	if err != nil {
		r.logger.Error("surface_refresher.rebuild_failed", zap.Error(err))
		return
	}

	r.logger.Info("surface_refresher.success",
		zap.Int("rows", snap.Rates.Rows()),
		zap.Duration("duration", time.Since(start)))
}
