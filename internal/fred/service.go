package fred

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/clearbook-finance/rates-adapter/internal/config"
	"github.com/clearbook-finance/rates-adapter/internal/metrics"
	"github.com/clearbook-finance/rates-adapter/internal/surface"
	"github.com/clearbook-finance/rates-adapter/pkg/model"
)

// ObservationArchiver persists raw observations and build audit rows. Archive
// failures are logged and counted but never fail a build: persistence is an
// operational aid, not part of the pricing contract.
type ObservationArchiver interface {
	ArchiveObservations(ctx context.Context, series model.SourceSeries) error
	RecordBuild(ctx context.Context, audit model.BuildAudit) error
}

// EventPublisher announces completed rebuilds.
type EventPublisher interface {
	PublishSurfaceRebuilt(ctx context.Context, evt model.SurfaceRebuiltEvent) error
}

// Service orchestrates one full surface construction: parallel fetch+parse,
// grid build, atomic swap, then archive and event publication.
type Service struct {
	cfg      config.Config
	logger   *zap.Logger
	fetcher  *Fetcher
	resolver ConfigResolver
	archiver ObservationArchiver
	pub      EventPublisher
	holder   *surface.Holder

	now func() time.Time
}

// NewService wires the rebuild pipeline. resolver, archiver and pub may be nil;
// the service then runs on environment defaults without persistence or events.
func NewService(
	cfg config.Config,
	logger *zap.Logger,
	fetcher *Fetcher,
	resolver ConfigResolver,
	archiver ObservationArchiver,
	pub EventPublisher,
	holder *surface.Holder,
) *Service {
	return &Service{
		cfg:      cfg,
		logger:   logger,
		fetcher:  fetcher,
		resolver: resolver,
		archiver: archiver,
		pub:      pub,
		holder:   holder,
		now:      time.Now,
	}
}

// Holder exposes the snapshot holder for the query surface.
func (s *Service) Holder() *surface.Holder { return s.holder }

// Rebuild fetches every source series, constructs a fresh snapshot and swaps
// it in. The previous snapshot keeps serving until the swap; any failure
// leaves it untouched.
func (s *Service) Rebuild(ctx context.Context) (*surface.Snapshot, error) {
	started := s.now()
	today := started.UTC()

	providerCfg := s.providerConfig(ctx)

	rates, dividends, err := s.fetcher.FetchAll(ctx, providerCfg)
	if err != nil {
		s.failBuild(ctx, started, err)
		return nil, err
	}

	rateTable, err := surface.BuildRateTable(rates, s.cfg.EarliestDate, today)
	if err != nil {
		s.failBuild(ctx, started, err)
		return nil, err
	}
	dividendSeries, err := surface.BuildDividendSeries(dividends, s.cfg.EarliestDate, today)
	if err != nil {
		s.failBuild(ctx, started, err)
		return nil, err
	}

	snap := &surface.Snapshot{
		Rates:     rateTable,
		Dividends: dividendSeries,
		BuiltAt:   s.now(),
	}
	s.holder.Swap(snap)

	elapsed := s.now().Sub(started)
	metrics.IncBuild("ok")
	metrics.BuildDuration.Observe(elapsed.Seconds())
	metrics.SetLastBuild(snap.BuiltAt, rateTable.Rows())

	s.logger.Info("surface.rebuilt",
		zap.Time("first_date", rateTable.FirstDate()),
		zap.Time("last_date", rateTable.LastDate()),
		zap.Int("rows", rateTable.Rows()),
		zap.Ints("durations", rateTable.Durations()),
		zap.Duration("elapsed", elapsed))

	s.archive(ctx, rates, dividends, snap, started)
	s.publish(ctx, snap, elapsed)

	// The transient source series go out of scope here; only the dense grid
	// survives, which bounds peak memory for multi-decade ranges.
	return snap, nil
}

// providerConfig resolves provider settings from secrets, falling back to
// environment defaults (FRED needs no credentials).
func (s *Service) providerConfig(ctx context.Context) *ProviderConfig {
	if s.resolver != nil {
		cfg, err := s.resolver.Resolve(ctx)
		if err == nil {
			return cfg
		}
		s.logger.Warn("service.provider_secret_unavailable, using env defaults", zap.Error(err))
	}
	return &ProviderConfig{
		FREDBaseURL:     s.cfg.FREDBaseURL,
		DividendBaseURL: s.cfg.DividendBaseURL,
	}
}

func (s *Service) failBuild(ctx context.Context, started time.Time, buildErr error) {
	metrics.IncBuild("error")
	metrics.IncError("builder", "rebuild_failed")
	s.logger.Error("surface.rebuild_failed", zap.Error(buildErr))

	if s.archiver == nil {
		return
	}
	audit := model.BuildAudit{
		ID:         uuid.New(),
		StartedAt:  started,
		FinishedAt: s.now(),
		Outcome:    "failed",
		Detail:     buildErr.Error(),
	}
	if err := s.archiver.RecordBuild(ctx, audit); err != nil {
		s.logger.Warn("service.audit_write_failed", zap.Error(err))
	}
}

func (s *Service) archive(ctx context.Context, rates map[int]model.SourceSeries, dividends model.SourceSeries, snap *surface.Snapshot, started time.Time) {
	if s.archiver == nil {
		return
	}

	for _, series := range rates {
		if err := s.archiver.ArchiveObservations(ctx, series); err != nil {
			metrics.IncError("store", "archive_failed")
			s.logger.Warn("service.archive_failed",
				zap.String("series", series.Series),
				zap.Error(err))
		}
	}
	if err := s.archiver.ArchiveObservations(ctx, dividends); err != nil {
		metrics.IncError("store", "archive_failed")
		s.logger.Warn("service.archive_failed",
			zap.String("series", dividends.Series),
			zap.Error(err))
	}

	audit := model.BuildAudit{
		ID:         uuid.New(),
		FirstDate:  snap.Rates.FirstDate(),
		LastDate:   snap.Rates.LastDate(),
		Rows:       snap.Rates.Rows(),
		Durations:  snap.Rates.Durations(),
		StartedAt:  started,
		FinishedAt: snap.BuiltAt,
		Outcome:    "ok",
	}
	if err := s.archiver.RecordBuild(ctx, audit); err != nil {
		s.logger.Warn("service.audit_write_failed", zap.Error(err))
	}
}

func (s *Service) publish(ctx context.Context, snap *surface.Snapshot, elapsed time.Duration) {
	if s.pub == nil {
		return
	}

	evt := model.SurfaceRebuiltEvent{
		SurfaceID:     uuid.New(),
		FirstDate:     snap.Rates.FirstDate(),
		LastDate:      snap.Rates.LastDate(),
		Rows:          snap.Rates.Rows(),
		Series:        seriesNames(),
		Samples:       sampleRates(snap.Rates),
		DividendFirst: snap.Dividends.FirstDate(),
		BuildElapsed:  elapsed.String(),
		BuiltAt:       snap.BuiltAt,
	}
	if err := s.pub.PublishSurfaceRebuilt(ctx, evt); err != nil {
		metrics.IncError("publisher", "publish_failed")
		s.logger.Warn("service.publish_failed", zap.Error(err))
	}
}

// sampleRates reads the freshest rate per source duration for event consumers.
func sampleRates(t *surface.RateTable) []model.RateSample {
	durations := t.Durations()
	samples := make([]model.RateSample, 0, len(durations))
	for _, d := range durations {
		r, err := t.RiskFreeRate(t.LastDate(), d)
		if err != nil {
			continue
		}
		samples = append(samples, model.RateSample{
			Duration: d,
			Rate:     decimal.NewFromFloat(r).Round(6),
		})
	}
	return samples
}

func seriesNames() []string {
	durations := make([]int, 0, len(RateSeries))
	for d := range RateSeries {
		durations = append(durations, d)
	}
	sort.Ints(durations)

	names := make([]string, 0, len(durations)+1)
	for _, d := range durations {
		names = append(names, RateSeries[d])
	}
	names = append(names, DividendSeriesName)
	return names
}
