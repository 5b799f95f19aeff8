package fred

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/clearbook-finance/rates-adapter/internal/metrics"
	"github.com/clearbook-finance/rates-adapter/pkg/model"
)

// CSVCache caches raw provider CSV bodies between rebuilds so frequent
// refreshes don't hammer the providers. A nil cache disables caching.
type CSVCache interface {
	GetRawSeries(ctx context.Context, series string) ([]byte, error)
	CacheRawSeries(ctx context.Context, series string, body []byte, ttl time.Duration) error
}

// Fetcher fans the independent series fetches out onto one goroutine each and
// joins them before grid construction starts. Series are independent and
// order never matters; the first failure aborts the whole construction.
type Fetcher struct {
	logger *zap.Logger
	client *Client
	cache  CSVCache
	rawTTL time.Duration
}

// NewFetcher constructs a Fetcher. cache may be nil.
func NewFetcher(logger *zap.Logger, client *Client, cache CSVCache, rawTTL time.Duration) *Fetcher {
	return &Fetcher{
		logger: logger,
		client: client,
		cache:  cache,
		rawTTL: rawTTL,
	}
}

type fetchResult struct {
	duration int // 0 = dividend series
	series   model.SourceSeries
	err      error
}

// FetchAll retrieves and parses the seven rate series plus the dividend
// series concurrently. It returns rate series keyed by duration, then the
// dividend series.
func (f *Fetcher) FetchAll(ctx context.Context, cfg *ProviderConfig) (map[int]model.SourceSeries, model.SourceSeries, error) {
	results := make(chan fetchResult, len(RateSeries)+1)

	for duration, seriesID := range RateSeries {
		go func(duration int, seriesID string) {
			obs, err := f.fetchSeries(ctx, seriesID, func(ctx context.Context) ([]byte, error) {
				return f.client.FetchRateSeriesCSV(ctx, cfg, seriesID)
			})
			results <- fetchResult{
				duration: duration,
				series:   model.SourceSeries{Series: seriesID, Duration: duration, Obs: obs},
				err:      err,
			}
		}(duration, seriesID)
	}

	go func() {
		obs, err := f.fetchSeries(ctx, DividendSeriesName, func(ctx context.Context) ([]byte, error) {
			return f.client.FetchDividendCSV(ctx, cfg)
		})
		results <- fetchResult{
			series: model.SourceSeries{Series: DividendSeriesName, Obs: obs},
			err:    err,
		}
	}()

	rates := make(map[int]model.SourceSeries, len(RateSeries))
	var dividends model.SourceSeries
	var firstErr error
	for i := 0; i < len(RateSeries)+1; i++ {
		res := <-results
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		if res.duration == 0 {
			dividends = res.series
		} else {
			rates[res.duration] = res.series
		}
	}
	if firstErr != nil {
		return nil, model.SourceSeries{}, firstErr
	}
	return rates, dividends, nil
}

// fetchSeries pulls one series' CSV (cache first) and parses it.
func (f *Fetcher) fetchSeries(ctx context.Context, series string, fetch func(context.Context) ([]byte, error)) ([]model.Observation, error) {
	body, cached := f.cachedCSV(ctx, series)
	if !cached {
		start := time.Now()
		var err error
		body, err = fetch(ctx)
		metrics.ObserveDuration(metrics.SeriesFetchDuration, start, series)
		if err != nil {
			metrics.IncSeriesFetch(series, "error")
			return nil, fmt.Errorf("fetch series %s: %w", series, err)
		}
		metrics.IncSeriesFetch(series, "ok")

		if f.cache != nil {
			if err := f.cache.CacheRawSeries(ctx, series, body, f.rawTTL); err != nil {
				f.logger.Warn("fetcher.cache_write_failed",
					zap.String("series", series),
					zap.Error(err))
			}
		}
	}

	obs, err := ParseSeries(series, body)
	if err != nil {
		metrics.IncError("parser", "malformed_series")
		return nil, err
	}
	return obs, nil
}

func (f *Fetcher) cachedCSV(ctx context.Context, series string) ([]byte, bool) {
	if f.cache == nil {
		return nil, false
	}
	body, err := f.cache.GetRawSeries(ctx, series)
	if err != nil || len(body) == 0 {
		return nil, false
	}
	metrics.IncSeriesFetch(series, "cache_hit")
	f.logger.Debug("fetcher.cache_hit", zap.String("series", series))
	return body, true
}
