package fred

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/clearbook-finance/rates-adapter/internal/httpclient"
	"github.com/clearbook-finance/rates-adapter/internal/rate"
	"github.com/clearbook-finance/rates-adapter/pkg/utils"
)

// Client wraps low-level HTTP communication with the data providers.
// Configuration (base URLs, API key) is supplied per request so a rebuild can
// pick up rotated credentials without restarting.
type Client struct {
	logger *zap.Logger
	exec   *httpclient.Executor
}

// NewClient constructs a provider HTTP client.
func NewClient(logger *zap.Logger, rateMgr *rate.Manager) *Client {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	exec := httpclient.New(logger, rateMgr, httpClient, 2, "datafeed", func(status int, body []byte) error {
		logger.Warn("datafeed.client_error",
			zap.Int("status", status),
			zap.String("body", string(body)))
		return fmt.Errorf("provider returned %d: %s", status, body)
	})
	return &Client{
		logger: logger,
		exec:   exec,
	}
}

// FetchRateSeriesCSV downloads one FRED rate series as CSV.
// GET {base}/graph/fredgraph.csv?id={series}
func (c *Client) FetchRateSeriesCSV(ctx context.Context, cfg *ProviderConfig, seriesID string) ([]byte, error) {
	u := fmt.Sprintf("%s/graph/fredgraph.csv?id=%s", cfg.FREDBaseURL, url.QueryEscape(seriesID))
	return c.getCSV(ctx, u, "fred")
}

// FetchDividendCSV downloads the monthly dividend-yield dataset as CSV.
// GET {base}/api/v3/datasets/{code}.csv?order=asc[&api_key=...]
func (c *Client) FetchDividendCSV(ctx context.Context, cfg *ProviderConfig) ([]byte, error) {
	u := fmt.Sprintf("%s/api/v3/datasets/%s.csv?order=asc", cfg.DividendBaseURL, DividendSeriesCode)
	if cfg.APIKey != "" {
		u += "&api_key=" + url.QueryEscape(cfg.APIKey)
	}
	c.logger.Debug("datafeed.dividend_fetch", zap.String("url", utils.MaskAPIKey(u)))
	return c.getCSV(ctx, u, "dividends")
}

func (c *Client) getCSV(ctx context.Context, u, rateLimitKey string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/csv")

	return c.exec.DoText(ctx, req, rateLimitKey)
}
