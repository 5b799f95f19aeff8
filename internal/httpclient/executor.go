package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/clearbook-finance/rates-adapter/internal/rate"
	"github.com/clearbook-finance/rates-adapter/pkg/utils"
)

// Backoff returns the retry sleep duration for the given attempt number.
func Backoff(attempt int) time.Duration {
	switch attempt {
	case 0:
		return 100 * time.Millisecond
	case 1:
		return 250 * time.Millisecond
	default:
		return 500 * time.Millisecond
	}
}

// Executor handles rate-limited, retrying HTTP execution for plain-text
// bodies (the data providers serve CSV, not JSON).
type Executor struct {
	logger       *zap.Logger
	rateMgr      *rate.Manager
	http         *http.Client
	retryMax     int
	providerTag  string
	errorHandler func(status int, body []byte) error
}

// New creates an Executor. errorHandler is called on 4xx failure responses to
// produce a provider-specific error. If nil, a default error is returned.
func New(
	logger *zap.Logger,
	rateMgr *rate.Manager,
	httpClient *http.Client,
	retryMax int,
	providerTag string,
	errorHandler func(status int, body []byte) error,
) *Executor {
	return &Executor{
		logger:       logger,
		rateMgr:      rateMgr,
		http:         httpClient,
		retryMax:     retryMax,
		providerTag:  providerTag,
		errorHandler: errorHandler,
	}
}

// DoText executes req with rate limiting and retries and returns the raw
// response body. rateLimitKey scopes the rate limiter per provider.
func (e *Executor) DoText(ctx context.Context, req *http.Request, rateLimitKey string) ([]byte, error) {
	if e.rateMgr != nil {
		if err := e.rateMgr.Wait(ctx, rateLimitKey); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= e.retryMax; attempt++ {
		start := time.Now()
		resp, err := e.http.Do(req)
		if err != nil {
			lastErr = err
			e.logger.Warn(e.providerTag+".http_failed",
				zap.String("url", utils.MaskAPIKey(req.URL.String())),
				zap.Error(err),
				zap.Int("attempt", attempt))
			time.Sleep(Backoff(attempt))
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		elapsed := time.Since(start)
		if readErr != nil {
			lastErr = readErr
			e.logger.Warn(e.providerTag+".read_failed",
				zap.String("url", utils.MaskAPIKey(req.URL.String())),
				zap.Error(readErr),
				zap.Int("attempt", attempt))
			time.Sleep(Backoff(attempt))
			continue
		}

		if resp.StatusCode >= 500 {
			e.logger.Warn(e.providerTag+".server_error",
				zap.Int("status", resp.StatusCode),
				zap.String("url", utils.MaskAPIKey(req.URL.String())),
				zap.Duration("latency", elapsed))
			lastErr = fmt.Errorf("%s server error: %d", e.providerTag, resp.StatusCode)
			time.Sleep(Backoff(attempt))
			continue
		}

		if resp.StatusCode >= 400 {
			if e.errorHandler != nil {
				return nil, e.errorHandler(resp.StatusCode, body)
			}
			return nil, fmt.Errorf("%s returned %d", e.providerTag, resp.StatusCode)
		}

		e.logger.Debug(e.providerTag+".http_success",
			zap.String("url", utils.MaskAPIKey(req.URL.String())),
			zap.Int("status", resp.StatusCode),
			zap.Int("bytes", len(body)),
			zap.Duration("elapsed", elapsed))

		return body, nil
	}

	return nil, fmt.Errorf("%s request failed after %d attempts: %w", e.providerTag, e.retryMax+1, lastErr)
}
