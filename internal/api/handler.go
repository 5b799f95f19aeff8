package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/clearbook-finance/rates-adapter/internal/metrics"
	"github.com/clearbook-finance/rates-adapter/internal/surface"
	"github.com/clearbook-finance/rates-adapter/pkg/model"
)

// SnapshotSource yields the currently serving surface snapshot.
type SnapshotSource interface {
	Current() (*surface.Snapshot, bool)
}

// Rebuilder triggers an on-demand surface rebuild.
type Rebuilder interface {
	Rebuild(ctx context.Context) (*surface.Snapshot, error)
}

// BuildAuditSource lists recent build audit rows.
type BuildAuditSource interface {
	ListBuilds(ctx context.Context, limit int) ([]model.BuildAudit, error)
}

// SurfaceHandler handles HTTP API requests for surface queries.
type SurfaceHandler struct {
	logger  *zap.Logger
	source  SnapshotSource
	service Rebuilder
	audits  BuildAuditSource
}

// NewSurfaceHandler creates a new SurfaceHandler.
// service and audits are optional; their endpoints return 503 when nil.
func NewSurfaceHandler(logger *zap.Logger, source SnapshotSource, service Rebuilder, audits BuildAuditSource) *SurfaceHandler {
	return &SurfaceHandler{
		logger:  logger,
		source:  source,
		service: service,
		audits:  audits,
	}
}

// RiskFreeRateHandler serves GET /api/v1/risk-free-rate?date=&duration=.
func (h *SurfaceHandler) RiskFreeRateHandler(c *fiber.Ctx) error {
	snap, ok := h.source.Current()
	if !ok {
		metrics.IncQuery("risk_free_rate", "unavailable")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "surface not built yet"})
	}

	date, err := parseDateParam(c, "date")
	if err != nil {
		metrics.IncQuery("risk_free_rate", "bad_request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	duration, err := parseDurationParam(c)
	if err != nil {
		metrics.IncQuery("risk_free_rate", "bad_request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	rate, err := snap.Rates.RiskFreeRate(date, duration)
	if err != nil {
		if errors.Is(err, surface.ErrOutOfRange) {
			metrics.IncQuery("risk_free_rate", "out_of_range")
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		h.logger.Error("api.risk_free_rate.failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	metrics.IncQuery("risk_free_rate", "ok")
	return c.JSON(RateResponse{
		Date:     date.Format(time.DateOnly),
		Duration: duration,
		Rate:     rate,
	})
}

// DividendYieldHandler serves GET /api/v1/dividend-yield?date=.
func (h *SurfaceHandler) DividendYieldHandler(c *fiber.Ctx) error {
	snap, ok := h.source.Current()
	if !ok {
		metrics.IncQuery("dividend_yield", "unavailable")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "surface not built yet"})
	}

	date, err := parseDateParam(c, "date")
	if err != nil {
		metrics.IncQuery("dividend_yield", "bad_request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	yield, err := snap.Dividends.DividendYield(date)
	if err != nil {
		if errors.Is(err, surface.ErrOutOfRange) {
			metrics.IncQuery("dividend_yield", "out_of_range")
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		h.logger.Error("api.dividend_yield.failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	metrics.IncQuery("dividend_yield", "ok")
	return c.JSON(YieldResponse{
		Date:  date.Format(time.DateOnly),
		Yield: yield,
	})
}

// SurfaceInfoHandler serves GET /api/v1/surface with snapshot metadata.
func (h *SurfaceHandler) SurfaceInfoHandler(c *fiber.Ctx) error {
	snap, ok := h.source.Current()
	if !ok {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "surface not built yet"})
	}

	return c.JSON(SurfaceInfoResponse{
		FirstDate:     snap.Rates.FirstDate().Format(time.DateOnly),
		LastDate:      snap.Rates.LastDate().Format(time.DateOnly),
		Rows:          snap.Rates.Rows(),
		Durations:     snap.Rates.Durations(),
		DividendFirst: snap.Dividends.FirstDate().Format(time.DateOnly),
		DividendLast:  snap.Dividends.LastDate().Format(time.DateOnly),
		BuiltAt:       snap.BuiltAt,
	})
}

// BuildsHandler serves GET /api/v1/builds with the most recent build audit
// rows, newest first.
func (h *SurfaceHandler) BuildsHandler(c *fiber.Ctx) error {
	if h.audits == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "build audit unavailable"})
	}

	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be in [1, 100]"})
	}

	builds, err := h.audits.ListBuilds(c.Context(), limit)
	if err != nil {
		h.logger.Error("api.builds.failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"builds": builds})
}

// RebuildHandler serves POST /api/v1/rebuild for on-demand rebuilds.
func (h *SurfaceHandler) RebuildHandler(c *fiber.Ctx) error {
	if h.service == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "rebuild service unavailable"})
	}

	snap, err := h.service.Rebuild(c.Context())
	if err != nil {
		h.logger.Error("api.rebuild.failed", zap.Error(err))
		if errors.Is(err, surface.ErrInvalidEarliestDate) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(SurfaceInfoResponse{
		FirstDate:     snap.Rates.FirstDate().Format(time.DateOnly),
		LastDate:      snap.Rates.LastDate().Format(time.DateOnly),
		Rows:          snap.Rates.Rows(),
		Durations:     snap.Rates.Durations(),
		DividendFirst: snap.Dividends.FirstDate().Format(time.DateOnly),
		DividendLast:  snap.Dividends.LastDate().Format(time.DateOnly),
		BuiltAt:       snap.BuiltAt,
	})
}
