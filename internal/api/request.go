package api

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RateResponse is the reply to a risk-free-rate query. Rate is annualized,
// continuously compounded, in percent.
type RateResponse struct {
	Date     string  `json:"date"`
	Duration int     `json:"duration"`
	Rate     float64 `json:"rate"`
}

// YieldResponse is the reply to a dividend-yield query. Yield is annualized,
// in percent.
type YieldResponse struct {
	Date  string  `json:"date"`
	Yield float64 `json:"yield"`
}

// SurfaceInfoResponse describes the currently serving snapshot.
type SurfaceInfoResponse struct {
	FirstDate     string    `json:"first_date"`
	LastDate      string    `json:"last_date"`
	Rows          int       `json:"rows"`
	Durations     []int     `json:"durations"`
	DividendFirst string    `json:"dividend_first_date"`
	DividendLast  string    `json:"dividend_last_date"`
	BuiltAt       time.Time `json:"built_at"`
}

func parseDateParam(c *fiber.Ctx, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required (YYYY-MM-DD)", name)
	}
	date, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: expected YYYY-MM-DD", name, raw)
	}
	return date, nil
}

func parseDurationParam(c *fiber.Ctx) (int, error) {
	raw := c.Query("duration")
	if raw == "" {
		return 0, fmt.Errorf("duration is required (days)")
	}
	duration, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: expected integer days", raw)
	}
	return duration, nil
}
