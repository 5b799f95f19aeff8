package surface

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContinuousRate(t *testing.T) {
	tests := []struct {
		name     string
		rate     float64
		duration int
	}{
		{"30 day", 5.25, 30},
		{"90 day", 4.8, 90},
		{"overnight", 6.0, 1},
		{"full year", 3.5, 360},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := float64(tt.duration)
			want := (360.0 / d) * math.Log(1.0+(tt.rate/100.0)*d/365.0) * 100.0
			assert.InDelta(t, want, continuousRate(tt.rate, tt.duration), 1e-12)
		})
	}
}

func TestContinuousRate_ZeroIsFixedPoint(t *testing.T) {
	// ln(1) = 0, so a zero quote converts to a zero rate at every duration.
	for _, d := range []int{1, 7, 30, 60, 90, 180, 360} {
		assert.Zero(t, continuousRate(0, d), "duration %d", d)
	}
}

func TestContinuousRate_BelowSimpleQuote(t *testing.T) {
	// Continuous compounding over Act/365 always quotes below the Act/360
	// simple rate for positive rates.
	for _, d := range []int{7, 30, 90, 180, 360} {
		out := continuousRate(5.0, d)
		assert.Less(t, out, 5.0, "duration %d", d)
		assert.Greater(t, out, 0.0, "duration %d", d)
	}
}
