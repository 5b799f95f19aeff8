package surface

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nan() float64 { return math.NaN() }

func TestFillGaps(t *testing.T) {
	tests := []struct {
		name     string
		in       []float64
		expected []float64
	}{
		{
			name:     "no gaps unchanged",
			in:       []float64{1, 2, 3},
			expected: []float64{1, 2, 3},
		},
		{
			name:     "leading gap filled flat",
			in:       []float64{nan(), nan(), 5.0, 6.0},
			expected: []float64{5.0, 5.0, 5.0, 6.0},
		},
		{
			name:     "trailing gap filled flat",
			in:       []float64{4.0, 5.0, nan(), nan()},
			expected: []float64{4.0, 5.0, 5.0, 5.0},
		},
		{
			name:     "interior run interpolated linearly",
			in:       []float64{1.0, nan(), nan(), nan(), 5.0},
			expected: []float64{1.0, 2.0, 3.0, 4.0, 5.0},
		},
		{
			name:     "multiple interior runs",
			in:       []float64{0.0, nan(), 2.0, nan(), nan(), 8.0},
			expected: []float64{0.0, 1.0, 2.0, 4.0, 6.0, 8.0},
		},
		{
			name:     "single anchor fills everything flat",
			in:       []float64{nan(), nan(), 3.5, nan()},
			expected: []float64{3.5, 3.5, 3.5, 3.5},
		},
		{
			name:     "both boundary gaps around one interior run",
			in:       []float64{nan(), 1.0, nan(), 2.0, nan()},
			expected: []float64{1.0, 1.0, 1.5, 2.0, 2.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vals := make([]float64, len(tt.in))
			copy(vals, tt.in)
			require.NoError(t, fillGaps(vals))
			for i := range tt.expected {
				assert.InDelta(t, tt.expected[i], vals[i], 1e-12, "index %d", i)
			}
		})
	}
}

func TestFillGaps_NoAnchor(t *testing.T) {
	vals := []float64{nan(), nan(), nan()}
	err := fillGaps(vals)
	assert.ErrorIs(t, err, errNoAnchor)
}

func TestFillGaps_ExactAtAnchors(t *testing.T) {
	// Interpolation must reproduce the anchors bit-for-bit.
	vals := []float64{1.5, nan(), nan(), nan(), nan(), nan(), nan(), nan(), nan(), 1.6}
	require.NoError(t, fillGaps(vals))

	assert.Equal(t, 1.5, vals[0])
	assert.Equal(t, 1.6, vals[9])
	// value(k) = value(i) + (k-i)/(j-i) * (value(j)-value(i))
	for k := 1; k < 9; k++ {
		want := 1.5 + float64(k)/9.0*0.1
		assert.InDelta(t, want, vals[k], 1e-12, "index %d", k)
	}
}
