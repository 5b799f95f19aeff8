package surface

import (
	"errors"
	"math"
)

// errNoAnchor is returned by fillGaps for a lane with no known value at all.
var errNoAnchor = errors.New("no known value to interpolate from")

// fillGaps replaces every NaN in vals, in place. Leading and trailing gaps are
// filled flat from the nearest known value: outside the observed range we hold
// the boundary rate constant rather than project a trend. Each maximal interior
// run of NaNs bounded by known values at i and j is overwritten with
//
//	vals[k] = vals[i] + (k-i)/(j-i) * (vals[j]-vals[i])
//
// which is exact at both anchors. The same routine serves date columns,
// duration rows, and the 1-D dividend series.
func fillGaps(vals []float64) error {
	first, last := -1, -1
	for i, v := range vals {
		if !math.IsNaN(v) {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return errNoAnchor
	}

	for i := 0; i < first; i++ {
		vals[i] = vals[first]
	}
	for i := last + 1; i < len(vals); i++ {
		vals[i] = vals[last]
	}

	i := first
	for i < last {
		j := i + 1
		for math.IsNaN(vals[j]) {
			j++
		}
		for k := i + 1; k < j; k++ {
			vals[k] = vals[i] + float64(k-i)/float64(j-i)*(vals[j]-vals[i])
		}
		i = j
	}
	return nil
}
