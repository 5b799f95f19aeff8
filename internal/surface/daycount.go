package surface

import "math"

// continuousRate converts a simple Act/360 annualized rate, quoted in percent
// as the provider publishes it, into a continuously-compounded Act/365
// annualized rate, also in percent:
//
//	r' = (360/d) * ln(1 + r*d/365)
//
// This rescales a money-market simple-interest quote into the compounding
// convention option-pricing formulas expect. A zero rate maps to zero.
func continuousRate(simplePct float64, duration int) float64 {
	d := float64(duration)
	return (360.0 / d) * math.Log(1.0+(simplePct/100.0)*d/365.0) * 100.0
}
