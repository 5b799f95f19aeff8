package surface

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is returned by queries for dates outside the constructed
	// table or durations outside [1, 360]. The table never extrapolates past
	// its construction-time boundaries.
	ErrOutOfRange = errors.New("query out of range")

	// ErrInvalidEarliestDate is returned when the caller's earliest date
	// precedes the historical floor or lies in the future.
	ErrInvalidEarliestDate = errors.New("invalid earliest date")
)

// AllDataMissingError indicates a source series produced zero usable
// observations inside the target date range. There is no interpolation anchor,
// so construction aborts; this usually signals a provider outage.
type AllDataMissingError struct {
	Series string
}

func (e *AllDataMissingError) Error() string {
	return fmt.Sprintf("series %s: no usable observations in range", e.Series)
}
