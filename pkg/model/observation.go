package model

import "time"

// Observation is one row of a provider series: a calendar date and either a
// published value or an explicit "no observation that day" marker. Missing is
// never collapsed to zero; downstream interpolation decides what a gap means.
type Observation struct {
	Date    time.Time `json:"date"`
	Value   float64   `json:"value"`
	Missing bool      `json:"missing,omitempty"`
}

// SourceSeries pairs a provider series identifier with its parsed observations.
// For rate series the Duration key is the money-market term in days; the
// dividend series carries Duration 0.
type SourceSeries struct {
	Series   string        `json:"series"`
	Duration int           `json:"duration"`
	Obs      []Observation `json:"obs"`
}
