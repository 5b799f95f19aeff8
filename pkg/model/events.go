package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Envelope is the canonical event envelope.
// All messages published to NATS follow this format.
type Envelope struct {
	ID            uuid.UUID       `json:"id"`
	CorrelationID uuid.UUID       `json:"correlation_id"`
	Service       string          `json:"service"`
	Topic         string          `json:"topic"`
	EventType     string          `json:"event_type"`
	Version       string          `json:"version"`
	Timestamp     time.Time       `json:"timestamp"`
	Payload       json.RawMessage `json:"payload"`
}

// RateSample is a single (duration, rate) point included in rebuild events so
// consumers can sanity-check a new surface without querying it.
type RateSample struct {
	Duration int             `json:"duration"`
	Rate     decimal.Decimal `json:"rate"`
}

// SurfaceRebuiltEvent announces that a new rate surface replaced the previous
// one. Samples are taken at the surface's last date across the source durations.
type SurfaceRebuiltEvent struct {
	SurfaceID     uuid.UUID    `json:"surface_id"`
	FirstDate     time.Time    `json:"first_date"`
	LastDate      time.Time    `json:"last_date"`
	Rows          int          `json:"rows"`
	Series        []string     `json:"series"`
	Samples       []RateSample `json:"samples,omitempty"`
	DividendFirst time.Time    `json:"dividend_first_date"`
	BuildElapsed  string       `json:"build_elapsed"`
	BuiltAt       time.Time    `json:"built_at"`
}

// BuildAudit is the persisted record of one surface construction, written to
// Postgres for operational traceability.
type BuildAudit struct {
	ID         uuid.UUID `json:"id"`
	FirstDate  time.Time `json:"first_date"`
	LastDate   time.Time `json:"last_date"`
	Rows       int       `json:"rows"`
	Durations  []int     `json:"durations"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Outcome    string    `json:"outcome"` // ok | failed
	Detail     string    `json:"detail,omitempty"`
}
