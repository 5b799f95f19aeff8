package fred

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/clearbook-finance/rates-adapter/pkg/model"
)

// missingSentinel is how the provider marks "no observation that day".
// It maps to an explicit missing Observation, never to zero.
const missingSentinel = "."

const dateLayout = "2006-01-02"

// MalformedSeriesError reports an unparseable row in a provider series. The
// whole construction aborts on it: a rate table built from a series with an
// unverified gap is unsafe for pricing use, so there is no partial recovery.
type MalformedSeriesError struct {
	Series string
	Line   string
	Err    error
}

func (e *MalformedSeriesError) Error() string {
	return fmt.Sprintf("series %s: malformed row %q: %v", e.Series, e.Line, e.Err)
}

func (e *MalformedSeriesError) Unwrap() error { return e.Err }

// ParseSeries turns raw two-column CSV (header line first, then one
// "date,value" row per line) into chronologically ordered observations.
// The provider's "." sentinel becomes an explicit missing value. Any row with
// a wrong field count, a bad date or a bad number fails the whole series.
func ParseSeries(series string, raw []byte) ([]model.Observation, error) {
	lines := strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, &MalformedSeriesError{Series: series, Line: "", Err: fmt.Errorf("empty response")}
	}

	obs := make([]model.Observation, 0, len(lines)-1)
	for _, line := range lines[1:] { // lines[0] is the header
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) != 2 {
			return nil, &MalformedSeriesError{Series: series, Line: line,
				Err: fmt.Errorf("expected 2 fields, got %d", len(fields))}
		}

		date, err := time.Parse(dateLayout, strings.TrimSpace(fields[0]))
		if err != nil {
			return nil, &MalformedSeriesError{Series: series, Line: line, Err: err}
		}

		value := strings.TrimSpace(fields[1])
		if value == missingSentinel {
			obs = append(obs, model.Observation{Date: date, Missing: true})
			continue
		}

		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, &MalformedSeriesError{Series: series, Line: line, Err: err}
		}
		obs = append(obs, model.Observation{Date: date, Value: f})
	}

	// Some providers serve newest-first; the grid builder needs chronological order.
	sort.SliceStable(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })
	return obs, nil
}
