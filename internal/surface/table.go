// Package surface builds dense, randomly-indexable rate and dividend tables
// out of sparse provider series. Construction scatters each series into a
// NaN-initialized grid, fills date gaps per column (flat at the boundaries,
// linear inside), fills duration gaps per row, then rewrites every cell from a
// simple Act/360 quote into a continuously-compounded Act/365 rate. The result
// is immutable and safe for concurrent reads.
package surface

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/clearbook-finance/rates-adapter/pkg/model"
)

// Duration bounds of the rate table's second axis, in days.
const (
	MinDuration = 1
	MaxDuration = 360
)

// EarliestSupportedDate is the historical floor for caller-supplied earliest
// dates: the first USD LIBOR fixing published on FRED.
var EarliestSupportedDate = time.Date(1986, time.January, 2, 0, 0, 0, 0, time.UTC)

// RateTable is a dense risk-free-rate surface indexed by calendar date and
// loan duration. Immutable after construction.
type RateTable struct {
	first, last time.Time
	durations   []int // source durations, ascending
	g           *grid
}

// BuildRateTable constructs the full surface from per-duration source series.
// The series map must include durations 1 and 360; they anchor the duration
// axis. The valid range starts at the later of earliest and every series' own
// first date (the table must not claim data older than any contributing
// series) and ends at today.
func BuildRateTable(series map[int]model.SourceSeries, earliest, today time.Time) (*RateTable, error) {
	earliest, today = Day(earliest), Day(today)
	if err := validateEarliest(earliest, today); err != nil {
		return nil, err
	}
	for _, d := range []int{MinDuration, MaxDuration} {
		if _, ok := series[d]; !ok {
			return nil, fmt.Errorf("rate table: missing anchor series for duration %d", d)
		}
	}

	first := earliest
	for _, s := range series {
		if len(s.Obs) == 0 {
			return nil, &AllDataMissingError{Series: s.Series}
		}
		if start := Day(s.Obs[0].Date); start.After(first) {
			first = start
		}
	}

	t, err := buildRawTable(series, first, today)
	if err != nil {
		return nil, err
	}
	t.convertDayCount()
	return t, nil
}

// buildRawTable materializes and interpolates the grid without the day-count
// conversion. Raw cells hold the provider's simple Act/360 percent quotes.
func buildRawTable(series map[int]model.SourceSeries, first, last time.Time) (*RateTable, error) {
	rows := daysInclusive(first, last)
	g, err := newGrid(rows, MaxDuration+1)
	if err != nil {
		return nil, err
	}

	durations := make([]int, 0, len(series))
	for d := range series {
		durations = append(durations, d)
	}
	sort.Ints(durations)

	// Column pass: one independent lane per source duration. Observations
	// outside [first, last] are discarded, not clamped.
	col := make([]float64, rows)
	for _, d := range durations {
		s := series[d]
		for i := range col {
			col[i] = math.NaN()
		}
		wrote := false
		for _, o := range s.Obs {
			if o.Missing {
				continue
			}
			date := Day(o.Date)
			if date.Before(first) || date.After(last) {
				continue
			}
			col[dayIndex(first, date)] = o.Value
			wrote = true
		}
		if !wrote {
			return nil, &AllDataMissingError{Series: s.Series}
		}
		if err := fillGaps(col); err != nil {
			return nil, fmt.Errorf("series %s: %w", s.Series, err)
		}
		for r := 0; r < rows; r++ {
			g.cells[r][d] = col[r]
		}
	}

	// Row pass: fill the durations no source series covers, anchored by the
	// guaranteed columns at 1 and 360.
	for r := 0; r < rows; r++ {
		row := g.cells[r]
		if math.IsNaN(row[MinDuration]) || math.IsNaN(row[MaxDuration]) {
			return nil, fmt.Errorf("rate table: row %d lost its duration anchors", r)
		}
		if err := fillGaps(row[MinDuration : MaxDuration+1]); err != nil {
			return nil, fmt.Errorf("rate table: row %d: %w", r, err)
		}
	}

	return &RateTable{first: first, last: last, durations: durations, g: g}, nil
}

// convertDayCount rewrites every cell in place, once, after all interpolation.
// Interpolation runs on raw quotes by contract; converting first would change
// the interpolated values because the transform is nonlinear in duration.
func (t *RateTable) convertDayCount() {
	for r := 0; r < t.g.rows; r++ {
		row := t.g.cells[r]
		for d := MinDuration; d <= MaxDuration; d++ {
			row[d] = continuousRate(row[d], d)
		}
	}
}

// RiskFreeRate returns the annualized continuously-compounded rate, in
// percent, for the given date and duration in days. O(1).
func (t *RateTable) RiskFreeRate(date time.Time, duration int) (float64, error) {
	if duration < MinDuration || duration > MaxDuration {
		return 0, fmt.Errorf("%w: duration %d", ErrOutOfRange, duration)
	}
	d := Day(date)
	if d.Before(t.first) || d.After(t.last) {
		return 0, fmt.Errorf("%w: date %s outside [%s, %s]", ErrOutOfRange,
			d.Format(time.DateOnly), t.first.Format(time.DateOnly), t.last.Format(time.DateOnly))
	}
	return t.g.cells[dayIndex(t.first, d)][duration], nil
}

// FirstDate returns the first queryable date.
func (t *RateTable) FirstDate() time.Time { return t.first }

// LastDate returns the last queryable date.
func (t *RateTable) LastDate() time.Time { return t.last }

// Rows returns the number of calendar days covered, endpoints included.
func (t *RateTable) Rows() int { return t.g.rows }

// Durations returns the source durations that anchored the table, ascending.
func (t *RateTable) Durations() []int {
	out := make([]int, len(t.durations))
	copy(out, t.durations)
	return out
}

// DividendSeries is a dense dividend-yield series indexed by calendar date.
// Immutable after construction.
type DividendSeries struct {
	first, last time.Time
	vals        []float64
}

// BuildDividendSeries constructs the dense series from one monthly source.
// Observations before earliest are discarded; the series starts at the first
// usable observation on or after it and runs through today. Same gap policy as
// the rate columns; no day-count conversion applies.
func BuildDividendSeries(s model.SourceSeries, earliest, today time.Time) (*DividendSeries, error) {
	earliest, today = Day(earliest), Day(today)
	if err := validateEarliest(earliest, today); err != nil {
		return nil, err
	}

	var first time.Time
	for _, o := range s.Obs {
		if o.Missing {
			continue
		}
		date := Day(o.Date)
		if date.Before(earliest) || date.After(today) {
			continue
		}
		first = date
		break
	}
	if first.IsZero() {
		return nil, &AllDataMissingError{Series: s.Series}
	}

	vals := make([]float64, daysInclusive(first, today))
	for i := range vals {
		vals[i] = math.NaN()
	}
	for _, o := range s.Obs {
		if o.Missing {
			continue
		}
		date := Day(o.Date)
		if date.Before(first) || date.After(today) {
			continue
		}
		vals[dayIndex(first, date)] = o.Value
	}
	if err := fillGaps(vals); err != nil {
		return nil, fmt.Errorf("series %s: %w", s.Series, err)
	}

	return &DividendSeries{first: first, last: today, vals: vals}, nil
}

// DividendYield returns the annualized dividend yield, in percent, for the
// given date. O(1).
func (d *DividendSeries) DividendYield(date time.Time) (float64, error) {
	day := Day(date)
	if day.Before(d.first) || day.After(d.last) {
		return 0, fmt.Errorf("%w: date %s outside [%s, %s]", ErrOutOfRange,
			day.Format(time.DateOnly), d.first.Format(time.DateOnly), d.last.Format(time.DateOnly))
	}
	return d.vals[dayIndex(d.first, day)], nil
}

// FirstDate returns the first queryable date.
func (d *DividendSeries) FirstDate() time.Time { return d.first }

// LastDate returns the last queryable date.
func (d *DividendSeries) LastDate() time.Time { return d.last }

func validateEarliest(earliest, today time.Time) error {
	if earliest.Before(EarliestSupportedDate) {
		return fmt.Errorf("%w: %s precedes floor %s", ErrInvalidEarliestDate,
			earliest.Format(time.DateOnly), EarliestSupportedDate.Format(time.DateOnly))
	}
	if earliest.After(today) {
		return fmt.Errorf("%w: %s is in the future", ErrInvalidEarliestDate,
			earliest.Format(time.DateOnly))
	}
	return nil
}
