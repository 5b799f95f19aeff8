package surface

import (
	"fmt"
	"math"
)

// grid is a dense date × duration table. Every cell starts as NaN ("unknown")
// and must hold a concrete float once interpolation has run. Rows are calendar
// days including weekends and holidays; column 0 is unused by convention.
type grid struct {
	rows, cols int
	cells      [][]float64
}

func newGrid(rows, cols int) (*grid, error) {
	if rows <= 0 {
		return nil, fmt.Errorf("grid: non-positive row count %d", rows)
	}
	if cols <= 0 {
		return nil, fmt.Errorf("grid: non-positive column count %d", cols)
	}

	// One backing array keeps the table contiguous.
	backing := make([]float64, rows*cols)
	for i := range backing {
		backing[i] = math.NaN()
	}
	cells := make([][]float64, rows)
	for r := range cells {
		cells[r] = backing[r*cols : (r+1)*cols : (r+1)*cols]
	}
	return &grid{rows: rows, cols: cols, cells: cells}, nil
}
