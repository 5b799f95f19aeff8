package surface

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrid(t *testing.T) {
	g, err := newGrid(3, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, g.rows)
	assert.Equal(t, 5, g.cols)

	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			assert.True(t, math.IsNaN(g.cells[r][c]), "cell (%d,%d) must start unknown", r, c)
		}
	}
}

func TestNewGrid_RejectsNonPositiveDimensions(t *testing.T) {
	_, err := newGrid(0, 5)
	assert.Error(t, err)

	_, err = newGrid(-2, 5)
	assert.Error(t, err)

	_, err = newGrid(3, 0)
	assert.Error(t, err)
}
