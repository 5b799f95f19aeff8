package surface

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearbook-finance/rates-adapter/pkg/model"
)

func TestHolder_EmptyUntilFirstSwap(t *testing.T) {
	var h Holder
	_, ok := h.Current()
	assert.False(t, ok)
}

func TestHolder_SwapReplacesSnapshot(t *testing.T) {
	series := map[int]model.SourceSeries{
		1:   srs("ON", 1, obs(jan(1), 1.0)),
		360: srs("12M", 360, obs(jan(1), 2.0)),
	}

	older, err := BuildRateTable(series, jan(1), jan(5))
	require.NoError(t, err)
	newer, err := BuildRateTable(series, jan(1), jan(10))
	require.NoError(t, err)

	var h Holder
	h.Swap(&Snapshot{Rates: older, BuiltAt: time.Now()})

	cur, ok := h.Current()
	require.True(t, ok)
	assert.Equal(t, jan(5), cur.Rates.LastDate())

	h.Swap(&Snapshot{Rates: newer, BuiltAt: time.Now()})
	cur, ok = h.Current()
	require.True(t, ok)
	assert.Equal(t, jan(10), cur.Rates.LastDate())
}
