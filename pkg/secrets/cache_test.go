package secrets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	APIKey  string
	BaseURL string
}

func TestCache_PutGet(t *testing.T) {
	c := NewCache[testConfig](time.Minute)

	c.Put("fred", testConfig{APIKey: "abc", BaseURL: "https://fred.stlouisfed.org"})

	got, ok := c.Get("fred")
	require.True(t, ok)
	assert.Equal(t, "abc", got.APIKey)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	c := NewCache[string](10 * time.Millisecond)

	c.Put("k", "v")
	time.Sleep(25 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok, "entry should have expired")
}

func TestCache_Bust(t *testing.T) {
	c := NewCache[string](time.Minute)

	c.Put("k", "v")
	c.Bust("k")

	_, ok := c.Get("k")
	assert.False(t, ok)
}
