package secrets

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clearbook-finance/rates-adapter/internal/fred"
	pkgsecrets "github.com/clearbook-finance/rates-adapter/pkg/secrets"
)

type stubProvider struct {
	values     map[string]string
	names      []string
	err        error
	calls      int
	lastPrefix string
}

func (p *stubProvider) GetSecret(_ context.Context, key string) (map[string]string, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.values, nil
}

func (p *stubProvider) ListSecrets(_ context.Context, prefix string) ([]string, error) {
	p.lastPrefix = prefix
	if p.err != nil {
		return nil, p.err
	}
	return p.names, nil
}

func newTestResolver(provider pkgsecrets.Provider) *Resolver {
	cache := pkgsecrets.NewCache[*fred.ProviderConfig](time.Minute)
	defaults := fred.ProviderConfig{
		FREDBaseURL:     "https://fred.stlouisfed.org",
		DividendBaseURL: "https://data.nasdaq.com",
	}
	return NewResolver(zap.NewNop(), provider, cache, "dev", defaults)
}

func TestResolve(t *testing.T) {
	provider := &stubProvider{values: map[string]string{
		"dividend_base_url": "https://mirror.example.com",
		"api_key":           "k-123",
	}}
	r := newTestResolver(provider)

	cfg, err := r.Resolve(context.Background())
	require.NoError(t, err)

	// Overrides applied, absent keys keep defaults.
	assert.Equal(t, "https://fred.stlouisfed.org", cfg.FREDBaseURL)
	assert.Equal(t, "https://mirror.example.com", cfg.DividendBaseURL)
	assert.Equal(t, "k-123", cfg.APIKey)
}

func TestResolve_CachesUntilBust(t *testing.T) {
	provider := &stubProvider{values: map[string]string{"api_key": "k-123"}}
	r := newTestResolver(provider)

	_, err := r.Resolve(context.Background())
	require.NoError(t, err)
	_, err = r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)

	r.Bust()
	_, err = r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
}

func TestDiscoverSecrets(t *testing.T) {
	provider := &stubProvider{names: []string{"dev/rates-adapter/datafeed"}}
	r := newTestResolver(provider)

	names, err := r.DiscoverSecrets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"dev/rates-adapter/datafeed"}, names)
	assert.Equal(t, "dev/rates-adapter", provider.lastPrefix)
}

func TestDiscoverSecrets_ProviderError(t *testing.T) {
	provider := &stubProvider{err: assert.AnError}
	r := newTestResolver(provider)

	_, err := r.DiscoverSecrets(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestResolve_ProviderError(t *testing.T) {
	provider := &stubProvider{err: assert.AnError}
	r := newTestResolver(provider)

	_, err := r.Resolve(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}
