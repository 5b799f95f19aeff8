package secrets

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/clearbook-finance/rates-adapter/internal/fred"
	pkgsecrets "github.com/clearbook-finance/rates-adapter/pkg/secrets"
)

// Secret layout: one JSON map per environment under {env}/rates-adapter/datafeed,
// e.g. {"fred_base_url": "...", "dividend_base_url": "...", "api_key": "..."}.
// Absent keys fall back to the defaults supplied at construction.
const secretKeyFmt = "%s/rates-adapter/datafeed"

// Resolver resolves provider configuration from AWS Secrets Manager, cached
// with a TTL so every rebuild doesn't round-trip to AWS. Rotating the secret
// takes effect within one TTL without a restart.
type Resolver struct {
	logger   *zap.Logger
	provider pkgsecrets.Provider
	cache    *pkgsecrets.Cache[*fred.ProviderConfig]
	env      string
	key      string
	defaults fred.ProviderConfig
}

// NewResolver builds a Resolver for the given environment name.
func NewResolver(logger *zap.Logger, provider pkgsecrets.Provider, cache *pkgsecrets.Cache[*fred.ProviderConfig], env string, defaults fred.ProviderConfig) *Resolver {
	return &Resolver{
		logger:   logger,
		provider: provider,
		cache:    cache,
		env:      env,
		key:      fmt.Sprintf(secretKeyFmt, env),
		defaults: defaults,
	}
}

// DiscoverSecrets lists the secret names provisioned for this environment's
// adapter. Used at startup to confirm provisioning before the first resolve.
func (r *Resolver) DiscoverSecrets(ctx context.Context) ([]string, error) {
	prefix := fmt.Sprintf("%s/rates-adapter", r.env)
	names, err := r.provider.ListSecrets(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("discover secrets: %w", err)
	}
	return names, nil
}

// Resolve returns the provider configuration, preferring the cached copy.
func (r *Resolver) Resolve(ctx context.Context) (*fred.ProviderConfig, error) {
	if cfg, ok := r.cache.Get(r.key); ok {
		return cfg, nil
	}

	values, err := r.provider.GetSecret(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("resolve provider config: %w", err)
	}

	cfg := &fred.ProviderConfig{
		FREDBaseURL:     r.defaults.FREDBaseURL,
		DividendBaseURL: r.defaults.DividendBaseURL,
		APIKey:          r.defaults.APIKey,
	}
	if v := values["fred_base_url"]; v != "" {
		cfg.FREDBaseURL = v
	}
	if v := values["dividend_base_url"]; v != "" {
		cfg.DividendBaseURL = v
	}
	if v := values["api_key"]; v != "" {
		cfg.APIKey = v
	}

	r.cache.Put(r.key, cfg)
	r.logger.Debug("secrets.provider_config_resolved", zap.String("key", r.key))
	return cfg, nil
}

// Bust drops the cached config so the next Resolve re-reads the secret.
func (r *Resolver) Bust() {
	r.cache.Bust(r.key)
}
