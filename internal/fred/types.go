package fred

import "context"

// ProviderConfig holds data-provider access settings, resolved from AWS
// Secrets Manager at runtime with environment defaults as fallback.
// FRED's CSV endpoint needs no key; the dividend dataset host does.
type ProviderConfig struct {
	FREDBaseURL     string // e.g. "https://fred.stlouisfed.org"
	DividendBaseURL string // e.g. "https://data.nasdaq.com"
	APIKey          string // dividend provider API key, may be empty
}

// ConfigResolver resolves the provider configuration.
type ConfigResolver interface {
	Resolve(ctx context.Context) (*ProviderConfig, error)
}

// RateSeries maps each loan duration in days to its FRED series identifier:
// USD LIBOR fixings, simple Act/360 annualized, quoted in percent. These seven
// terms are the anchors of the rate surface; every other duration is
// interpolated between them.
var RateSeries = map[int]string{
	1:   "USDONTD156N",
	7:   "USD1WKD156N",
	30:  "USD1MTD156N",
	60:  "USD2MTD156N",
	90:  "USD3MTD156N",
	180: "USD6MTD156N",
	360: "USD12MD156N",
}

// DividendSeriesCode is the monthly S&P 500 dividend-yield dataset.
const DividendSeriesCode = "MULTPL/SP500_DIV_YIELD_MONTH"

// DividendSeriesName is the short series name used in errors, caching and logs.
const DividendSeriesName = "SP500_DIV_YIELD_MONTH"
