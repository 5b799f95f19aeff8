package utils

import "regexp"

var (
	dsnPasswordRegex = regexp.MustCompile(`(:)([^:@]+)(@)`)
	apiKeyRegex      = regexp.MustCompile(`(api_key=)[^&\s]+`)
)

// MaskDSN hides the password portion of a database connection string.
func MaskDSN(dsn string) string {
	return dsnPasswordRegex.ReplaceAllString(dsn, ":***@")
}

// MaskAPIKey hides api_key query parameters in provider URLs before logging.
func MaskAPIKey(url string) string {
	return apiKeyRegex.ReplaceAllString(url, "${1}***")
}
