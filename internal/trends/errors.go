package trends

import "errors"

var (
	// ErrMissingAPIKey is returned when a required API key is not provided
	ErrMissingAPIKey = errors.New("API key is required")

	// ErrUnsupportedProvider is returned when an unsupported provider type is specified
	ErrUnsupportedProvider = errors.New("unsupported trends provider")

	// ErrRateLimited is returned when the provider throttles us
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrProviderUnavailable is returned when a provider service is unavailable
	ErrProviderUnavailable = errors.New("trends provider is currently unavailable")

	// ErrUnexpectedResponse is returned when a provider answers with a payload we cannot parse
	ErrUnexpectedResponse = errors.New("unexpected trends response")
)

// Error-marker messages surfaced in place of a trend sentence.
const (
	PopularityUnavailableMessage     = "Google Trends tool is currently unavailable"
	RelatedQueriesUnavailableMessage = "Related queries tool is currently unavailable"
)
