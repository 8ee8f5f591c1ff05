// Package errors provides centralized error definitions for the briefing
// pipeline. Errors are organized by domain to avoid duplication and provide
// consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - Unexported errors (err*): Use for internal package errors
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Circuit breaker errors.
var (
	// ErrCircuitBreakerOpen indicates the circuit breaker has tripped and requests are blocked.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
)

// Client and connection errors.
var (
	// ErrClientNotInitialized indicates a client has not been initialized.
	ErrClientNotInitialized = errors.New("client not initialized")

	// ErrClientDisabled indicates a client or feature is disabled.
	ErrClientDisabled = errors.New("client disabled")

	// ErrNoProvidersAvailable indicates every registered provider is
	// circuit-broken or unconfigured.
	ErrNoProvidersAvailable = errors.New("no providers available")
)

// Response and parsing errors.
var (
	// ErrEmptyResponse indicates an empty response was received.
	ErrEmptyResponse = errors.New("empty response")

	// ErrSchemaViolation indicates a provider's response did not validate
	// against the requested JSON schema.
	ErrSchemaViolation = errors.New("response violates schema")

	// ErrTruncatedResponse indicates a provider stopped generating before
	// completing the response (e.g. hit its max-tokens limit).
	ErrTruncatedResponse = errors.New("response truncated")
)

// Validation errors.
var (
	// ErrInvalidInput indicates invalid input was provided.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidTimestamp indicates an item's timestamp could not be parsed.
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrInvalidURL indicates an item's URL is missing or unparseable.
	ErrInvalidURL = errors.New("invalid url")

	// ErrURLNotInBundle indicates a fact or bullet cited a URL absent from
	// its originating cluster bundle.
	ErrURLNotInBundle = errors.New("url not present in cluster bundle")

	// ErrDuplicateBulletURL indicates a topic draft reused the same URL
	// across more than one bullet.
	ErrDuplicateBulletURL = errors.New("duplicate bullet url")

	// ErrBulletCountOutOfRange indicates a topic draft has zero bullets or
	// more than the maximum of four.
	ErrBulletCountOutOfRange = errors.New("bullet count out of range")
)

// Rate limiting and throttling errors.
var (
	// ErrRateLimited indicates rate limiting was triggered.
	ErrRateLimited = errors.New("rate limited")

	// ErrPayloadTooLarge indicates a remote service rejected a batch as
	// too large (HTTP 413), distinct from a transient transport failure.
	ErrPayloadTooLarge = errors.New("payload too large")
)

// Clustering and candidate-selection errors.
var (
	// ErrEmptyCluster indicates a cluster bundle carries no surviving items.
	ErrEmptyCluster = errors.New("cluster has no items")
)

// Artifact persistence errors.
var (
	// ErrArtifactWriteFailed indicates a stage artifact could not be
	// durably written to its final path.
	ErrArtifactWriteFailed = errors.New("artifact write failed")
)

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
