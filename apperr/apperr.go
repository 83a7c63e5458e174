package apperr

import "errors"

// Sentinel errors shared across packages. Callers wrap them with
// fmt.Errorf("%w: ...") and match with errors.Is; the HTTP layer maps
// them to status codes in one place.
var (
	// ErrConfiguration means a required secret or setting is missing or
	// malformed. Fatal at startup.
	ErrConfiguration = errors.New("configuration error")

	// ErrBadRequest means caller input is missing or malformed.
	ErrBadRequest = errors.New("bad request")

	// ErrInvalidState means an OAuth state id is unknown or already consumed.
	ErrInvalidState = errors.New("invalid oauth state")

	// ErrStateExpired means an OAuth state was consumed after its expiry.
	ErrStateExpired = errors.New("oauth state expired")

	// ErrProviderMismatch means a state was replayed against the wrong
	// provider's callback endpoint.
	ErrProviderMismatch = errors.New("oauth state provider mismatch")

	// ErrTokenExchange means the provider's token endpoint did not yield an
	// access token.
	ErrTokenExchange = errors.New("token exchange failed")

	// ErrIntegrity means an encrypted blob failed authentication.
	ErrIntegrity = errors.New("ciphertext integrity check failed")

	// ErrAuthentication means a webhook signature did not verify.
	ErrAuthentication = errors.New("authentication failed")

	// ErrNotFound means the referenced user or resource does not exist.
	ErrNotFound = errors.New("not found")
)
