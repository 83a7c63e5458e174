package models

import "time"

// OAuth provider tags.
const (
	ProviderGitHub = "github"
	ProviderX      = "x"
)

// StateTTL is how long an issued OAuth state stays consumable.
const StateTTL = 15 * time.Minute

// OAuthState is a single-use capability token correlating an authorization
// request with its callback. It is consumed by a read-then-delete in one
// store operation; existence proves an in-flight, not-yet-completed attempt.
type OAuthState struct {
	ID          string    `bson:"_id"`
	Provider    string    `bson:"provider"`
	UserID      string    `bson:"uid"`
	RedirectURI string    `bson:"redirectUri"`
	CreatedAt   time.Time `bson:"createdAt"`
	ExpiresAt   time.Time `bson:"expiresAt"`

	// Present only for the PKCE provider (X).
	CodeVerifier string `bson:"codeVerifier,omitempty"`
}
