// Package store defines the keyed credential store used to persist
// authentication state across the redirect round trip.
//
// Entries are flat key/value pairs addressed by a namespaced key of the form
// "{providerID}.{field}". The flow engine is stateless between calls; every
// piece of state that must survive the browser redirect (tokens, the state
// nonce, a PKCE verifier) lives here. Each storage scope should correspond to
// one user session: the key scheme partitions providers, not concurrent
// flows for the same provider.
package store

import "context"

// Token and flow-state field names. Stored keys are limited to this set.
const (
	FieldAccessToken       = "access_token"
	FieldAccessTokenSecret = "access_token_secret"
	FieldTokenType         = "token_type"
	FieldRefreshToken      = "refresh_token"
	FieldExpiresIn         = "expires_in"
	FieldExpiresAt         = "expires_at"

	// Transient flow-state fields, consumed when the callback completes.
	FieldAuthorizationState = "authorization_state"
	FieldCodeVerifier       = "code_verifier"
)

// TokenFields is the set of fields that make up a persisted credential, in
// the order they are reported by bulk reads.
var TokenFields = []string{
	FieldAccessToken,
	FieldAccessTokenSecret,
	FieldTokenType,
	FieldRefreshToken,
	FieldExpiresIn,
	FieldExpiresAt,
}

// Key builds the namespaced storage key for a provider field.
func Key(providerID, field string) string {
	return providerID + "." + field
}

// Namespace returns the key prefix owned by a provider. Deleting this prefix
// clears every piece of state the provider has stored.
func Namespace(providerID string) string {
	return providerID + "."
}

// Store is the four-operation credential store contract. Implementations are
// substitutable: the core only requires these operations and is agnostic to
// the backing medium.
//
// Each operation is atomic with respect to itself only; the engine performs
// read-then-write sequences without locking and accepts last-writer-wins.
type Store interface {
	// Set persists value under key, overwriting any existing entry. Setting
	// an empty value is equivalent to Delete: absent and empty are the same
	// state, and only necessary data is kept.
	Set(ctx context.Context, key, value string) error

	// Get returns the value for key, or "" when absent.
	Get(ctx context.Context, key string) (string, error)

	// Delete removes one entry. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every entry whose key starts with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}
