package flow

import (
	"context"
	"strconv"
	"time"

	"github.com/idconnect/idconnect/pkg/store"
)

// expiryBuffer treats tokens expiring within this window as already
// expired, so callers refresh slightly before the provider cuts them off.
const expiryBuffer = 30 * time.Second

// Credential is the persisted token bundle for one authenticated session.
// A Credential with an empty AccessToken is absent, not empty.
type Credential struct {
	AccessToken       string
	AccessTokenSecret string
	TokenType         string
	RefreshToken      string

	// ExpiresIn is the TTL in seconds reported at issuance; ExpiresAt is
	// the absolute Unix expiry derived from it. Zero means no recorded
	// expiry.
	ExpiresIn int64
	ExpiresAt int64
}

// IsExpired reports whether the credential has passed (or is within the
// buffer of) its recorded expiry. A credential without a recorded expiry
// never expires locally.
func (c *Credential) IsExpired(now time.Time) bool {
	if c.ExpiresAt == 0 {
		return false
	}
	return now.Add(expiryBuffer).Unix() >= c.ExpiresAt
}

// loadCredential reads the stored token fields for one provider namespace.
func loadCredential(ctx context.Context, st store.Store, providerID string) (*Credential, error) {
	read := func(field string) (string, error) {
		return st.Get(ctx, store.Key(providerID, field))
	}

	cred := &Credential{}
	var err error
	if cred.AccessToken, err = read(store.FieldAccessToken); err != nil {
		return nil, err
	}
	if cred.AccessTokenSecret, err = read(store.FieldAccessTokenSecret); err != nil {
		return nil, err
	}
	if cred.TokenType, err = read(store.FieldTokenType); err != nil {
		return nil, err
	}
	if cred.RefreshToken, err = read(store.FieldRefreshToken); err != nil {
		return nil, err
	}

	expiresIn, err := read(store.FieldExpiresIn)
	if err != nil {
		return nil, err
	}
	cred.ExpiresIn, _ = strconv.ParseInt(expiresIn, 10, 64)

	expiresAt, err := read(store.FieldExpiresAt)
	if err != nil {
		return nil, err
	}
	cred.ExpiresAt, _ = strconv.ParseInt(expiresAt, 10, 64)

	return cred, nil
}

// saveCredential persists the token fields. Empty fields delete their
// entries through the store's empty-set contract.
func saveCredential(ctx context.Context, st store.Store, providerID string, cred *Credential) error {
	formatInt := func(n int64) string {
		if n == 0 {
			return ""
		}
		return strconv.FormatInt(n, 10)
	}

	fields := map[string]string{
		store.FieldAccessToken:       cred.AccessToken,
		store.FieldAccessTokenSecret: cred.AccessTokenSecret,
		store.FieldTokenType:         cred.TokenType,
		store.FieldRefreshToken:      cred.RefreshToken,
		store.FieldExpiresIn:         formatInt(cred.ExpiresIn),
		store.FieldExpiresAt:         formatInt(cred.ExpiresAt),
	}
	for _, field := range store.TokenFields {
		if err := st.Set(ctx, store.Key(providerID, field), fields[field]); err != nil {
			return err
		}
	}
	return nil
}
