package dispatch

import (
	"net/http"

	"github.com/idconnect/idconnect/pkg/errors"
)

// Evidence attaches authorization proof to an outbound request. Each
// protocol family supplies its own implementation; the dispatcher only
// knows the attachment point.
type Evidence interface {
	Attach(req *http.Request) error
}

// BearerToken sends the access token in the Authorization header. This is
// the standard OAuth2 evidence.
type BearerToken struct {
	// Token is the access token value.
	Token string

	// Scheme is the authorization scheme; "Bearer" when empty.
	Scheme string
}

// Attach implements Evidence.
func (b BearerToken) Attach(req *http.Request) error {
	if b.Token == "" {
		return errors.NewConfigurationError("bearer evidence requires a token", nil)
	}
	scheme := b.Scheme
	if scheme == "" {
		scheme = "Bearer"
	}
	req.Header.Set("Authorization", scheme+" "+b.Token)
	return nil
}

// QueryToken sends the access token as a query parameter. A few legacy
// providers only accept the token this way.
type QueryToken struct {
	// Name is the query parameter name, for example "access_token".
	Name string

	// Token is the access token value.
	Token string
}

// Attach implements Evidence.
func (q QueryToken) Attach(req *http.Request) error {
	if q.Name == "" || q.Token == "" {
		return errors.NewConfigurationError("query evidence requires a parameter name and token", nil)
	}
	query := req.URL.Query()
	query.Set(q.Name, q.Token)
	req.URL.RawQuery = query.Encode()
	return nil
}

// Signer computes request signatures externally, for protocols that sign
// the whole request rather than carrying a bearer credential. The core
// never implements signature algorithms itself.
type Signer interface {
	Sign(req *http.Request) error
}

// SignedEvidence delegates attachment to an external Signer.
type SignedEvidence struct {
	Signer Signer
}

// Attach implements Evidence.
func (s SignedEvidence) Attach(req *http.Request) error {
	if s.Signer == nil {
		return errors.NewConfigurationError("signed evidence requires a signer", nil)
	}
	return s.Signer.Sign(req)
}
