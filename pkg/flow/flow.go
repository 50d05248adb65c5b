// Package flow implements the protocol-agnostic authentication state
// machine: authorize redirect, callback handling, code-for-token exchange,
// token persistence and on-demand refresh.
//
// The engine is stateless between calls. Everything that must survive the
// browser redirect lives in the injected store, so the callback half of the
// handshake can run in a separate, later invocation of the process.
package flow

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/idconnect/idconnect/pkg/dispatch"
	"github.com/idconnect/idconnect/pkg/errors"
	"github.com/idconnect/idconnect/pkg/logger"
	"github.com/idconnect/idconnect/pkg/provider"
	"github.com/idconnect/idconnect/pkg/store"
)

// Redirector sends the user's browser to the authorization URL. The
// redirect is an explicit, overridable side effect: a web application
// redirects the current response, a CLI opens a local browser, and a test
// captures the URL without transferring control.
type Redirector interface {
	Redirect(ctx context.Context, authorizeURL string) error
}

// RedirectorFunc adapts a function to the Redirector interface.
type RedirectorFunc func(ctx context.Context, authorizeURL string) error

// Redirect implements Redirector.
func (f RedirectorFunc) Redirect(ctx context.Context, authorizeURL string) error {
	return f(ctx, authorizeURL)
}

// Engine drives the authentication lifecycle for one provider. Construct
// one per provider per storage scope; the zero value is not usable.
type Engine struct {
	desc       provider.Descriptor
	store      store.Store
	dispatcher *dispatch.Dispatcher
	redirector Redirector

	// now and newNonce are swappable for tests.
	now      func() time.Time
	newNonce func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithDispatcher sets the request dispatcher.
func WithDispatcher(d *dispatch.Dispatcher) Option {
	return func(e *Engine) {
		e.dispatcher = d
	}
}

// WithRedirector sets the redirect strategy.
func WithRedirector(r Redirector) Option {
	return func(e *Engine) {
		e.redirector = r
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithNonceSource overrides the state nonce generator.
func WithNonceSource(newNonce func() string) Option {
	return func(e *Engine) {
		e.newNonce = newNonce
	}
}

// NewEngine validates the provider configuration and builds an engine.
// Without options the engine uses the default dispatcher and a redirect
// strategy that returns the authorize URL without side effects.
func NewEngine(desc provider.Descriptor, st store.Store, opts ...Option) (*Engine, error) {
	if err := desc.Config.Validate(); err != nil {
		return nil, err
	}
	if st == nil {
		return nil, errors.NewConfigurationError("a credential store is required", nil)
	}

	e := &Engine{
		desc:       desc,
		store:      st,
		dispatcher: dispatch.New(dispatch.WithDefaultHeaders(desc.Config.DefaultHeaders)),
		redirector: RedirectorFunc(func(context.Context, string) error { return nil }),
		now:        time.Now,
		newNonce:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// ProviderID returns the configured provider identifier.
func (e *Engine) ProviderID() string {
	return e.desc.Config.ID
}

// Descriptor returns the provider descriptor the engine was built with.
func (e *Engine) Descriptor() provider.Descriptor {
	return e.desc
}

// IsConnected reports whether the store holds a non-empty, locally
// unexpired access token for this provider. It never performs network
// calls; expiry is checked against the recorded timestamp only.
func (e *Engine) IsConnected(ctx context.Context) (bool, error) {
	cred, err := loadCredential(ctx, e.store, e.desc.Config.ID)
	if err != nil {
		return false, err
	}
	if cred.AccessToken == "" {
		return false, nil
	}
	return !cred.IsExpired(e.now()), nil
}

// Authenticate begins the authorization handshake. When a valid credential
// is already stored it short-circuits and returns an empty URL with no
// redirect. Otherwise it persists fresh flow state, builds the authorize
// URL and hands it to the redirect strategy; control returns to the caller
// only in the sense that the flow now waits for the provider to redirect
// the user back to the callback URL.
func (e *Engine) Authenticate(ctx context.Context) (string, error) {
	connected, err := e.IsConnected(ctx)
	if err != nil {
		return "", err
	}
	if connected {
		logger.Debugw("already connected, skipping authorization", "provider", e.desc.Config.ID)
		return "", nil
	}

	nonce := e.newNonce()
	if err := e.store.Set(ctx, e.key(store.FieldAuthorizationState), nonce); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", e.desc.Config.ClientID)
	params.Set("redirect_uri", e.desc.Config.CallbackURL)
	params.Set("state", nonce)
	if e.desc.Config.Scope != "" {
		params.Set("scope", e.desc.Config.Scope)
	}

	if e.desc.Config.UsePKCE {
		verifier, challenge, err := newCodeChallenge()
		if err != nil {
			return "", err
		}
		if err := e.store.Set(ctx, e.key(store.FieldCodeVerifier), verifier); err != nil {
			return "", err
		}
		params.Set("code_challenge", challenge)
		params.Set("code_challenge_method", "S256")
	}

	for k, v := range e.desc.Config.ExtraAuthorizeParams {
		params.Set(k, v)
	}

	authorizeURL := e.desc.Config.AuthorizeURL
	if strings.Contains(authorizeURL, "?") {
		authorizeURL += "&" + params.Encode()
	} else {
		authorizeURL += "?" + params.Encode()
	}

	logger.Infow("starting authorization", "provider", e.desc.Config.ID)
	if err := e.redirector.Redirect(ctx, authorizeURL); err != nil {
		return "", err
	}
	return authorizeURL, nil
}

// HandleCallback drives the callback half of the handshake from the raw
// query parameters of the redirect-back request. It validates the state
// nonce against the persisted flow state, exchanges the authorization code
// for tokens and persists the resulting credential. The consumed flow
// state is deleted whether the exchange succeeds or fails.
func (e *Engine) HandleCallback(ctx context.Context, params map[string]string) error {
	storedNonce, err := e.store.Get(ctx, e.key(store.FieldAuthorizationState))
	if err != nil {
		return err
	}
	verifier, err := e.store.Get(ctx, e.key(store.FieldCodeVerifier))
	if err != nil {
		return err
	}

	// The flow state is single-use. Consume it up front so a failed
	// attempt cannot be replayed.
	_ = e.store.Delete(ctx, e.key(store.FieldAuthorizationState))
	_ = e.store.Delete(ctx, e.key(store.FieldCodeVerifier))

	if providerErr := params["error"]; providerErr != "" {
		msg := fmt.Sprintf("provider %s denied authorization: %s", e.desc.Config.ID, providerErr)
		if desc := params["error_description"]; desc != "" {
			msg += " (" + desc + ")"
		}
		return errors.NewProtocolViolationError(msg, nil)
	}

	if storedNonce == "" || params["state"] != storedNonce {
		return errors.NewStateMismatchError(
			fmt.Sprintf("provider %s: callback state does not match the stored authorization state", e.desc.Config.ID))
	}

	code := params["code"]
	if code == "" {
		return errors.NewProtocolViolationError(
			fmt.Sprintf("provider %s: callback carries no authorization code", e.desc.Config.ID), nil)
	}

	tokenParams := map[string]string{
		"grant_type":   "authorization_code",
		"code":         code,
		"redirect_uri": e.desc.Config.CallbackURL,
		"client_id":    e.desc.Config.ClientID,
	}
	if e.desc.Config.ClientSecret != "" {
		tokenParams["client_secret"] = e.desc.Config.ClientSecret
	}
	if verifier != "" {
		tokenParams["code_verifier"] = verifier
	}
	for k, v := range e.desc.Config.ExtraTokenParams {
		tokenParams[k] = v
	}

	cred, err := e.requestTokens(ctx, e.desc.Config.TokenURL, tokenParams)
	if err != nil {
		return err
	}

	if err := saveCredential(ctx, e.store, e.desc.Config.ID, cred); err != nil {
		return err
	}
	logger.Infow("authorization completed", "provider", e.desc.Config.ID)
	return nil
}

// MaintainToken refreshes the stored credential when it is expired or near
// expiry and a refresh token is present. It is the single refresh entry
// point: API requests never refresh implicitly, and callers invoke this on
// their own schedule. Absent refresh token or absent expiry is a no-op. A
// failed refresh clears the provider's stored state so the session
// degrades to unauthenticated instead of being retried.
func (e *Engine) MaintainToken(ctx context.Context) error {
	cred, err := loadCredential(ctx, e.store, e.desc.Config.ID)
	if err != nil {
		return err
	}
	if cred.AccessToken == "" || cred.RefreshToken == "" {
		return nil
	}
	if !cred.IsExpired(e.now()) {
		return nil
	}

	refreshURL := e.desc.Config.RefreshURL
	if refreshURL == "" {
		refreshURL = e.desc.Config.TokenURL
	}

	refreshParams := map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": cred.RefreshToken,
		"client_id":     e.desc.Config.ClientID,
	}
	if e.desc.Config.ClientSecret != "" {
		refreshParams["client_secret"] = e.desc.Config.ClientSecret
	}
	for k, v := range e.desc.Config.ExtraRefreshParams {
		refreshParams[k] = v
	}

	fresh, err := e.requestTokens(ctx, refreshURL, refreshParams)
	if err != nil {
		logger.Warnw("token refresh failed, degrading to unauthenticated",
			"provider", e.desc.Config.ID)
		_ = e.store.DeletePrefix(ctx, store.Namespace(e.desc.Config.ID))
		return err
	}

	// Providers may omit the refresh token from the refresh response; the
	// previous one stays valid in that case.
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = cred.RefreshToken
	}

	if err := saveCredential(ctx, e.store, e.desc.Config.ID, fresh); err != nil {
		return err
	}
	logger.Infow("token refreshed", "provider", e.desc.Config.ID)
	return nil
}

// Disconnect deletes every stored entry in the provider's namespace.
// Idempotent.
func (e *Engine) Disconnect(ctx context.Context) error {
	logger.Infow("disconnecting", "provider", e.desc.Config.ID)
	return e.store.DeletePrefix(ctx, store.Namespace(e.desc.Config.ID))
}

// AccessToken reads the whole stored credential.
func (e *Engine) AccessToken(ctx context.Context) (*Credential, error) {
	return loadCredential(ctx, e.store, e.desc.Config.ID)
}

// SetAccessToken replaces the provider's stored state with the given
// credential. It exists for tokens obtained out of band; after storing,
// MaintainToken runs once so an expired-but-refreshable injected token is
// brought up to date immediately.
func (e *Engine) SetAccessToken(ctx context.Context, cred Credential) error {
	if err := e.store.DeletePrefix(ctx, store.Namespace(e.desc.Config.ID)); err != nil {
		return err
	}
	if cred.ExpiresAt == 0 && cred.ExpiresIn > 0 {
		cred.ExpiresAt = e.now().Unix() + cred.ExpiresIn
	}
	if err := saveCredential(ctx, e.store, e.desc.Config.ID, &cred); err != nil {
		return err
	}
	return e.MaintainToken(ctx)
}

// requestTokens POSTs to a token endpoint and maps the decoded response to
// a credential. A reachable endpoint answering without an access token is
// a contract violation, distinct from a transport failure.
func (e *Engine) requestTokens(ctx context.Context, endpoint string, params map[string]string) (*Credential, error) {
	resp, err := e.dispatcher.Do(ctx, dispatch.Request{
		URL:     endpoint,
		Method:  http.MethodPost,
		Params:  params,
		Headers: map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		return nil, err
	}

	data := resp.Data
	if !data.IsMapping() {
		return nil, errors.NewProtocolViolationError(
			fmt.Sprintf("%s returned an undecodable token response", endpoint), nil)
	}
	accessToken := data.Str("access_token")
	if accessToken == "" {
		return nil, errors.NewProtocolViolationError(
			fmt.Sprintf("%s returned a token response without an access token", endpoint), nil)
	}

	cred := &Credential{
		AccessToken:       accessToken,
		AccessTokenSecret: data.Str("access_token_secret"),
		TokenType:         data.Str("token_type"),
		RefreshToken:      data.Str("refresh_token"),
		ExpiresIn:         data.Int("expires_in"),
	}
	if cred.ExpiresIn > 0 {
		cred.ExpiresAt = e.now().Unix() + cred.ExpiresIn
	}
	return cred, nil
}

func (e *Engine) key(field string) string {
	return store.Key(e.desc.Config.ID, field)
}

// newCodeChallenge generates a PKCE verifier and its S256 challenge.
func newCodeChallenge() (verifier, challenge string, err error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", errors.NewConfigurationError("failed to generate code verifier", err)
	}
	verifier = base64.RawURLEncoding.EncodeToString(raw)
	sum := sha256.Sum256([]byte(verifier))
	challenge = base64.RawURLEncoding.EncodeToString(sum[:])
	return verifier, challenge, nil
}
