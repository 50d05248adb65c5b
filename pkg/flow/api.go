package flow

import (
	"context"
	"fmt"
	"strings"

	"github.com/idconnect/idconnect/pkg/decode"
	"github.com/idconnect/idconnect/pkg/dispatch"
	"github.com/idconnect/idconnect/pkg/errors"
	"github.com/idconnect/idconnect/pkg/provider"
)

// APIRequest issues a signed call against the provider's API using the
// stored credential. Relative paths resolve against the configured API base
// URL. The call never refreshes the token implicitly; run MaintainToken
// first when expiry matters.
func (e *Engine) APIRequest(ctx context.Context, path, method string, params, headers map[string]string) (*dispatch.Response, error) {
	cred, err := loadCredential(ctx, e.store, e.desc.Config.ID)
	if err != nil {
		return nil, err
	}
	if cred.AccessToken == "" {
		return nil, errors.NewConfigurationError(
			fmt.Sprintf("provider %s: no stored access token, authenticate first", e.desc.Config.ID), nil)
	}

	return e.dispatcher.Do(ctx, dispatch.Request{
		URL:      e.resolveURL(path),
		Method:   method,
		Params:   params,
		Headers:  headers,
		Evidence: e.evidence(cred),
	})
}

// Profile fetches and normalizes the authenticated user's profile. The
// provider must declare the profile capability and supply an extractor.
func (e *Engine) Profile(ctx context.Context) (*provider.Profile, error) {
	if !e.desc.Capabilities.Supports(provider.CapabilityProfile) || e.desc.ExtractProfile == nil {
		return nil, errors.NewUnsupportedCapabilityError(
			fmt.Sprintf("provider %s does not expose a user profile", e.desc.Config.ID))
	}

	data, err := e.call(ctx, e.desc.ProfileCall)
	if err != nil {
		return nil, err
	}

	userProfile, err := e.desc.ExtractProfile(data)
	if err != nil {
		return nil, err
	}
	if userProfile == nil || userProfile.Identifier == "" {
		return nil, errors.NewProtocolViolationError(
			fmt.Sprintf("provider %s returned a profile without an identifier", e.desc.Config.ID), nil)
	}
	return userProfile, nil
}

// Contacts fetches and normalizes the authenticated user's contact list.
// The provider must declare the contacts capability.
func (e *Engine) Contacts(ctx context.Context) ([]provider.Contact, error) {
	if !e.desc.Capabilities.Supports(provider.CapabilityContacts) || e.desc.ExtractContacts == nil {
		return nil, errors.NewUnsupportedCapabilityError(
			fmt.Sprintf("provider %s does not expose a contact listing", e.desc.Config.ID))
	}

	data, err := e.call(ctx, e.desc.ContactsCall)
	if err != nil {
		return nil, err
	}
	return e.desc.ExtractContacts(data)
}

// call runs a descriptor-declared API call and validates that the response
// decoded into a traversable mapping.
func (e *Engine) call(ctx context.Context, c provider.Call) (*decode.Collection, error) {
	resp, err := e.APIRequest(ctx, c.Path, c.Method, c.Params, c.Headers)
	if err != nil {
		return nil, err
	}
	if !resp.Data.IsMapping() {
		return nil, errors.NewProtocolViolationError(
			fmt.Sprintf("provider %s returned a response with no usable identity data", e.desc.Config.ID), nil)
	}
	return resp.Data, nil
}

// evidence picks the authorization evidence for API calls: a query token
// for legacy token-as-parameter providers, a bearer header otherwise.
func (e *Engine) evidence(cred *Credential) dispatch.Evidence {
	if e.desc.Config.TokenQueryName != "" {
		return dispatch.QueryToken{Name: e.desc.Config.TokenQueryName, Token: cred.AccessToken}
	}
	return dispatch.BearerToken{Token: cred.AccessToken, Scheme: e.desc.Config.AuthScheme}
}

// resolveURL resolves a relative API path against the provider's base URL.
// Absolute URLs pass through unchanged.
func (e *Engine) resolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	base := strings.TrimSuffix(e.desc.Config.APIBaseURL, "/")
	return base + "/" + strings.TrimPrefix(path, "/")
}
