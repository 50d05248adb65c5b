// Package provider defines the boundary between the protocol-agnostic auth
// flow engine and concrete identity providers. A provider contributes pure
// data and mapping functions: endpoint configuration, a capability set, and
// extractors that turn decoded API responses into normalized records. The
// engine owns all protocol mechanics.
package provider

import (
	"fmt"

	"github.com/idconnect/idconnect/pkg/decode"
	"github.com/idconnect/idconnect/pkg/errors"
)

// Config holds everything the flow engine needs to drive one provider.
// The provider id is explicit configuration, never derived from type names.
type Config struct {
	// ID identifies the provider and namespaces its stored credentials.
	ID string

	// ClientID and ClientSecret are the application credentials registered
	// with the provider.
	ClientID     string
	ClientSecret string

	// AuthorizeURL is the user-facing authorization endpoint.
	AuthorizeURL string

	// TokenURL is the code-for-token exchange endpoint.
	TokenURL string

	// RefreshURL is the token refresh endpoint; TokenURL when empty.
	RefreshURL string

	// APIBaseURL is the base URL relative API paths resolve against.
	APIBaseURL string

	// CallbackURL is the redirect URI registered with the provider.
	CallbackURL string

	// Scope is the space-delimited scope string sent with the
	// authorization request.
	Scope string

	// ExtraAuthorizeParams are provider-specific additions to the
	// authorization URL.
	ExtraAuthorizeParams map[string]string

	// ExtraTokenParams are provider-specific additions to the token
	// exchange request.
	ExtraTokenParams map[string]string

	// ExtraRefreshParams are provider-specific additions to the refresh
	// request.
	ExtraRefreshParams map[string]string

	// TokenQueryName, when set, sends the access token as a query
	// parameter of this name instead of an Authorization header.
	TokenQueryName string

	// AuthScheme overrides the Authorization header scheme; "Bearer"
	// when empty.
	AuthScheme string

	// UsePKCE enables the code-challenge extension on the authorization
	// flow.
	UsePKCE bool

	// DefaultHeaders are attached to every API request for this provider.
	DefaultHeaders map[string]string
}

// Validate reports whether the configuration is complete enough to run an
// authorization flow.
func (c Config) Validate() error {
	switch {
	case c.ID == "":
		return errors.NewConfigurationError("provider id is required", nil)
	case c.ClientID == "":
		return errors.NewConfigurationError(
			fmt.Sprintf("provider %s: client id is required", c.ID), nil)
	case c.AuthorizeURL == "":
		return errors.NewConfigurationError(
			fmt.Sprintf("provider %s: authorize URL is required", c.ID), nil)
	case c.TokenURL == "":
		return errors.NewConfigurationError(
			fmt.Sprintf("provider %s: token URL is required", c.ID), nil)
	case c.CallbackURL == "":
		return errors.NewConfigurationError(
			fmt.Sprintf("provider %s: callback URL is required", c.ID), nil)
	}
	return nil
}

// Capability names one optional provider feature.
type Capability uint32

const (
	// CapabilityProfile marks providers that expose a user profile endpoint.
	CapabilityProfile Capability = 1 << iota

	// CapabilityContacts marks providers that expose a contact listing.
	CapabilityContacts

	// CapabilityRefresh marks providers whose tokens can be refreshed.
	CapabilityRefresh
)

// Capabilities is the set of features a provider declares. Callers check
// the set before invoking an optional operation instead of handling
// "unsupported" errors after the fact.
type Capabilities uint32

// NewCapabilities builds a set from individual capabilities.
func NewCapabilities(caps ...Capability) Capabilities {
	var set Capabilities
	for _, c := range caps {
		set |= Capabilities(c)
	}
	return set
}

// Supports reports whether the set includes c.
func (s Capabilities) Supports(c Capability) bool {
	return s&Capabilities(c) != 0
}

// Call describes one provider API request: a path relative to APIBaseURL
// (or an absolute URL) plus fixed parameters and headers.
type Call struct {
	Path    string
	Method  string
	Params  map[string]string
	Headers map[string]string
}

// ProfileExtractor maps a decoded profile response to a normalized Profile.
type ProfileExtractor func(data *decode.Collection) (*Profile, error)

// ContactsExtractor maps a decoded contacts response to normalized Contacts.
type ContactsExtractor func(data *decode.Collection) ([]Contact, error)

// Descriptor bundles a provider's configuration with its capability set and
// response extractors. Built-in providers live in the catalog subpackage;
// applications can define their own by filling in a Descriptor.
type Descriptor struct {
	Config       Config
	Capabilities Capabilities

	// ProfileCall and ExtractProfile serve profile lookups when
	// CapabilityProfile is declared.
	ProfileCall    Call
	ExtractProfile ProfileExtractor

	// ContactsCall and ExtractContacts serve contact listings when
	// CapabilityContacts is declared.
	ContactsCall    Call
	ExtractContacts ContactsExtractor
}
