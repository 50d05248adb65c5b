package catalog

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/idconnect/idconnect/pkg/decode"
	"github.com/idconnect/idconnect/pkg/errors"
	"github.com/idconnect/idconnect/pkg/provider"
)

// OIDC builds a descriptor for any OpenID Connect provider from its issuer
// URL via discovery. The descriptor uses the discovered authorization and
// token endpoints, requests the standard openid scopes, enables PKCE, and
// maps the userinfo response's standard claims to the normalized profile.
func OIDC(ctx context.Context, id, issuer string, creds Credentials, extraScopes ...string) (provider.Descriptor, error) {
	discovered, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return provider.Descriptor{}, errors.NewConfigurationError(
			fmt.Sprintf("OIDC discovery for issuer %s failed", issuer), err)
	}

	var claims struct {
		UserInfoEndpoint string `json:"userinfo_endpoint"`
	}
	if err := discovered.Claims(&claims); err != nil || claims.UserInfoEndpoint == "" {
		return provider.Descriptor{}, errors.NewConfigurationError(
			fmt.Sprintf("issuer %s does not advertise a userinfo endpoint", issuer), err)
	}

	var endpoint oauth2.Endpoint = discovered.Endpoint()
	return provider.Descriptor{
		Config: provider.Config{
			ID:           id,
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			CallbackURL:  creds.CallbackURL,
			AuthorizeURL: endpoint.AuthURL,
			TokenURL:     endpoint.TokenURL,
			Scope:        oidcScope(extraScopes),
			UsePKCE:      true,
		},
		Capabilities:   provider.NewCapabilities(provider.CapabilityProfile, provider.CapabilityRefresh),
		ProfileCall:    provider.Call{Path: claims.UserInfoEndpoint},
		ExtractProfile: extractOIDCProfile,
	}, nil
}

// OIDCVerifier returns an ID-token verifier for the issuer, for
// applications that capture the raw id_token from the provider themselves.
func OIDCVerifier(ctx context.Context, issuer, clientID string) (*oidc.IDTokenVerifier, error) {
	discovered, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, errors.NewConfigurationError(
			fmt.Sprintf("OIDC discovery for issuer %s failed", issuer), err)
	}
	return discovered.Verifier(&oidc.Config{ClientID: clientID}), nil
}

func oidcScope(extra []string) string {
	scope := oidc.ScopeOpenID + " profile email"
	for _, s := range extra {
		scope += " " + s
	}
	return scope
}

// extractOIDCProfile maps the standard OIDC userinfo claims.
func extractOIDCProfile(data *decode.Collection) (*provider.Profile, error) {
	p := &provider.Profile{
		Identifier:    data.Str("sub"),
		DisplayName:   firstNonEmpty(data.Str("name"), data.Str("preferred_username")),
		FirstName:     data.Str("given_name"),
		LastName:      data.Str("family_name"),
		Email:         data.Str("email"),
		EmailVerified: data.Bool("email_verified"),
		PhotoURL:      data.Str("picture"),
		ProfileURL:    data.Str("profile"),
		WebsiteURL:    data.Str("website"),
		Gender:        data.Str("gender"),
		Language:      data.Str("locale"),
		Phone:         data.Str("phone_number"),
		Address:       data.Str("address.street_address"),
		City:          data.Str("address.locality"),
		Region:        data.Str("address.region"),
		Country:       data.Str("address.country"),
		Zip:           data.Str("address.postal_code"),
	}
	if birthdate := data.Str("birthdate"); birthdate != "" {
		p.BirthYear, p.BirthMonth, p.BirthDay = decode.Birthday(birthdate)
	}
	return p, nil
}
