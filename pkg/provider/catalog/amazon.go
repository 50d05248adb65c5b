package catalog

import (
	"github.com/idconnect/idconnect/pkg/decode"
	"github.com/idconnect/idconnect/pkg/provider"
)

// Amazon is the Login with Amazon provider.
// https://developer.amazon.com/docs/login-with-amazon/documentation-overview.html
func Amazon(creds Credentials) provider.Descriptor {
	return provider.Descriptor{
		Config: provider.Config{
			ID:           "amazon",
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			CallbackURL:  creds.CallbackURL,
			AuthorizeURL: "https://www.amazon.com/ap/oa",
			TokenURL:     "https://api.amazon.com/auth/o2/token",
			APIBaseURL:   "https://api.amazon.com/",
			Scope:        "profile",
		},
		Capabilities: provider.NewCapabilities(provider.CapabilityProfile, provider.CapabilityRefresh),
		ProfileCall:  provider.Call{Path: "user/profile"},
		ExtractProfile: func(data *decode.Collection) (*provider.Profile, error) {
			return &provider.Profile{
				Identifier:  data.Str("user_id"),
				DisplayName: data.Str("name"),
				Email:       data.Str("email"),
			}, nil
		},
	}
}
