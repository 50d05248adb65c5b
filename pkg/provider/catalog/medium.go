package catalog

import (
	"github.com/idconnect/idconnect/pkg/decode"
	"github.com/idconnect/idconnect/pkg/provider"
)

// Medium is the Medium provider.
// https://github.com/Medium/medium-api-docs
func Medium(creds Credentials) provider.Descriptor {
	return provider.Descriptor{
		Config: provider.Config{
			ID:           "medium",
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			CallbackURL:  creds.CallbackURL,
			AuthorizeURL: "https://medium.com/m/oauth/authorize",
			TokenURL:     "https://api.medium.com/v1/tokens",
			APIBaseURL:   "https://api.medium.com/v1/",
			Scope:        "basicProfile",
		},
		Capabilities: provider.NewCapabilities(provider.CapabilityProfile, provider.CapabilityRefresh),
		ProfileCall:  provider.Call{Path: "me"},
		ExtractProfile: func(data *decode.Collection) (*provider.Profile, error) {
			user := data.Filter("data")
			first, last := splitName(user.Str("name"))
			return &provider.Profile{
				Identifier:  user.Str("id"),
				DisplayName: user.Str("username"),
				FirstName:   first,
				LastName:    last,
				ProfileURL:  user.Str("url"),
				PhotoURL:    user.Str("imageUrl"),
			}, nil
		},
	}
}
