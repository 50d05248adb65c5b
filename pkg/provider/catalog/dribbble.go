package catalog

import (
	"github.com/idconnect/idconnect/pkg/decode"
	"github.com/idconnect/idconnect/pkg/provider"
)

// Dribbble is the Dribbble provider.
// https://developer.dribbble.com/v2/oauth/
func Dribbble(creds Credentials) provider.Descriptor {
	return provider.Descriptor{
		Config: provider.Config{
			ID:           "dribbble",
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			CallbackURL:  creds.CallbackURL,
			AuthorizeURL: "https://dribbble.com/oauth/authorize",
			TokenURL:     "https://dribbble.com/oauth/token",
			APIBaseURL:   "https://api.dribbble.com/v2/",
		},
		Capabilities: provider.NewCapabilities(provider.CapabilityProfile),
		ProfileCall:  provider.Call{Path: "user"},
		ExtractProfile: func(data *decode.Collection) (*provider.Profile, error) {
			return &provider.Profile{
				Identifier:  data.Str("id"),
				DisplayName: firstNonEmpty(data.Str("name"), data.Str("username")),
				ProfileURL:  data.Str("html_url"),
				PhotoURL:    data.Str("avatar_url"),
				Description: data.Str("bio"),
				Region:      data.Str("location"),
				WebsiteURL:  data.Str("links.web"),
			}, nil
		},
	}
}
