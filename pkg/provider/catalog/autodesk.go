package catalog

import (
	"strings"

	"github.com/idconnect/idconnect/pkg/decode"
	"github.com/idconnect/idconnect/pkg/provider"
)

// AutoDesk is the Autodesk Platform Services provider.
// https://forge.autodesk.com/en/docs/oauth/v2/developers_guide/overview/
func AutoDesk(creds Credentials) provider.Descriptor {
	return provider.Descriptor{
		Config: provider.Config{
			ID:           "autodesk",
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			CallbackURL:  creds.CallbackURL,
			AuthorizeURL: "https://developer.api.autodesk.com/authentication/v1/authorize",
			TokenURL:     "https://developer.api.autodesk.com/authentication/v1/gettoken",
			RefreshURL:   "https://developer.api.autodesk.com/authentication/v1/refreshtoken",
			APIBaseURL:   "https://developer.api.autodesk.com/",
			Scope:        "data:read",
		},
		Capabilities: provider.NewCapabilities(provider.CapabilityProfile, provider.CapabilityRefresh),
		ProfileCall:  provider.Call{Path: "userprofile/v1/users/@me"},
		ExtractProfile: func(data *decode.Collection) (*provider.Profile, error) {
			first := data.Str("firstName")
			last := data.Str("lastName")
			return &provider.Profile{
				Identifier:  data.Str("userId"),
				DisplayName: strings.TrimSpace(first + " " + last),
				FirstName:   first,
				LastName:    last,
				Email:       data.Str("emailId"),
				Language:    data.Str("language"),
				WebsiteURL:  data.Str("websiteUrl"),
				PhotoURL:    data.Str("profileImages.sizeX360"),
			}, nil
		},
	}
}
