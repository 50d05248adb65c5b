package catalog

import (
	"github.com/idconnect/idconnect/pkg/decode"
	"github.com/idconnect/idconnect/pkg/provider"
)

// Miro is the Miro provider.
// https://developers.miro.com/docs/getting-started
func Miro(creds Credentials) provider.Descriptor {
	return provider.Descriptor{
		Config: provider.Config{
			ID:           "miro",
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			CallbackURL:  creds.CallbackURL,
			AuthorizeURL: "https://miro.com/oauth/authorize",
			TokenURL:     "https://api.miro.com/v1/oauth/token",
			APIBaseURL:   "https://api.miro.com/v1/",
		},
		Capabilities: provider.NewCapabilities(provider.CapabilityProfile, provider.CapabilityRefresh),
		ProfileCall:  provider.Call{Path: "users/me", Params: map[string]string{"format": "json"}},
		ExtractProfile: func(data *decode.Collection) (*provider.Profile, error) {
			p := &provider.Profile{
				Identifier:  data.Str("id"),
				FirstName:   data.Str("first_name"),
				LastName:    data.Str("last_name"),
				DisplayName: firstNonEmpty(data.Str("display_name"), data.Str("name")),
				Gender:      data.Str("sex"),
				Email:       firstNonEmpty(data.Str("default_email"), data.Str("email")),
				PhotoURL:    data.Str("picture.imageUrl"),
			}
			p.EmailVerified = p.Email != ""
			if birthday := data.Str("birthday"); birthday != "" {
				p.BirthYear, p.BirthMonth, p.BirthDay = decode.Birthday(birthday)
			}
			return p, nil
		},
	}
}
