package catalog

import (
	"github.com/idconnect/idconnect/pkg/decode"
	"github.com/idconnect/idconnect/pkg/provider"
)

// Discord is the Discord provider.
// https://discord.com/developers/docs/topics/oauth2
func Discord(creds Credentials) provider.Descriptor {
	return provider.Descriptor{
		Config: provider.Config{
			ID:           "discord",
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			CallbackURL:  creds.CallbackURL,
			AuthorizeURL: "https://discord.com/api/oauth2/authorize",
			TokenURL:     "https://discord.com/api/oauth2/token",
			APIBaseURL:   "https://discord.com/api/",
			Scope:        "identify email",
		},
		Capabilities: provider.NewCapabilities(provider.CapabilityProfile, provider.CapabilityRefresh),
		ProfileCall:  provider.Call{Path: "users/@me"},
		ExtractProfile: func(data *decode.Collection) (*provider.Profile, error) {
			id := data.Str("id")

			// Legacy accounts still carry a #discriminator suffix that
			// makes the display name unique.
			displayName := firstNonEmpty(data.Str("username"), data.Str("login"))
			if d := data.Str("discriminator"); d != "" && d != "0" {
				displayName += "#" + d
			}

			p := &provider.Profile{
				Identifier:    id,
				DisplayName:   displayName,
				Email:         data.Str("email"),
				EmailVerified: data.Bool("verified"),
			}
			if avatar := data.Str("avatar"); avatar != "" {
				p.PhotoURL = "https://cdn.discordapp.com/avatars/" + id + "/" + avatar + ".png"
			}
			return p, nil
		},
	}
}
