package catalog

import (
	"github.com/idconnect/idconnect/pkg/decode"
	"github.com/idconnect/idconnect/pkg/provider"
)

// Blizzard is the Battle.net provider for the US region.
// https://develop.battle.net/documentation
func Blizzard(creds Credentials) provider.Descriptor {
	return blizzardRegion("blizzard", "https://us.battle.net", creds)
}

// BlizzardEU is the Battle.net provider for the EU region.
func BlizzardEU(creds Credentials) provider.Descriptor {
	return blizzardRegion("blizzard-eu", "https://eu.battle.net", creds)
}

// BlizzardAPAC is the Battle.net provider for the APAC region.
func BlizzardAPAC(creds Credentials) provider.Descriptor {
	return blizzardRegion("blizzard-apac", "https://apac.battle.net", creds)
}

// blizzardRegion builds a Battle.net descriptor for one regional host.
// The regions differ only in endpoints.
func blizzardRegion(id, host string, creds Credentials) provider.Descriptor {
	return provider.Descriptor{
		Config: provider.Config{
			ID:           id,
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			CallbackURL:  creds.CallbackURL,
			AuthorizeURL: host + "/oauth/authorize",
			TokenURL:     host + "/oauth/token",
			APIBaseURL:   host + "/",
		},
		Capabilities: provider.NewCapabilities(provider.CapabilityProfile),
		ProfileCall:  provider.Call{Path: "oauth/userinfo"},
		ExtractProfile: func(data *decode.Collection) (*provider.Profile, error) {
			return &provider.Profile{
				Identifier:  data.Str("id"),
				DisplayName: firstNonEmpty(data.Str("battletag"), data.Str("login")),
			}, nil
		},
	}
}
