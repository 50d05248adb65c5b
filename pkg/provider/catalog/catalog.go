// Package catalog ships ready-made descriptors for well-known identity
// providers. Each provider is a configuration value plus extractor
// functions; none needs its own engine type.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/idconnect/idconnect/pkg/errors"
	"github.com/idconnect/idconnect/pkg/provider"
)

// Credentials is the application registration used to instantiate a
// catalog provider.
type Credentials struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// Factory builds a provider descriptor from application credentials.
type Factory func(creds Credentials) provider.Descriptor

var factories = map[string]Factory{
	"amazon":        Amazon,
	"autodesk":      AutoDesk,
	"blizzard":      Blizzard,
	"blizzard-eu":   BlizzardEU,
	"blizzard-apac": BlizzardAPAC,
	"discord":       Discord,
	"dribbble":      Dribbble,
	"foursquare":    Foursquare,
	"medium":        Medium,
	"miro":          Miro,
	"wechat":        WeChat,
	"wechat-china":  WeChatChina,
}

// Names lists the registered provider names, sorted.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the descriptor for a registered provider name.
func New(name string, creds Credentials) (provider.Descriptor, error) {
	factory, ok := factories[strings.ToLower(name)]
	if !ok {
		return provider.Descriptor{}, errors.NewConfigurationError(
			fmt.Sprintf("unknown provider %q", name), nil)
	}
	return factory(creds), nil
}

// firstNonEmpty returns the first non-empty string. Providers commonly
// expose several candidate display-name fields.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// splitName splits a free-form full name into first and last components.
func splitName(full string) (first, last string) {
	parts := strings.SplitN(strings.TrimSpace(full), " ", 2)
	first = parts[0]
	if len(parts) == 2 {
		last = parts[1]
	}
	return first, last
}
