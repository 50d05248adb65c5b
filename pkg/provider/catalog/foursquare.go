package catalog

import (
	"strings"

	"github.com/idconnect/idconnect/pkg/decode"
	"github.com/idconnect/idconnect/pkg/provider"
)

const (
	// foursquareAPIVersion is the versioning date Foursquare requires on
	// every API call.
	foursquareAPIVersion = "20140201"

	foursquarePhotoSize = "150x150"
)

// Foursquare is the Foursquare provider. It is a legacy token-as-parameter
// scheme: the access token travels as the oauth_token query parameter, not
// in a header.
// https://developer.foursquare.com/overview/auth
func Foursquare(creds Credentials) provider.Descriptor {
	versioned := map[string]string{"v": foursquareAPIVersion}
	return provider.Descriptor{
		Config: provider.Config{
			ID:             "foursquare",
			ClientID:       creds.ClientID,
			ClientSecret:   creds.ClientSecret,
			CallbackURL:    creds.CallbackURL,
			AuthorizeURL:   "https://foursquare.com/oauth2/authenticate",
			TokenURL:       "https://foursquare.com/oauth2/access_token",
			APIBaseURL:     "https://api.foursquare.com/v2/",
			TokenQueryName: "oauth_token",
		},
		Capabilities: provider.NewCapabilities(provider.CapabilityProfile, provider.CapabilityContacts),
		ProfileCall:  provider.Call{Path: "users/self", Params: versioned},
		ExtractProfile: func(data *decode.Collection) (*provider.Profile, error) {
			user := data.Filter("response.user")
			first := user.Str("firstName")
			last := user.Str("lastName")
			p := &provider.Profile{
				Identifier:    user.Str("id"),
				FirstName:     first,
				LastName:      last,
				DisplayName:   strings.TrimSpace(first + " " + last),
				Gender:        user.Str("gender"),
				City:          user.Str("homeCity"),
				Email:         user.Str("contact.email"),
				EmailVerified: user.Str("contact.email") != "",
			}
			if p.Identifier != "" {
				p.ProfileURL = "https://www.foursquare.com/user/" + p.Identifier
			}
			if user.Exists("photo") {
				p.PhotoURL = foursquarePhotoURL(user.Filter("photo"))
			}
			return p, nil
		},
		ContactsCall: provider.Call{Path: "users/self/friends", Params: versioned},
		ExtractContacts: func(data *decode.Collection) ([]provider.Contact, error) {
			items := data.Slice("response.friends.items")
			contacts := make([]provider.Contact, 0, len(items))
			for _, item := range items {
				friend := decode.NewCollection(item)
				contacts = append(contacts, provider.Contact{
					Identifier:  friend.Str("id"),
					DisplayName: strings.TrimSpace(friend.Str("firstName") + " " + friend.Str("lastName")),
					PhotoURL:    foursquarePhotoURL(friend.Filter("photo")),
					Email:       friend.Str("contact.email"),
				})
			}
			return contacts, nil
		},
	}
}

// foursquarePhotoURL assembles the size-interpolated avatar URL from the
// prefix/suffix pair Foursquare returns.
func foursquarePhotoURL(photo *decode.Collection) string {
	prefix := photo.Str("prefix")
	suffix := photo.Str("suffix")
	if prefix == "" || suffix == "" {
		return ""
	}
	return prefix + foursquarePhotoSize + suffix
}
