package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idconnect/idconnect/pkg/decode"
	"github.com/idconnect/idconnect/pkg/errors"
	"github.com/idconnect/idconnect/pkg/provider"
)

var testCreds = Credentials{
	ClientID:     "client-id",
	ClientSecret: "client-secret",
	CallbackURL:  "https://app.test/callback",
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	names := Names()
	assert.Contains(t, names, "discord")
	assert.Contains(t, names, "blizzard-eu")

	for _, name := range names {
		desc, err := New(name, testCreds)
		require.NoError(t, err, name)
		require.NoError(t, desc.Config.Validate(), name)
		assert.Equal(t, name, desc.Config.ID)
		if desc.Capabilities.Supports(provider.CapabilityProfile) {
			assert.NotNil(t, desc.ExtractProfile, name)
		}
		if desc.Capabilities.Supports(provider.CapabilityContacts) {
			assert.NotNil(t, desc.ExtractContacts, name)
		}
	}

	_, err := New("myspace", testCreds)
	require.Error(t, err)
	assert.True(t, errors.IsConfiguration(err))
}

func TestAmazonProfile(t *testing.T) {
	t.Parallel()

	desc := Amazon(testCreds)
	p, err := desc.ExtractProfile(decode.Parse([]byte(
		`{"user_id":"amzn1.account.X","name":"Ada Lovelace","email":"ada@example.com"}`)))
	require.NoError(t, err)
	assert.Equal(t, "amzn1.account.X", p.Identifier)
	assert.Equal(t, "Ada Lovelace", p.DisplayName)
	assert.Equal(t, "ada@example.com", p.Email)
}

func TestAutoDeskProfile(t *testing.T) {
	t.Parallel()

	desc := AutoDesk(testCreds)
	p, err := desc.ExtractProfile(decode.Parse([]byte(`{
		"userId":"U1","firstName":"Ada","lastName":"Lovelace",
		"emailId":"ada@example.com","language":"en",
		"profileImages":{"sizeX360":"https://img.test/x360.png"}
	}`)))
	require.NoError(t, err)
	assert.Equal(t, "U1", p.Identifier)
	assert.Equal(t, "Ada Lovelace", p.DisplayName)
	assert.Equal(t, "https://img.test/x360.png", p.PhotoURL)
}

func TestBlizzardVariants(t *testing.T) {
	t.Parallel()

	us := Blizzard(testCreds)
	eu := BlizzardEU(testCreds)
	apac := BlizzardAPAC(testCreds)
	assert.Equal(t, "https://us.battle.net/oauth/authorize", us.Config.AuthorizeURL)
	assert.Equal(t, "https://eu.battle.net/oauth/authorize", eu.Config.AuthorizeURL)
	assert.Equal(t, "https://apac.battle.net/oauth/token", apac.Config.TokenURL)

	p, err := us.ExtractProfile(decode.Parse([]byte(`{"id":7,"battletag":"Ada#1234"}`)))
	require.NoError(t, err)
	assert.Equal(t, "7", p.Identifier)
	assert.Equal(t, "Ada#1234", p.DisplayName)

	p, err = us.ExtractProfile(decode.Parse([]byte(`{"id":7,"login":"ada"}`)))
	require.NoError(t, err)
	assert.Equal(t, "ada", p.DisplayName)
}

func TestDiscordProfile(t *testing.T) {
	t.Parallel()

	desc := Discord(testCreds)
	p, err := desc.ExtractProfile(decode.Parse([]byte(`{
		"id":"80351110224678912","username":"nelly","discriminator":"1337",
		"avatar":"8342729096ea3675442027381ff50dfe",
		"email":"nelly@example.com","verified":true
	}`)))
	require.NoError(t, err)
	assert.Equal(t, "80351110224678912", p.Identifier)
	assert.Equal(t, "nelly#1337", p.DisplayName)
	assert.True(t, p.EmailVerified)
	assert.Equal(t,
		"https://cdn.discordapp.com/avatars/80351110224678912/8342729096ea3675442027381ff50dfe.png",
		p.PhotoURL)

	// Migrated accounts carry discriminator "0" and no suffix.
	p, err = desc.ExtractProfile(decode.Parse([]byte(`{"id":"1","username":"nelly","discriminator":"0"}`)))
	require.NoError(t, err)
	assert.Equal(t, "nelly", p.DisplayName)
}

func TestDribbbleProfile(t *testing.T) {
	t.Parallel()

	desc := Dribbble(testCreds)
	p, err := desc.ExtractProfile(decode.Parse([]byte(`{
		"id":1,"username":"ada","html_url":"https://dribbble.com/ada",
		"avatar_url":"https://img.test/a.png","bio":"designs things",
		"location":"London","links":{"web":"https://ada.example.com"}
	}`)))
	require.NoError(t, err)
	assert.Equal(t, "1", p.Identifier)
	assert.Equal(t, "ada", p.DisplayName, "username is the fallback display name")
	assert.Equal(t, "https://ada.example.com", p.WebsiteURL)
}

func TestFoursquareProfileAndContacts(t *testing.T) {
	t.Parallel()

	desc := Foursquare(testCreds)
	assert.Equal(t, "oauth_token", desc.Config.TokenQueryName)
	assert.Equal(t, foursquareAPIVersion, desc.ProfileCall.Params["v"])

	p, err := desc.ExtractProfile(decode.Parse([]byte(`{
		"response":{"user":{
			"id":"F1","firstName":"Ada","lastName":"Lovelace","gender":"female",
			"homeCity":"London","contact":{"email":"ada@example.com"},
			"photo":{"prefix":"https://img.test/","suffix":"/ada.png"}
		}}
	}`)))
	require.NoError(t, err)
	assert.Equal(t, "F1", p.Identifier)
	assert.Equal(t, "Ada Lovelace", p.DisplayName)
	assert.Equal(t, "https://www.foursquare.com/user/F1", p.ProfileURL)
	assert.Equal(t, "https://img.test/150x150/ada.png", p.PhotoURL)
	assert.True(t, p.EmailVerified)

	contacts, err := desc.ExtractContacts(decode.Parse([]byte(`{
		"response":{"friends":{"items":[
			{"id":"F2","firstName":"Grace","lastName":"Hopper",
			 "photo":{"prefix":"https://img.test/","suffix":"/grace.png"},
			 "contact":{"email":"grace@example.com"}}
		]}}
	}`)))
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "F2", contacts[0].Identifier)
	assert.Equal(t, "Grace Hopper", contacts[0].DisplayName)
	assert.Equal(t, "https://img.test/150x150/grace.png", contacts[0].PhotoURL)
}

func TestMediumProfileSplitsName(t *testing.T) {
	t.Parallel()

	desc := Medium(testCreds)
	p, err := desc.ExtractProfile(decode.Parse([]byte(`{
		"data":{"id":"M1","username":"ada","name":"Ada Lovelace",
		"url":"https://medium.com/@ada","imageUrl":"https://img.test/ada.png"}
	}`)))
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.FirstName)
	assert.Equal(t, "Lovelace", p.LastName)

	p, err = desc.ExtractProfile(decode.Parse([]byte(`{"data":{"id":"M2","name":"Prince"}}`)))
	require.NoError(t, err)
	assert.Equal(t, "Prince", p.FirstName)
	assert.Empty(t, p.LastName)
}

func TestMiroProfileBirthday(t *testing.T) {
	t.Parallel()

	desc := Miro(testCreds)
	p, err := desc.ExtractProfile(decode.Parse([]byte(`{
		"id":"MI1","first_name":"Ada","last_name":"Lovelace",
		"display_name":"ada","default_email":"ada@example.com",
		"birthday":"1815-12-10"
	}`)))
	require.NoError(t, err)
	assert.Equal(t, 1815, p.BirthYear)
	assert.Equal(t, 12, p.BirthMonth)
	assert.Equal(t, 10, p.BirthDay)
	assert.True(t, p.EmailVerified)
}

func TestWeChatVariants(t *testing.T) {
	t.Parallel()

	intl := WeChat(testCreds)
	cn := WeChatChina(testCreds)
	assert.Equal(t, "https://api.wechat.com/sns/oauth2/access_token", intl.Config.TokenURL)
	assert.Equal(t, "https://api.weixin.qq.com/sns/oauth2/access_token", cn.Config.TokenURL)
	assert.Equal(t, "client-id", intl.Config.ExtraTokenParams["appid"])
	assert.Equal(t, "access_token", intl.Config.TokenQueryName)

	p, err := intl.ExtractProfile(decode.Parse([]byte(`{
		"openid":"O1","unionid":"U1","nickname":"ada",
		"headimgurl":"https://img.test/ada.png","country":"UK"
	}`)))
	require.NoError(t, err)
	assert.Equal(t, "U1", p.Identifier, "unionid wins over openid when present")

	p, err = intl.ExtractProfile(decode.Parse([]byte(`{"openid":"O1","nickname":"ada"}`)))
	require.NoError(t, err)
	assert.Equal(t, "O1", p.Identifier)
}

func TestOIDCDiscovery(t *testing.T) {
	t.Parallel()

	var issuer string
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 issuer,
			"authorization_endpoint": issuer + "/authorize",
			"token_endpoint":         issuer + "/token",
			"userinfo_endpoint":      issuer + "/userinfo",
			"jwks_uri":               issuer + "/keys",
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	issuer = srv.URL

	desc, err := OIDC(context.Background(), "acme", issuer, testCreds)
	require.NoError(t, err)
	assert.Equal(t, issuer+"/authorize", desc.Config.AuthorizeURL)
	assert.Equal(t, issuer+"/token", desc.Config.TokenURL)
	assert.Equal(t, issuer+"/userinfo", desc.ProfileCall.Path)
	assert.True(t, desc.Config.UsePKCE)
	assert.Contains(t, desc.Config.Scope, "openid")

	p, err := desc.ExtractProfile(decode.Parse([]byte(`{
		"sub":"S1","name":"Ada Lovelace","given_name":"Ada","family_name":"Lovelace",
		"email":"ada@example.com","email_verified":true,"locale":"en-GB",
		"birthdate":"1815-12-10","address":{"locality":"London","country":"UK"}
	}`)))
	require.NoError(t, err)
	assert.Equal(t, "S1", p.Identifier)
	assert.Equal(t, "London", p.City)
	assert.Equal(t, 1815, p.BirthYear)
}

func TestOIDCDiscoveryFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := OIDC(context.Background(), "acme", srv.URL, testCreds)
	require.Error(t, err)
	assert.True(t, errors.IsConfiguration(err))
}
