package catalog

import (
	"github.com/idconnect/idconnect/pkg/decode"
	"github.com/idconnect/idconnect/pkg/provider"
)

// WeChat is the WeChat Open Platform provider. WeChat deviates from plain
// OAuth2 in two ways: the token exchange wants appid/secret parameter
// names, and API calls carry the access token as a query parameter.
// https://developers.weixin.qq.com/doc/oplatform/en/Website_App/WeChat_Login/Wechat_Login.html
func WeChat(creds Credentials) provider.Descriptor {
	return weChatEndpoints(
		"wechat",
		"https://open.weixin.qq.com/connect/qrconnect",
		"https://api.wechat.com/sns/oauth2/access_token",
		"https://api.wechat.com/sns/oauth2/refresh_token",
		"https://api.wechat.com/sns/",
		creds,
	)
}

// WeChatChina is the WeChat provider variant with the mainland endpoints.
func WeChatChina(creds Credentials) provider.Descriptor {
	return weChatEndpoints(
		"wechat-china",
		"https://open.weixin.qq.com/connect/qrconnect",
		"https://api.weixin.qq.com/sns/oauth2/access_token",
		"https://api.weixin.qq.com/sns/oauth2/refresh_token",
		"https://api.weixin.qq.com/sns/",
		creds,
	)
}

func weChatEndpoints(id, authorizeURL, tokenURL, refreshURL, apiBaseURL string, creds Credentials) provider.Descriptor {
	return provider.Descriptor{
		Config: provider.Config{
			ID:           id,
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			CallbackURL:  creds.CallbackURL,
			AuthorizeURL: authorizeURL,
			TokenURL:     tokenURL,
			RefreshURL:   refreshURL,
			APIBaseURL:   apiBaseURL,
			Scope:        "snsapi_login",
			ExtraAuthorizeParams: map[string]string{
				"appid": creds.ClientID,
			},
			ExtraTokenParams: map[string]string{
				"appid":  creds.ClientID,
				"secret": creds.ClientSecret,
			},
			ExtraRefreshParams: map[string]string{
				"appid": creds.ClientID,
			},
			TokenQueryName: "access_token",
		},
		Capabilities: provider.NewCapabilities(provider.CapabilityProfile, provider.CapabilityRefresh),
		ProfileCall:  provider.Call{Path: "userinfo"},
		ExtractProfile: func(data *decode.Collection) (*provider.Profile, error) {
			return &provider.Profile{
				Identifier:  firstNonEmpty(data.Str("unionid"), data.Str("openid")),
				DisplayName: data.Str("nickname"),
				PhotoURL:    data.Str("headimgurl"),
				City:        data.Str("city"),
				Region:      data.Str("province"),
				Country:     data.Str("country"),
			}, nil
		},
	}
}
