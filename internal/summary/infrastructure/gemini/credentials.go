package gemini

import (
	"context"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultScope grants access to the generative language API.
const DefaultScope = "https://www.googleapis.com/auth/generative-language"

// OAuthConfig describes how to obtain bearer tokens instead of an API key.
type OAuthConfig struct {
	// AccessToken is used as-is when set.
	AccessToken string

	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

// TokenSource returns nil when cfg has no usable credentials, so the caller
// falls back to the API key.
func (cfg OAuthConfig) TokenSource(ctx context.Context) oauth2.TokenSource {
	if cfg.AccessToken != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken, TokenType: "Bearer"})
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.TokenURL == "" {
		return nil
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{DefaultScope}
	}
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       scopes,
	}
	return oauth2.ReuseTokenSource(nil, cc.TokenSource(ctx))
}
