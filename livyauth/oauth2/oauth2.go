// Package oauth2 provides OAuth2 and static token authentication for the
// livy-go client library, for deployments where the Livy server sits behind
// a token-authenticating gateway. It is a separate package to keep the
// oauth2 dependency opt-in.
package oauth2

import (
	"context"
	"fmt"
	"net/http"

	livy "github.com/kjmrknsn/livy-go"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// --- Static Token ---

// NewStaticTokenOption returns a RequestOption that sets a static Bearer
// token on every request. Use this for pre-obtained JWTs or long-lived
// access tokens.
func NewStaticTokenOption(token string) livy.RequestOption {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// --- Client Credentials Flow ---

// Config holds OAuth2 client credentials configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string   // Token endpoint URL
	Scopes       []string // Optional scopes
}

// validate checks that required fields are set.
func (c *Config) validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("oauth2: ClientID is required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("oauth2: ClientSecret is required")
	}
	if c.TokenURL == "" {
		return fmt.Errorf("oauth2: TokenURL is required")
	}
	return nil
}

// NewRequestOption creates a RequestOption that automatically obtains and
// refreshes OAuth2 tokens using the client credentials flow. The returned
// option is safe for concurrent use — the underlying oauth2 token source
// handles caching and refresh.
func NewRequestOption(cfg Config) (livy.RequestOption, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	ccCfg := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       cfg.Scopes,
	}

	tokenSource := ccCfg.TokenSource(context.Background())

	opt := func(req *http.Request) {
		token, err := tokenSource.Token()
		if err != nil {
			// Cannot return an error from a RequestOption. The server
			// will return 401 if the header is missing, surfacing as a
			// StatusError.
			return
		}
		token.SetAuthHeader(req)
	}

	return opt, nil
}

// TokenSource wraps an oauth2.TokenSource as a livy.RequestOption. Use this
// when you have a custom token source (e.g., from a token file, metadata
// service, or custom refresh logic).
func TokenSource(ts oauth2.TokenSource) livy.RequestOption {
	return func(req *http.Request) {
		token, err := ts.Token()
		if err != nil {
			return
		}
		token.SetAuthHeader(req)
	}
}
