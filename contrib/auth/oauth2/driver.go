// Package oauth2 authenticates the AgroGuard CLI against the backend API using the
// OAuth2 client credentials grant.
//
// Usage:
//
//	auth := oauth2.NewDriver(&oauth2.Config{
//	    ClientID:     "agroguard-cli",
//	    ClientSecret: "secret",
//	    TokenURL:     "https://auth.example.com/oauth/token",
//	    Scopes:       []string{"farmers.write"},
//	})
//	client, _ := api.New(baseURL, api.WithHTTPClient(auth.HTTPClient(ctx, nil)))
package oauth2

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrNotConfigured is returned when client credentials are missing
var ErrNotConfigured = errors.New("oauth2: client credentials not configured")

// Config for creating a new OAuth2 driver
type Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string

	// Extra form values sent to the token endpoint, e.g. "audience"
	EndpointParams url.Values

	// HTTPClient is used for token requests. Defaults to a 10s timeout client.
	HTTPClient *http.Client
}

// Driver issues and caches access tokens for outgoing API requests
type Driver struct {
	config   *Config
	ccConfig *clientcredentials.Config
}

// NewDriver creates a new OAuth2 driver
func NewDriver(cfg *Config) *Driver {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Driver{
		config: cfg,
		ccConfig: &clientcredentials.Config{
			ClientID:       cfg.ClientID,
			ClientSecret:   cfg.ClientSecret,
			TokenURL:       cfg.TokenURL,
			Scopes:         cfg.Scopes,
			EndpointParams: cfg.EndpointParams,
		},
	}
}

func (d *Driver) configured() bool {
	return d.config.ClientID != "" && d.config.TokenURL != ""
}

func (d *Driver) tokenContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, d.config.HTTPClient)
}

// TokenSource returns a token source that refreshes tokens as they expire
func (d *Driver) TokenSource(ctx context.Context) oauth2.TokenSource {
	return d.ccConfig.TokenSource(d.tokenContext(ctx))
}

// Token fetches a fresh access token
func (d *Driver) Token(ctx context.Context) (*oauth2.Token, error) {
	if !d.configured() {
		return nil, ErrNotConfigured
	}
	return d.ccConfig.Token(d.tokenContext(ctx))
}

// HTTPClient returns a client that adds a bearer token to every request.
// base supplies the timeout and transport; nil uses http.DefaultTransport.
// ctx bounds token requests, so it should outlive the client.
func (d *Driver) HTTPClient(ctx context.Context, base *http.Client) *http.Client {
	client := &http.Client{}
	var transport http.RoundTripper
	if base != nil {
		*client = *base
		transport = base.Transport
	}
	client.Transport = &oauth2.Transport{
		Source: oauth2.ReuseTokenSource(nil, d.TokenSource(ctx)),
		Base:   transport,
	}
	return client
}

// Name returns the health check name
func (d *Driver) Name() string {
	return "auth"
}

// Ping checks that the token endpoint accepts the credentials
func (d *Driver) Ping(ctx context.Context) error {
	_, err := d.Token(ctx)
	return err
}
