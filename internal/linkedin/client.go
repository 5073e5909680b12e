package linkedin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Client is responsible for interacting with the LinkedIn api: the OAuth
// code exchange, the userinfo lookup, and the three-step media publish
// workflow. The client holds no member state; access tokens are passed in
// on every call.
type Client struct {
	logger     *zap.Logger
	c          *http.Client
	oauth      *oauth2.Config
	apiBaseURL string
}

// Config carries the OAuth application credentials. AuthBaseURL and
// APIBaseURL default to the real LinkedIn hosts and only need to be set
// in tests.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	AuthBaseURL string
	APIBaseURL  string
}

// NewClient returns an instantiated LinkedIn client. The client has the
// following dependencies:
//
// logger - for structured logging
// cfg - the OAuth application credentials
func NewClient(logger *zap.Logger, cfg Config) (*Client, error) {
	var missingDeps []string

	for _, tc := range []struct {
		dep string
		chk func() bool
	}{
		{
			dep: "logger",
			chk: func() bool { return logger != nil },
		},
		{
			dep: "clientId",
			chk: func() bool { return cfg.ClientID != "" },
		},
		{
			dep: "clientSecret",
			chk: func() bool { return cfg.ClientSecret != "" },
		},
		{
			dep: "redirectUri",
			chk: func() bool { return cfg.RedirectURI != "" },
		},
	} {
		if !tc.chk() {
			missingDeps = append(missingDeps, tc.dep)
		}
	}

	if len(missingDeps) > 0 {
		return nil, fmt.Errorf(
			"unable to initialize client due to (%d) missing dependencies: %s",
			len(missingDeps),
			strings.Join(missingDeps, ","),
		)
	}

	authBaseURL := cfg.AuthBaseURL
	if authBaseURL == "" {
		authBaseURL = DefaultAuthBaseURL
	}

	apiBaseURL := cfg.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = DefaultAPIBaseURL
	}

	return &Client{
		logger: logger,
		c:      new(http.Client),
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       strings.Fields(Scopes),
			Endpoint: oauth2.Endpoint{
				AuthURL:  authBaseURL + "/oauth/v2/authorization",
				TokenURL: authBaseURL + "/oauth/v2/accessToken",
				// LinkedIn wants client_id/client_secret in the POST body
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiBaseURL: apiBaseURL,
	}, nil
}

// AuthCodeURL builds the authorization redirect url the member is sent to
// in order to grant the app access.
func (c *Client) AuthCodeURL() string {
	return c.oauth.AuthCodeURL("")
}

// Exchange trades an authorization code for an access token. A single
// attempt is made; a non-success status from the token endpoint surfaces
// as an UpstreamError carrying the upstream body.
func (c *Client) Exchange(ctx context.Context, code string) (*Token, error) {
	if code == "" {
		return nil, ErrNoCode
	}

	// route the exchange through our own http client
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.c)

	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			status := 0
			if re.Response != nil {
				status = re.Response.StatusCode
			}
			ue := &UpstreamError{StatusCode: status, Body: string(re.Body)}
			c.logger.Error("token exchange rejected", zap.Int("statusCode", status), zap.String("body", ue.Body))
			return nil, ue
		}

		const msg = "unable to exchange authorization code"
		c.logger.Error(msg, zap.Error(err))
		return nil, fmt.Errorf(msg+": %w", err)
	}

	var expiresIn int64
	if v, ok := tok.Extra("expires_in").(float64); ok {
		expiresIn = int64(v)
	}

	return &Token{
		AccessToken: tok.AccessToken,
		ExpiresIn:   expiresIn,
	}, nil
}

// UserInfo looks up the authenticated member's identity and derives the
// author urn used to attribute posts.
func (c *Client) UserInfo(ctx context.Context, accessToken string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+"/v2/userinfo", nil)
	if err != nil {
		const msg = "unable to create userinfo request"
		c.logger.Error(msg, zap.Error(err))
		return nil, fmt.Errorf(msg+": %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.c.Do(req)
	if err != nil {
		const msg = "unable to get userinfo"
		c.logger.Error(msg, zap.Error(err))
		return nil, fmt.Errorf(msg+": %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		ue := upstreamError("", resp)
		c.logger.Error("userinfo rejected", zap.Int("statusCode", ue.StatusCode), zap.String("body", ue.Body))
		return nil, ue
	}

	var raw map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		const msg = "unable to decode userinfo response"
		c.logger.Error(msg, zap.Error(err))
		return nil, fmt.Errorf(msg+": %w", err)
	}

	sub, _ := raw["sub"].(string)
	name, _ := raw["name"].(string)
	email, _ := raw["email"].(string)

	return &Identity{
		UserID:    sub,
		AuthorURN: AuthorURN(sub),
		Name:      name,
		Email:     email,
		Raw:       raw,
	}, nil
}

// upstreamError drains the response body into an UpstreamError. The body
// is surfaced verbatim so the caller sees exactly what the provider said.
func upstreamError(step string, resp *http.Response) *UpstreamError {
	var body string
	if resp.Body != nil {
		b, err := io.ReadAll(resp.Body)
		if err == nil {
			body = string(b)
		}
	}

	return &UpstreamError{
		Step:       step,
		StatusCode: resp.StatusCode,
		Body:       body,
	}
}
