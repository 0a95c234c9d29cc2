// Package provider implements the OpenID provider client: authorization URL
// construction, authorization-code exchange, refresh-token exchange and
// end-session URL construction. All provider interaction lives here so
// provider quirks (token rotation, optional fields) stay in one place.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/terrafusion/auth-gateway/internal/apperror"
)

// Config carries the relying-party registration for one OpenID provider.
type Config struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// TokenSet is the result of a code exchange or refresh. ExpiresAt is an
// absolute timestamp; relative expires_in values from the wire are never
// stored. RefreshToken is empty when the provider omitted one.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	ExpiresAt    time.Time
}

// Client talks to a single OpenID provider.
type Client struct {
	oauth              *oauth2.Config
	verifier           *oidc.IDTokenVerifier
	clientID           string
	endSessionEndpoint string
}

// New discovers the provider's endpoints and builds a client. The context
// bounds the discovery request.
func New(ctx context.Context, cfg Config) (*Client, error) {
	p, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindExternalService, err, "provider discovery failed")
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email", oidc.ScopeOfflineAccess}
	}

	// end_session_endpoint is optional in the discovery document.
	var extra struct {
		EndSessionEndpoint string `json:"end_session_endpoint"`
	}
	_ = p.Claims(&extra)

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     p.Endpoint(),
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
		},
		verifier:           p.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		clientID:           cfg.ClientID,
		endSessionEndpoint: extra.EndSessionEndpoint,
	}, nil
}

// AuthCodeURL builds the provider's authorization URL for a login redirect.
// The state parameter binds the eventual callback to the caller's session.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// Exchange swaps an authorization code for a token set.
func (c *Client) Exchange(ctx context.Context, code string) (*TokenSet, error) {
	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, mapTokenError(err, "code exchange")
	}
	return tokenSet(tok)
}

// Refresh exchanges a refresh token for a new token set. Callers must retain
// their previous refresh token when the returned set has none: providers
// that do not rotate refresh tokens omit the field.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperror.New(apperror.KindAuthentication, "no refresh token")
	}
	tok, err := c.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, mapTokenError(err, "token refresh")
	}
	return tokenSet(tok)
}

// EndSessionURL builds the provider's logout URL with a post-logout redirect
// back to this service. Providers without an end-session endpoint get a
// plain redirect to the post-logout target.
func (c *Client) EndSessionURL(postLogoutRedirect string) string {
	if c.endSessionEndpoint == "" {
		return postLogoutRedirect
	}
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("post_logout_redirect_uri", postLogoutRedirect)
	return c.endSessionEndpoint + "?" + q.Encode()
}

// Verifier returns the JWKS-backed id_token verifier for this provider.
func (c *Client) Verifier() *oidc.IDTokenVerifier {
	return c.verifier
}

func tokenSet(tok *oauth2.Token) (*TokenSet, error) {
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return nil, apperror.New(apperror.KindAuthentication, "token response contains no id_token")
	}
	return &TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		IDToken:      raw,
		ExpiresAt:    tok.Expiry,
	}, nil
}

// mapTokenError separates provider-rejected grants from transport failures.
// The provider's response body is surfaced for diagnostics only.
func mapTokenError(err error, op string) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		body := strings.TrimSpace(string(re.Body))
		return apperror.Wrap(apperror.KindAuthentication, err,
			fmt.Sprintf("%s rejected by provider (status %d): %s", op, re.Response.StatusCode, body))
	}
	return apperror.Wrap(apperror.KindExternalService, err, op+" request failed")
}
