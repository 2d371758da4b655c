// Package identity is the seam to the third-party identity provider.
// The OAuth handshake itself belongs to the provider; this package
// exchanges an authorization code, verifies the returned ID token and
// hands back the verified external identity.
package identity

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/studyhub/studyhub-auth/internal/config"
	"golang.org/x/oauth2"
)

// External is a verified identity supplied by the provider.
type External struct {
	Subject  string
	Email    string
	Nickname string
}

// Verifier resolves authorization codes into verified identities.
type Verifier interface {
	Exchange(ctx context.Context, code string) (*External, error)
}

// OIDCVerifier implements Verifier against an OpenID Connect provider.
type OIDCVerifier struct {
	provider *oidc.Provider
	oauth2   oauth2.Config
}

func NewOIDCVerifier(ctx context.Context, cfg config.OAuthConfig) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, cfg.GetOIDCIssuerURL())
	if err != nil {
		return nil, fmt.Errorf("[NewOIDCVerifier] provider discovery: %w", err)
	}

	return &OIDCVerifier{
		provider: provider,
		oauth2: oauth2.Config{
			ClientID:     cfg.GetOIDCClientID(),
			ClientSecret: cfg.GetOIDCClientSecret(),
			RedirectURL:  cfg.GetOIDCRedirectURL(),
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

// AuthCodeURL returns the provider URL the client is sent to.
func (v *OIDCVerifier) AuthCodeURL(state string) string {
	return v.oauth2.AuthCodeURL(state)
}

// Exchange swaps the authorization code for tokens and verifies the ID
// token signature and claims.
func (v *OIDCVerifier) Exchange(ctx context.Context, code string) (*External, error) {
	oauth2Token, err := v.oauth2.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("no ID token in response")
	}

	idToken, err := v.provider.Verifier(&oidc.Config{ClientID: v.oauth2.ClientID}).Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("ID token verification failed: %w", err)
	}

	var claims struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to extract claims: %w", err)
	}

	return &External{
		Subject:  claims.Sub,
		Email:    claims.Email,
		Nickname: claims.Name,
	}, nil
}
