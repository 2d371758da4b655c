package config

// OAuthConfig describes the third-party identity provider used for
// social login. The handshake itself is handled by the identity
// package; this only supplies the endpoints and client credentials.
type OAuthConfig interface {
	GetOIDCIssuerURL() string
	GetOIDCClientID() string
	GetOIDCClientSecret() string
	GetOIDCRedirectURL() string
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

func (OAuth) GetOIDCIssuerURL() string {
	return GetEnv("OIDC_ISSUER_URL", "https://accounts.google.com")
}

func (OAuth) GetOIDCClientID() string {
	return GetEnv("OIDC_CLIENT_ID", "")
}

func (OAuth) GetOIDCClientSecret() string {
	return GetEnv("OIDC_CLIENT_SECRET", "")
}

func (OAuth) GetOIDCRedirectURL() string {
	return GetEnv("OIDC_REDIRECT_URL", "http://localhost:8080/auth/oauth/callback")
}
