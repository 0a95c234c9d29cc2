package config

import "strings"

type OIDC struct{}

var _ OIDCConfig = OIDC{}

// GetIssuerURL returns the OpenID provider's issuer, the root of its
// discovery document.
func (OIDC) GetIssuerURL() string {
	return GetEnv("OIDC_ISSUER_URL", "https://replit.com/oidc")
}

func (OIDC) GetClientID() string {
	return GetEnv("OIDC_CLIENT_ID", GetEnv("REPL_ID", ""))
}

func (OIDC) GetClientSecret() string {
	return GetEnv("OIDC_CLIENT_SECRET", "")
}

// GetScopes returns the requested scopes. offline_access is included by
// default so the provider issues refresh tokens.
func (OIDC) GetScopes() []string {
	scopes := GetEnv("OIDC_SCOPES", "openid profile email offline_access")
	return strings.Fields(scopes)
}
