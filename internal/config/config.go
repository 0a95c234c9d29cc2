package config

import "time"

type Config interface {
	EnvConfig
	OIDCConfig
	SessionConfig
	ServiceTokenConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
	GetUsersDBPath() string
}

type OIDCConfig interface {
	GetIssuerURL() string
	GetClientID() string
	GetClientSecret() string
	GetScopes() []string
}

type SessionConfig interface {
	GetCookieName() string
	GetCookieSecret() []byte
	GetSessionTTL() time.Duration
}

type ServiceTokenConfig interface {
	GetServiceName() string
	GetServiceTokenSecret() []byte
	GetServiceTokenTTL() time.Duration
}

type mainConfig struct {
	EnvVars
	OIDC
	Session
	ServiceToken
}

func New() Config {
	return mainConfig{}
}
