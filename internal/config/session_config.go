package config

import (
	"strconv"
	"time"
)

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetCookieName() string {
	return GetEnv("SESSION_COOKIE_NAME", "tf_session")
}

// GetCookieSecret returns the HMAC key used to sign the session cookie. The
// default exists for local development only.
func (Session) GetCookieSecret() []byte {
	return []byte(GetEnv("SESSION_SECRET", "dev-only-insecure-session-secret"))
}

// GetSessionTTL returns the cookie lifetime in hours (default one week).
func (Session) GetSessionTTL() time.Duration {
	hours, err := strconv.Atoi(GetEnv("SESSION_TTL_HOURS", "168"))
	if err != nil || hours <= 0 {
		hours = 168
	}
	return time.Duration(hours) * time.Hour
}

type ServiceToken struct{}

var _ ServiceTokenConfig = ServiceToken{}

func (ServiceToken) GetServiceName() string {
	return GetEnv("SERVICE_NAME", "auth-gateway")
}

func (ServiceToken) GetServiceTokenSecret() []byte {
	return []byte(GetEnv("SERVICE_TOKEN_SECRET", "dev-only-insecure-service-secret"))
}

func (ServiceToken) GetServiceTokenTTL() time.Duration {
	minutes, err := strconv.Atoi(GetEnv("SERVICE_TOKEN_TTL_MINUTES", "15"))
	if err != nil || minutes <= 0 {
		minutes = 15
	}
	return time.Duration(minutes) * time.Minute
}
