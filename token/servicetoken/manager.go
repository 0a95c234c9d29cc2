// Package servicetoken issues and validates the HMAC-signed bearer tokens
// used for service-to-service calls. These tokens share nothing with the
// user-session flow beyond the signing algorithm family.
package servicetoken

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/terrafusion/auth-gateway/internal/apperror"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Claims describes a validated service token.
type Claims struct {
	Subject   string
	Issuer    string
	Audience  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Manager signs and verifies service tokens with a shared secret.
type Manager struct {
	secret []byte
}

func NewManager(secret []byte) *Manager {
	return &Manager{secret: secret}
}

// Issue mints a token for the named service. audience names the service the
// token is intended for and may be empty, in which case validation against
// any expected audience will fail.
func (m *Manager) Issue(serviceName, audience string, ttl time.Duration) (string, error) {
	now := NowTimeFunc()
	claims := jwt.RegisteredClaims{
		Subject:   serviceName,
		Issuer:    serviceName,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	if audience != "" {
		claims.Audience = jwt.ClaimStrings{audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", apperror.Wrap(apperror.KindInternal, err, "failed to sign service token")
	}
	return signed, nil
}

// Validate checks signature, expiry and audience. Any defect maps to an
// authentication error so callers can answer 401 uniformly.
func (m *Manager) Validate(raw, expectedAudience string) (*Claims, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(expectedAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(NowTimeFunc),
	)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindAuthentication, err, "invalid service token")
	}
	if !parsed.Valid {
		return nil, apperror.New(apperror.KindAuthentication, "invalid service token")
	}

	out := &Claims{
		Subject: claims.Subject,
		Issuer:  claims.Issuer,
	}
	if len(claims.Audience) > 0 {
		out.Audience = claims.Audience[0]
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
