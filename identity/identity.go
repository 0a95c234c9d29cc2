// Package identity holds the data contracts produced by a completed login:
// the claims decoded from an id_token and the token-bearing identity stored
// in the session.
package identity

import "time"

// Claims is the validated payload of an id_token. Subject is the durable
// external identity key.
type Claims struct {
	Subject         string    `json:"sub"`
	Email           string    `json:"email,omitempty"`
	FirstName       string    `json:"first_name,omitempty"`
	LastName        string    `json:"last_name,omitempty"`
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
	IssuedAt        time.Time `json:"issued_at"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// Identity is an authenticated identity as carried in the session. ExpiresAt
// is always an absolute timestamp; RefreshToken may be empty when the
// provider issued none.
type Identity struct {
	Claims       Claims    `json:"claims"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the identity's tokens have expired. The comparison
// is non-strict: an identity expiring exactly now is expired.
func (id *Identity) Expired(now time.Time) bool {
	return !id.ExpiresAt.After(now)
}
