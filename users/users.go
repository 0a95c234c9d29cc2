// Package users stores the user records synchronized from authenticated
// identities. Records are keyed by the OpenID subject.
package users

import (
	"time"

	"github.com/terrafusion/auth-gateway/identity"
)

type User struct {
	ID              string    `json:"id"` // OpenID subject
	Email           string    `json:"email,omitempty"`
	FirstName       string    `json:"first_name,omitempty"`
	LastName        string    `json:"last_name,omitempty"`
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UpsertUser is the identity-derived slice of a User used for writes.
type UpsertUser struct {
	ID              string
	Email           string
	FirstName       string
	LastName        string
	ProfileImageURL string
}

// FromClaims maps decoded id_token claims onto an upsertable user record.
func FromClaims(claims identity.Claims) UpsertUser {
	return UpsertUser{
		ID:              claims.Subject,
		Email:           claims.Email,
		FirstName:       claims.FirstName,
		LastName:        claims.LastName,
		ProfileImageURL: claims.ProfileImageURL,
	}
}
