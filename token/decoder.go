// Package token decodes and validates identity tokens. Decoding is never a
// substitute for verification: every token passes signature verification
// against the provider's published keys before its claims are trusted.
package token

import (
	"context"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/terrafusion/auth-gateway/identity"
	"github.com/terrafusion/auth-gateway/internal/apperror"
)

// Verifier checks an id_token's signature and standard claims.
// *oidc.IDTokenVerifier satisfies it.
type Verifier interface {
	Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)
}

// Decoder turns a raw id_token into validated identity claims.
type Decoder struct {
	verifier Verifier
	now      func() time.Time
}

func NewDecoder(verifier Verifier) *Decoder {
	return &Decoder{verifier: verifier, now: time.Now}
}

// Decode verifies the token and extracts its claims. An expired token is an
// authentication failure, never a silent pass; expiry exactly at the current
// instant counts as expired.
func (d *Decoder) Decode(ctx context.Context, rawIDToken string) (*identity.Claims, error) {
	if strings.TrimSpace(rawIDToken) == "" {
		return nil, apperror.New(apperror.KindAuthentication, "empty id token")
	}

	idToken, err := d.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindAuthentication, err, "id token verification failed")
	}

	var payload struct {
		Email           string `json:"email"`
		FirstName       string `json:"first_name"`
		LastName        string `json:"last_name"`
		ProfileImageURL string `json:"profile_image_url"`
	}
	if err := idToken.Claims(&payload); err != nil {
		return nil, apperror.Wrap(apperror.KindAuthentication, err, "malformed id token claims")
	}

	claims := &identity.Claims{
		Subject:         idToken.Subject,
		Email:           payload.Email,
		FirstName:       payload.FirstName,
		LastName:        payload.LastName,
		ProfileImageURL: payload.ProfileImageURL,
		IssuedAt:        idToken.IssuedAt,
		ExpiresAt:       idToken.Expiry,
	}

	if claims.Subject == "" {
		return nil, apperror.New(apperror.KindAuthentication, "id token has no subject")
	}
	if !claims.ExpiresAt.After(d.now()) {
		return nil, apperror.New(apperror.KindAuthentication, "id token expired")
	}

	return claims, nil
}
