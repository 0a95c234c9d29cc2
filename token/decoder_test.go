package token_test

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/terrafusion/auth-gateway/internal/apperror"
	"github.com/terrafusion/auth-gateway/token"
)

const (
	testIssuer   = "https://idp.example.com"
	testClientID = "gateway-client"
)

type fixture struct {
	key     *rsa.PrivateKey
	decoder *token.Decoder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keySet := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
	verifier := oidc.NewVerifier(testIssuer, keySet, &oidc.Config{ClientID: testClientID})

	return &fixture{key: key, decoder: token.NewDecoder(verifier)}
}

// signIDToken produces an id_token the way the provider would.
func (f *fixture) signIDToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	raw, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(f.key)
	require.NoError(t, err)
	return raw
}

func baseClaims(issuedAt, expiresAt time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"iss":               testIssuer,
		"aud":               testClientID,
		"sub":               "user-1",
		"iat":               issuedAt.Unix(),
		"exp":               expiresAt.Unix(),
		"email":             "jane@example.com",
		"first_name":        "Jane",
		"last_name":         "Doe",
		"profile_image_url": "https://img.example.com/jane.png",
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	f := newFixture(t)

	issuedAt := time.Now().Truncate(time.Second)
	expiresAt := issuedAt.Add(time.Hour)
	raw := f.signIDToken(t, baseClaims(issuedAt, expiresAt))

	claims, err := f.decoder.Decode(context.Background(), raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "jane@example.com", claims.Email)
	require.Equal(t, "Jane", claims.FirstName)
	require.Equal(t, "Doe", claims.LastName)
	require.Equal(t, "https://img.example.com/jane.png", claims.ProfileImageURL)
	require.Equal(t, issuedAt.Unix(), claims.IssuedAt.Unix())
	require.Equal(t, expiresAt.Unix(), claims.ExpiresAt.Unix())
}

func TestDecodeExpiredTokenFails(t *testing.T) {
	f := newFixture(t)

	// Validly signed but expired: expiry wins over signature validity.
	issuedAt := time.Now().Add(-2 * time.Hour)
	raw := f.signIDToken(t, baseClaims(issuedAt, issuedAt.Add(time.Hour)))

	_, err := f.decoder.Decode(context.Background(), raw)
	require.Error(t, err)
	require.True(t, apperror.IsKind(err, apperror.KindAuthentication))
}

func TestDecodeWrongKeyFails(t *testing.T) {
	f := newFixture(t)

	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	claims := baseClaims(time.Now(), time.Now().Add(time.Hour))
	raw, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(otherKey)
	require.NoError(t, err)

	_, err = f.decoder.Decode(context.Background(), raw)
	require.Error(t, err)
	require.True(t, apperror.IsKind(err, apperror.KindAuthentication))
}

func TestDecodeWrongAudienceFails(t *testing.T) {
	f := newFixture(t)

	claims := baseClaims(time.Now(), time.Now().Add(time.Hour))
	claims["aud"] = "some-other-client"
	raw := f.signIDToken(t, claims)

	_, err := f.decoder.Decode(context.Background(), raw)
	require.Error(t, err)
	require.True(t, apperror.IsKind(err, apperror.KindAuthentication))
}

func TestDecodeMalformedToken(t *testing.T) {
	f := newFixture(t)

	for _, raw := range []string{"", "   ", "not.a.token", "a.b"} {
		_, err := f.decoder.Decode(context.Background(), raw)
		require.Error(t, err, "raw=%q", raw)
		require.True(t, apperror.IsKind(err, apperror.KindAuthentication))
	}
}

func TestDecodeMissingSubjectFails(t *testing.T) {
	f := newFixture(t)

	claims := baseClaims(time.Now(), time.Now().Add(time.Hour))
	delete(claims, "sub")
	raw := f.signIDToken(t, claims)

	_, err := f.decoder.Decode(context.Background(), raw)
	require.Error(t, err)
}
