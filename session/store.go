package session

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/terrafusion/auth-gateway/internal/apperror"
)

// Store serializes Sessions into a signed cookie. The payload travels as an
// HS256-signed token so tampering, truncation or a rotated secret all fail
// signature verification and degrade to an anonymous session.
type Store struct {
	name   string
	secret []byte
	ttl    time.Duration
}

func NewStore(name string, secret []byte, ttl time.Duration) *Store {
	return &Store{name: name, secret: secret, ttl: ttl}
}

type cookieClaims struct {
	Session Session `json:"sess"`
	jwt.RegisteredClaims
}

// Load reconstructs the session from the request cookie. Any defect — no
// cookie, bad signature, malformed payload, expired cookie — yields an empty
// session, never an error: corrupted sessions degrade to anonymous.
func (st *Store) Load(r *http.Request) *Session {
	cookie, err := r.Cookie(st.name)
	if err != nil || cookie.Value == "" {
		return &Session{}
	}

	var claims cookieClaims
	_, err = jwt.ParseWithClaims(cookie.Value, &claims,
		func(*jwt.Token) (any, error) { return st.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return &Session{}
	}
	return &claims.Session
}

// Save signs the session and attaches it to the response. Must be called on
// every path that mutated session state, error paths included.
func (st *Store) Save(w http.ResponseWriter, r *http.Request, s *Session) error {
	now := time.Now()
	claims := cookieClaims{
		Session: *s,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(st.ttl)),
		},
	}

	value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(st.secret)
	if err != nil {
		return apperror.Wrap(apperror.KindInternal, err, "failed to sign session cookie")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     st.name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(st.ttl.Seconds()),
	})
	return nil
}

// Clear removes the session cookie entirely.
func (st *Store) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     st.name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func isSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return r.Header.Get("X-Forwarded-Proto") == "https"
}
