package session_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/terrafusion/auth-gateway/identity"
	"github.com/terrafusion/auth-gateway/session"
)

func newStore() *session.Store {
	return session.NewStore("tf_session", []byte("test-cookie-secret"), time.Hour)
}

// save writes the session through the store and returns the resulting cookie.
func save(t *testing.T, st *session.Store, s *session.Session) *http.Cookie {
	t.Helper()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, st.Save(rec, req, s))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestRoundTrip(t *testing.T) {
	st := newStore()
	expiresAt := time.Now().Add(time.Hour).Truncate(time.Second).UTC()

	cookie := save(t, st, &session.Session{
		Identity: &identity.Identity{
			Claims: identity.Claims{
				Subject: "user-1",
				Email:   "jane@example.com",
			},
			AccessToken:  "at",
			RefreshToken: "rt",
			ExpiresAt:    expiresAt,
		},
		AuthState:       "state-123",
		PendingRedirect: "/reports/42",
	})
	require.True(t, cookie.HttpOnly)
	require.Equal(t, "/", cookie.Path)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)

	got := st.Load(req)
	require.True(t, got.Authenticated())
	require.Equal(t, "user-1", got.Identity.Claims.Subject)
	require.Equal(t, "rt", got.Identity.RefreshToken)
	require.True(t, got.Identity.ExpiresAt.Equal(expiresAt))
	require.Equal(t, "state-123", got.AuthState)
	require.Equal(t, "/reports/42", got.PendingRedirect)
}

func TestLoadWithoutCookie(t *testing.T) {
	st := newStore()

	got := st.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	require.False(t, got.Authenticated())
	require.Empty(t, got.AuthState)
}

func TestTamperedCookieDegradesToAnonymous(t *testing.T) {
	st := newStore()
	cookie := save(t, st, &session.Session{AuthState: "state-123"})

	// Flip part of the signature segment.
	parts := strings.Split(cookie.Value, ".")
	require.Len(t, parts, 3)
	parts[2] = "AAAA" + parts[2][4:]
	cookie.Value = strings.Join(parts, ".")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)

	got := st.Load(req)
	require.False(t, got.Authenticated())
	require.Empty(t, got.AuthState)
}

func TestForeignSecretRejected(t *testing.T) {
	cookie := save(t, session.NewStore("tf_session", []byte("other-secret"), time.Hour),
		&session.Session{AuthState: "state-123"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)

	got := newStore().Load(req)
	require.Empty(t, got.AuthState)
}

func TestGarbageCookie(t *testing.T) {
	st := newStore()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "tf_session", Value: "not-a-signed-payload"})

	got := st.Load(req)
	require.False(t, got.Authenticated())
}

func TestClearExpiresCookie(t *testing.T) {
	st := newStore()

	rec := httptest.NewRecorder()
	st.Clear(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Empty(t, cookies[0].Value)
	require.Negative(t, cookies[0].MaxAge)
}

func TestSecureFlagFollowsScheme(t *testing.T) {
	st := newStore()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	require.NoError(t, st.Save(rec, req, &session.Session{}))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.True(t, cookies[0].Secure)
}
