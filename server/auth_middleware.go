package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/terrafusion/auth-gateway/identity"
	"github.com/terrafusion/auth-gateway/internal/apperror"
	"github.com/terrafusion/auth-gateway/provider"
	"github.com/terrafusion/auth-gateway/session"
	"github.com/terrafusion/auth-gateway/users"
)

// RequireSession gates a route behind an authenticated session. Requests
// without one are sent through the login flow, with the original URL
// remembered so the callback can return to it.
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			id, err := s.authenticate(w, r)
			if err != nil {
				s.redirectToLogin(w, r, r.URL.RequestURI())
				return
			}
			next(w, r.WithContext(identity.WithIdentity(r.Context(), id)))
		}
	}
}

// authenticate resolves the request's session to a usable identity. An
// expired identity with a refresh token is refreshed transparently; any
// unrecoverable state clears the session cookie before the error returns, so
// the client never retries with a dead session.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (*identity.Identity, error) {
	sess := s.sessions.Load(r)
	if !sess.Authenticated() {
		return nil, apperror.New(apperror.KindAuthentication, "not authenticated")
	}

	id := sess.Identity
	if !id.Expired(time.Now()) {
		return id, nil
	}

	if id.RefreshToken == "" {
		s.sessions.Clear(w)
		return nil, apperror.New(apperror.KindAuthentication, "session expired")
	}

	tokens, err := s.provider.Refresh(r.Context(), id.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Str("sub", id.Claims.Subject).Msg("token refresh failed")
		s.sessions.Clear(w)
		return nil, apperror.Wrap(apperror.KindAuthentication, err, "token refresh failed")
	}

	claims, err := s.decoder.Decode(r.Context(), tokens.IDToken)
	if err != nil {
		log.Warn().Err(err).Msg("refreshed id token rejected")
		s.sessions.Clear(w)
		return nil, err
	}

	refreshToken := tokens.RefreshToken
	if refreshToken == "" {
		refreshToken = id.RefreshToken // provider did not rotate the token
	}

	sess.Identity = &identity.Identity{
		Claims:       *claims,
		AccessToken:  tokens.AccessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    absoluteExpiry(tokens, claims),
	}
	if err := s.sessions.Save(w, r, sess); err != nil {
		log.Error().Err(err).Msg("failed to persist refreshed session")
	}
	s.syncUser(r.Context(), *claims)

	return sess.Identity, nil
}

// redirectToLogin starts a fresh login: a new CSRF state, the caller's target
// remembered for after the callback, and any previous session state dropped.
func (s *Server) redirectToLogin(w http.ResponseWriter, r *http.Request, target string) {
	state := uuid.New().String()
	sess := &session.Session{
		AuthState:       state,
		PendingRedirect: target,
	}
	if err := s.sessions.Save(w, r, sess); err != nil {
		writeAppError(w, err)
		return
	}
	http.Redirect(w, r, s.provider.AuthCodeURL(state), http.StatusFound)
}

// syncUser mirrors the decoded claims into the user store. Synchronization is
// best effort: a store failure must never fail the login itself.
func (s *Server) syncUser(ctx context.Context, claims identity.Claims) {
	if _, err := s.users.Upsert(ctx, users.FromClaims(claims)); err != nil {
		log.Warn().Err(err).Str("sub", claims.Subject).Msg("user synchronization failed")
	}
}

// absoluteExpiry prefers the token response's expiry and falls back to the
// id_token's exp claim when the provider omitted expires_in.
func absoluteExpiry(tokens *provider.TokenSet, claims *identity.Claims) time.Time {
	if !tokens.ExpiresAt.IsZero() {
		return tokens.ExpiresAt
	}
	return claims.ExpiresAt
}
