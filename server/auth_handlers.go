package server

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/terrafusion/auth-gateway/identity"
	"github.com/terrafusion/auth-gateway/internal/apperror"
	"github.com/terrafusion/auth-gateway/session"
)

// LoginHandler starts the authorization-code flow. An optional ?redirect=
// query names where to land after login; only relative paths are honoured.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.redirectToLogin(w, r, safeRedirectTarget(r.URL.Query().Get("redirect")))
	}
}

// CallbackHandler completes the authorization-code flow. The state parameter
// must match the one stored at login time and is consumed on first use,
// matched or not, so a replayed callback always fails.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.sessions.Load(r)

		state := r.URL.Query().Get("state")
		if state == "" || sess.AuthState == "" || state != sess.AuthState {
			writeError(w, http.StatusBadRequest, apperror.KindValidation, "state parameter mismatch")
			return
		}
		sess.AuthState = ""

		// A provider-reported error ends the flow here; the code, if any,
		// must not be exchanged.
		if errParam := r.URL.Query().Get("error"); errParam != "" {
			s.saveSession(w, r, sess)
			message := "provider returned error: " + errParam
			if description := r.URL.Query().Get("error_description"); description != "" {
				message += ": " + description
			}
			writeError(w, http.StatusBadRequest, apperror.KindAuthentication, message)
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			s.saveSession(w, r, sess)
			writeError(w, http.StatusBadRequest, apperror.KindValidation, "authorization code missing")
			return
		}

		tokens, err := s.provider.Exchange(r.Context(), code)
		if err != nil {
			log.Error().Err(err).Msg("authorization code exchange failed")
			s.saveSession(w, r, sess)
			status := http.StatusInternalServerError
			if apperror.IsKind(err, apperror.KindExternalService) {
				status = http.StatusBadGateway
			}
			writeError(w, status, apperror.KindOf(err), "authorization code exchange failed")
			return
		}

		claims, err := s.decoder.Decode(r.Context(), tokens.IDToken)
		if err != nil {
			log.Error().Err(err).Msg("id token rejected")
			s.saveSession(w, r, sess)
			writeError(w, http.StatusInternalServerError, apperror.KindAuthentication, "id token rejected")
			return
		}

		target := sess.PendingRedirect
		if target == "" {
			target = "/"
		}

		sess.Identity = &identity.Identity{
			Claims:       *claims,
			AccessToken:  tokens.AccessToken,
			RefreshToken: tokens.RefreshToken,
			ExpiresAt:    absoluteExpiry(tokens, claims),
		}
		sess.PendingRedirect = ""

		if err := s.sessions.Save(w, r, sess); err != nil {
			writeAppError(w, err)
			return
		}

		s.syncUser(r.Context(), *claims)
		http.Redirect(w, r, target, http.StatusFound)
	}
}

// LogoutHandler drops the session and sends the browser to the provider's
// end-session endpoint, which redirects back to this service afterwards.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.sessions.Clear(w)
		http.Redirect(w, r, s.provider.EndSessionURL(s.config.GetBaseURL()), http.StatusFound)
	}
}

// UserHandler returns the current identity's claims as JSON.
func (s *Server) UserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := s.authenticate(w, r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, apperror.KindAuthentication, "not authenticated")
			return
		}
		writeJSON(w, http.StatusOK, id.Claims)
	}
}

// ProfileHandler returns the synchronized user record for the current
// identity.
func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := s.authenticate(w, r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, apperror.KindAuthentication, "not authenticated")
			return
		}

		user, err := s.users.GetByID(r.Context(), id.Claims.Subject)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.FromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, apperror.KindAuthentication, "not authenticated")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"authenticated": true,
			"sub":           id.Claims.Subject,
		})
	}
}

func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// InternalUserHandler serves user records to other services. It sits behind
// RequireServiceToken, never behind a session.
func (s *Server) InternalUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.users.GetByID(r.Context(), r.PathValue("id"))
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func (s *Server) saveSession(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if err := s.sessions.Save(w, r, sess); err != nil {
		log.Error().Err(err).Msg("failed to persist session")
	}
}

// safeRedirectTarget rejects absolute and protocol-relative URLs so the login
// flow cannot be used as an open redirector.
func safeRedirectTarget(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return "/"
	}
	return target
}
