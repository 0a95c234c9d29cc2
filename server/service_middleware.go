package server

import (
	"net/http"
	"strings"

	"github.com/terrafusion/auth-gateway/internal/apperror"
	"github.com/terrafusion/auth-gateway/token/servicetoken"
)

// RequireServiceToken gates a route behind a valid service bearer token
// audienced at this service. The validated claims are placed on the request
// context for the handler.
func (s *Server) RequireServiceToken() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			raw, err := bearerToken(r)
			if err != nil {
				unauthorizedService(w, err)
				return
			}

			claims, err := s.serviceTokens.Validate(raw, s.config.GetServiceName())
			if err != nil {
				unauthorizedService(w, err)
				return
			}

			next(w, r.WithContext(servicetoken.WithClaims(r.Context(), claims)))
		}
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", apperror.New(apperror.KindAuthentication, "authorization header missing")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", apperror.New(apperror.KindAuthentication, "authorization header malformed")
	}
	return parts[1], nil
}

func unauthorizedService(w http.ResponseWriter, err error) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="auth-gateway"`)
	writeError(w, http.StatusUnauthorized, apperror.KindAuthentication, err.Error())
}
