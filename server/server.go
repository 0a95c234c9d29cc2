package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/terrafusion/auth-gateway/identity"
	"github.com/terrafusion/auth-gateway/internal/config"
	"github.com/terrafusion/auth-gateway/provider"
	"github.com/terrafusion/auth-gateway/session"
	"github.com/terrafusion/auth-gateway/token/servicetoken"
	"github.com/terrafusion/auth-gateway/users"
)

// IdentityProvider is the slice of the OpenID provider client the server
// drives. *provider.Client satisfies it; tests substitute fakes.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*provider.TokenSet, error)
	Refresh(ctx context.Context, refreshToken string) (*provider.TokenSet, error)
	EndSessionURL(postLogoutRedirect string) string
}

// TokenDecoder verifies a raw id_token and extracts identity claims.
type TokenDecoder interface {
	Decode(ctx context.Context, rawIDToken string) (*identity.Claims, error)
}

type Server struct {
	env           string // Environment (e.g., "DEV", "PROD")
	mux           *http.ServeMux
	routes        []string
	config        config.Config
	provider      IdentityProvider
	decoder       TokenDecoder
	sessions      *session.Store
	users         users.Repo
	serviceTokens *servicetoken.Manager
}

func New(cfg config.Config, idp IdentityProvider, decoder TokenDecoder, sessions *session.Store, userRepo users.Repo, serviceTokens *servicetoken.Manager) *Server {
	s := &Server{
		mux:           http.NewServeMux(),
		config:        cfg,
		provider:      idp,
		decoder:       decoder,
		sessions:      sessions,
		users:         userRepo,
		serviceTokens: serviceTokens,
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			log.Debug().Str("method", parts[0]).Str("path", parts[1]).Msg("route registered")
		} else {
			log.Debug().Str("path", parts[0]).Msg("route registered")
		}
	}
}
