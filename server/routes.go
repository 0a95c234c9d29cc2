package server

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.IndexHandler(), s.PageMiddleware(s.RequireSession())...))

	// Login flow
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteCallback, ChainMiddleware(s.CallbackHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.PageMiddleware()...))

	// Session API routes
	s.RegisterRouteHandler("GET "+RouteUser, ChainMiddleware(s.UserHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteProfile, ChainMiddleware(s.ProfileHandler(), s.APIMiddleware()...))

	// Service-to-service routes (require a service token, not a session)
	s.RegisterRouteHandler("GET "+RouteInternalUser, ChainMiddleware(s.InternalUserHandler(), s.APIMiddleware(s.RequireServiceToken())...))

	s.RegisterRouteFunc("GET "+RouteHealthz, s.HealthzHandler())
}
