package server

const (
	RouteLogin    = "/login"
	RouteCallback = "/callback"
	RouteLogout   = "/logout"

	RouteUser    = "/user"
	RouteProfile = "/profile"
	RouteHealthz = "/healthz"

	RouteInternalUser = "/internal/users/{id}"
)
