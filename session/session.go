// Package session carries authentication state across requests in a signed,
// http-only cookie. A Session has no server-side lifecycle: it is rebuilt
// from the cookie on every request and rewritten before the response goes
// out, so it is a plain value owned by one request/response pair.
package session

import "github.com/terrafusion/auth-gateway/identity"

// Session is the cookie payload. AuthState and PendingRedirect only exist
// mid-login; Identity only exists after a completed login.
type Session struct {
	Identity        *identity.Identity `json:"identity,omitempty"`
	AuthState       string             `json:"auth_state,omitempty"`
	PendingRedirect string             `json:"pending_redirect,omitempty"`
}

// Authenticated reports whether the session carries an identity. It says
// nothing about expiry; callers must check that separately.
func (s *Session) Authenticated() bool {
	return s.Identity != nil
}
