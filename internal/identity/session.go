// Package identity turns SSO tokens into the session the rest of the service
// consults for privilege checks.
package identity

import (
	"context"
	"strings"

	"github.com/crustntrust/site-api/internal/apperr"
)

// User is the signed-in principal as reported by the identity provider.
type User struct {
	Subject string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Session is derived from a verified token on every request and never stored.
type Session struct {
	User    *User `json:"user"`
	IsAdmin bool  `json:"isAdmin"`
}

// SignedIn reports whether the session carries a user.
func (s Session) SignedIn() bool {
	return s.User != nil
}

// Actor is what status changes record as their author.
func (s Session) Actor() string {
	if s.User == nil {
		return ""
	}
	return s.User.Email
}

// DomainRejectedMessage is shown to identities outside the organization.
func DomainRejectedMessage(domain string) string {
	return "Kun @" + domain + "-kontoer har admin-tilgang."
}

// EmailInDomain reports whether email ends with @domain, ignoring case.
func EmailInDomain(email, domain string) bool {
	domain = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(domain), "@"))
	if domain == "" {
		return false
	}
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(email)), "@"+domain)
}

// Classify builds the session for user. Identities outside domain get an
// empty session and a permission error; they never reach an admin state.
func Classify(user User, domain string) (Session, error) {
	if !EmailInDomain(user.Email, domain) {
		return Session{}, apperr.Permission("classify session", DomainRejectedMessage(domain))
	}
	return Session{User: &user, IsAdmin: true}, nil
}

type contextKey string

const sessionContextKey contextKey = "session"

// ContextWithSession stores session into ctx.
func ContextWithSession(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// SessionFromContext returns the request session, or the empty session.
func SessionFromContext(ctx context.Context) Session {
	session, _ := ctx.Value(sessionContextKey).(Session)
	return session
}
