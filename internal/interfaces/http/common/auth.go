package common

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/crustntrust/site-api/internal/apperr"
	"github.com/crustntrust/site-api/internal/identity"
)

// TokenAuthenticator turns a bearer token into a session.
type TokenAuthenticator interface {
	Authenticate(token string) (identity.Session, error)
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}

// OptionalSession attaches a session when a valid token is present and an
// anonymous session otherwise. It never rejects a request.
func OptionalSession(auth TokenAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var session identity.Session
			if token, ok := BearerToken(r); ok {
				if s, err := auth.Authenticate(token); err == nil {
					session = s
				}
			}
			next.ServeHTTP(w, r.WithContext(identity.ContextWithSession(r.Context(), session)))
		})
	}
}

// RequireSession rejects requests without a valid token with 401, and
// identities outside the organizational domain with 403.
func RequireSession(auth TokenAuthenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				WriteMessage(logger, w, http.StatusUnauthorized, MessageMissingToken)
				return
			}
			session, err := auth.Authenticate(token)
			if err != nil {
				if identity.IsDomainRejection(err) {
					WriteMessage(logger, w, http.StatusForbidden, apperr.MessageOf(err, MessageAdminRequired))
					return
				}
				WriteMessage(logger, w, http.StatusUnauthorized, MessageInvalidToken)
				return
			}
			next.ServeHTTP(w, r.WithContext(identity.ContextWithSession(r.Context(), session)))
		})
	}
}

// RequireAdmin is RequireSession plus a privileged-session check.
func RequireAdmin(auth TokenAuthenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	requireSession := RequireSession(auth, logger)
	return func(next http.Handler) http.Handler {
		return requireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !identity.SessionFromContext(r.Context()).IsAdmin {
				WriteMessage(logger, w, http.StatusForbidden, MessageAdminRequired)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}
