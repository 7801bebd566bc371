package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/crustntrust/site-api/internal/apperr"
	"github.com/crustntrust/site-api/internal/config"
)

// ErrInvalidToken is returned when no configured issuer accepts a token.
var ErrInvalidToken = errors.New("invalid access token")

// Claims is the ID token payload issued by the SSO bridge.
type Claims struct {
	jwt.RegisteredClaims
	Email             string `json:"email"`
	Name              string `json:"name,omitempty"`
	Picture           string `json:"picture,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
}

// Authenticator verifies bearer tokens against every configured issuer.
type Authenticator struct {
	configs     []config.JWTConfig
	audience    string
	adminDomain string
	now         func() time.Time
}

func NewAuthenticator(configs []config.JWTConfig, audience, adminDomain string) *Authenticator {
	return &Authenticator{
		configs:     configs,
		audience:    strings.TrimSpace(audience),
		adminDomain: adminDomain,
		now:         time.Now,
	}
}

// AdminDomain is the organizational email domain.
func (a *Authenticator) AdminDomain() string {
	return a.adminDomain
}

// Parse tries each issuer in turn and returns the claims of the first one
// whose signature, issuer, validity window and audience all check out.
func (a *Authenticator) Parse(tokenString string) (*Claims, error) {
	if len(a.configs) == 0 {
		return nil, fmt.Errorf("no token issuers configured")
	}

	for _, cfg := range a.configs {
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
			}
			return cfg.Secret, nil
		}, jwt.WithLeeway(30*time.Second), jwt.WithTimeFunc(a.now))
		if err != nil || !token.Valid {
			continue
		}
		if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
			continue
		}
		if claims.Subject == "" {
			continue
		}
		if a.audience != "" && !contains(claims.Audience, a.audience) {
			continue
		}
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// Authenticate verifies tokenString and classifies the identity it names.
func (a *Authenticator) Authenticate(tokenString string) (Session, error) {
	claims, err := a.Parse(tokenString)
	if err != nil {
		return Session{}, err
	}
	return Classify(User{
		Subject: claims.Subject,
		Email:   strings.TrimSpace(claims.Email),
		Name:    firstNonEmpty(claims.Name, claims.PreferredUsername),
		Picture: claims.Picture,
	}, a.adminDomain)
}

// IsDomainRejection reports whether err came from an identity outside the
// organizational domain rather than from a bad token.
func IsDomainRejection(err error) bool {
	return apperr.Is(err, apperr.KindPermission)
}

func contains(values []string, item string) bool {
	for _, v := range values {
		if v == item {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
