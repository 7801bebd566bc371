package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crustntrust/site-api/internal/config"
	"github.com/crustntrust/site-api/internal/identity"
	adminhttp "github.com/crustntrust/site-api/internal/interfaces/http/admin"
	publichttp "github.com/crustntrust/site-api/internal/interfaces/http/public"
)

func TestWithCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		name       string
		origins    []string
		method     string
		origin     string
		wantStatus int
		wantAllow  string
	}{
		{name: "wildcard echoes origin", origins: []string{"*"}, method: http.MethodGet, origin: "https://crust.no", wantStatus: http.StatusTeapot, wantAllow: "https://crust.no"},
		{name: "listed origin", origins: []string{"https://crust.no"}, method: http.MethodGet, origin: "https://crust.no", wantStatus: http.StatusTeapot, wantAllow: "https://crust.no"},
		{name: "unlisted origin passes without headers", origins: []string{"https://crust.no"}, method: http.MethodGet, origin: "https://evil.test", wantStatus: http.StatusTeapot},
		{name: "preflight", origins: []string{"*"}, method: http.MethodOptions, origin: "https://crust.no", wantStatus: http.StatusNoContent, wantAllow: "https://crust.no"},
		{name: "preflight without origin", origins: []string{"*"}, method: http.MethodOptions, wantStatus: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/forms", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			withCORS(tt.origins)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantAllow, rec.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantAllow != "" {
				assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")
			}
		})
	}
}

func testServer() *Server {
	return &Server{
		logger:         zap.NewNop(),
		location:       time.UTC,
		allowedOrigins: []string{"*"},
		auth: identity.NewAuthenticator([]config.JWTConfig{
			{Issuer: "crust-sso", Secret: []byte("test-secret")},
		}, "", "crust.no"),
		public: publichttp.NewHandler(publichttp.Config{}),
		admin:  adminhttp.NewHandler(adminhttp.Config{}),
	}
}

func token(t *testing.T, email string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"iss":   "crust-sso",
		"sub":   "user-1",
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestAdminRoutesRequireAdminSession(t *testing.T) {
	router := testServer().routes()

	tests := []struct {
		name   string
		bearer string
		want   int
	}{
		{name: "no token", want: http.StatusUnauthorized},
		{name: "garbage token", bearer: "nope", want: http.StatusUnauthorized},
		{name: "outside domain", bearer: token(t, "ola@gmail.com"), want: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/forms", nil)
			if tt.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tt.bearer)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestSessionRouteMounted(t *testing.T) {
	router := testServer().routes()

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "kari@crust.no"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "kari@crust.no")
}
