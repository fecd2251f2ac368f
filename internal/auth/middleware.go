package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/aaronlmathis/infrascope/internal/telemetry"
)

// AuthMode represents the authentication mode
type AuthMode string

const (
	AuthModeNone AuthMode = "none"
	AuthModeOIDC AuthMode = "oidc"
)

// Middleware provides authentication middleware
type Middleware struct {
	logger     *zap.Logger
	authMode   AuthMode
	oidcClient *OIDCClient
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(logger *zap.Logger, authMode AuthMode, oidcClient *OIDCClient) *Middleware {
	return &Middleware{
		logger:     logger,
		authMode:   authMode,
		oidcClient: oidcClient,
	}
}

// Authenticate returns a middleware that authenticates requests
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.authMode == AuthModeNone {
			next.ServeHTTP(w, r)
			return
		}

		token := bearerToken(r)
		if token == "" {
			telemetry.RecordAuthRequest(string(m.authMode), "missing")
			m.writeUnauthorized(w, "Missing bearer token")
			return
		}

		user, err := m.oidcClient.VerifyToken(r.Context(), token)
		if err != nil {
			m.logger.Debug("Token verification failed", zap.Error(err))
			telemetry.RecordAuthRequest(string(m.authMode), "invalid")
			m.writeUnauthorized(w, "Invalid bearer token")
			return
		}

		telemetry.RecordAuthRequest(string(m.authMode), "success")
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// SecureHeaders adds baseline security headers to every response.
func (m *Middleware) SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func (m *Middleware) writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
