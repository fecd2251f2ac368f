package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.uber.org/zap"
)

// OIDCClient verifies bearer tokens against an OIDC provider. There is no
// login flow; callers obtain tokens elsewhere.
type OIDCClient struct {
	logger   *zap.Logger
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
	config   OIDCConfig
}

// OIDCConfig represents OIDC configuration
type OIDCConfig struct {
	Issuer   string
	ClientID string
	Audience string
}

// User represents an authenticated caller.
type User struct {
	Subject string   `json:"sub"`
	Email   string   `json:"email"`
	Groups  []string `json:"groups"`
}

// NewOIDCClient creates a new OIDC client
func NewOIDCClient(logger *zap.Logger, config OIDCConfig) (*OIDCClient, error) {
	if config.Issuer == "" {
		return nil, fmt.Errorf("OIDC issuer URL is required")
	}
	if config.ClientID == "" {
		return nil, fmt.Errorf("OIDC client ID is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	provider, err := oidc.NewProvider(ctx, config.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OIDC provider: %w", err)
	}

	verifierConfig := &oidc.Config{
		ClientID: config.ClientID,
	}
	if config.Audience != "" {
		verifierConfig.ClientID = config.Audience
	}

	client := &OIDCClient{
		logger:   logger,
		provider: provider,
		verifier: provider.Verifier(verifierConfig),
		config:   config,
	}

	logger.Info("OIDC client initialized",
		zap.String("issuer", config.Issuer),
		zap.String("clientId", config.ClientID))

	return client, nil
}

// VerifyToken verifies a bearer token and extracts user information
func (c *OIDCClient) VerifyToken(ctx context.Context, tokenString string) (*User, error) {
	idToken, err := c.verifier.Verify(ctx, tokenString)
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}

	var claims struct {
		Email  string   `json:"email"`
		Groups []string `json:"groups"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse token claims: %w", err)
	}

	return &User{
		Subject: idToken.Subject,
		Email:   claims.Email,
		Groups:  claims.Groups,
	}, nil
}
