package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/focusflow-app/focusflow/config"
	"github.com/focusflow-app/focusflow/log"
	"golang.org/x/oauth2"
)

// OIDCProvider wraps the OIDC provider used for SSO logins
type OIDCProvider struct {
	provider     *oidc.Provider
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
	mu           sync.RWMutex
}

var (
	oidcProvider     *OIDCProvider
	oidcProviderOnce sync.Once
	oidcProviderErr  error
)

// GetOIDCProvider returns a singleton OIDC provider instance with discovery
func GetOIDCProvider() (*OIDCProvider, error) {
	oidcProviderOnce.Do(func() {
		cfg := config.Get()

		if cfg.OIDCIssuerURL == "" {
			oidcProviderErr = fmt.Errorf("OIDC issuer URL not configured")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// Discover OIDC provider configuration
		provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuerURL)
		if err != nil {
			oidcProviderErr = fmt.Errorf("failed to discover OIDC provider: %w", err)
			log.Error().Err(err).Str("issuer", cfg.OIDCIssuerURL).Msg("OIDC provider discovery failed")
			return
		}

		// Create OAuth2 config with discovered endpoints
		oauth2Config := &oauth2.Config{
			ClientID:     cfg.OIDCClientID,
			ClientSecret: cfg.OIDCClientSecret,
			RedirectURL:  cfg.OIDCRedirectURI,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		}

		// Create ID token verifier
		verifier := provider.Verifier(&oidc.Config{
			ClientID: cfg.OIDCClientID,
		})

		oidcProvider = &OIDCProvider{
			provider:     provider,
			oauth2Config: oauth2Config,
			verifier:     verifier,
		}

		log.Info().
			Str("issuer", cfg.OIDCIssuerURL).
			Str("auth_endpoint", provider.Endpoint().AuthURL).
			Str("token_endpoint", provider.Endpoint().TokenURL).
			Msg("OIDC provider discovered and configured")
	})

	return oidcProvider, oidcProviderErr
}

// GetAuthCodeURL returns the authorization URL for the SSO flow
func (p *OIDCProvider) GetAuthCodeURL(state string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.oauth2Config.AuthCodeURL(state)
}

// Exchange exchanges an authorization code for tokens
func (p *OIDCProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.oauth2Config.Exchange(ctx, code)
}

// VerifyIDToken verifies and parses an ID token
func (p *OIDCProvider) VerifyIDToken(ctx context.Context, rawIDToken string) (*oidc.IDToken, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.verifier.Verify(ctx, rawIDToken)
}

// IdentityClaims holds the profile claims extracted from an ID token
type IdentityClaims struct {
	Sub               string `json:"sub"`
	Email             string `json:"email"`
	Name              string `json:"name"`
	PreferredUsername string `json:"preferred_username"`
}

// ExtractIdentity parses the profile claims from a verified ID token
func ExtractIdentity(idToken *oidc.IDToken) (*IdentityClaims, error) {
	var claims IdentityClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse token claims: %w", err)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("ID token carries no email claim")
	}
	if claims.Name == "" {
		claims.Name = claims.PreferredUsername
	}
	return &claims, nil
}
