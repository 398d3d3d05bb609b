package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/focusflow-app/focusflow/auth"
	"github.com/focusflow-app/focusflow/db"
	"github.com/focusflow-app/focusflow/log"
)

const oauthStateCookie = "oauth_state"

// OAuthAuthorize handles GET /api/oauth/authorize. It redirects the browser
// to the configured OIDC provider's authorization endpoint.
func (h *Handlers) OAuthAuthorize(c *gin.Context) {
	provider, err := auth.GetOIDCProvider()
	if err != nil {
		log.Error().Err(err).Msg("OIDC provider unavailable")
		RespondServiceUnavailable(c, "single sign-on is not configured")
		return
	}

	// Short-lived state cookie binds the callback to this browser
	state := auth.NewSessionToken()
	h.setAuthCookie(c, oauthStateCookie, state, 600)
	c.Redirect(http.StatusFound, provider.GetAuthCodeURL(state))
}

// OAuthCallback handles GET /api/oauth/callback. It exchanges the
// authorization code, verifies the ID token, provisions the user account
// and establishes a session before redirecting back to the app.
func (h *Handlers) OAuthCallback(c *gin.Context) {
	provider, err := auth.GetOIDCProvider()
	if err != nil {
		RespondServiceUnavailable(c, "single sign-on is not configured")
		return
	}

	state, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		RespondBadRequest(c, "invalid sign-on state")
		return
	}
	h.setAuthCookie(c, oauthStateCookie, "", -1)

	code := c.Query("code")
	if code == "" {
		RespondBadRequest(c, "missing authorization code")
		return
	}

	token, err := provider.Exchange(c.Request.Context(), code)
	if err != nil {
		log.Error().Err(err).Msg("OIDC code exchange failed")
		RespondUnauthorized(c, "sign-on failed")
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		RespondUnauthorized(c, "sign-on failed")
		return
	}

	idToken, err := provider.VerifyIDToken(c.Request.Context(), rawIDToken)
	if err != nil {
		log.Error().Err(err).Msg("OIDC token verification failed")
		RespondUnauthorized(c, "sign-on failed")
		return
	}

	identity, err := auth.ExtractIdentity(idToken)
	if err != nil {
		log.Error().Err(err).Msg("OIDC identity extraction failed")
		RespondUnauthorized(c, "sign-on failed")
		return
	}

	user, err := h.server.DB().UpsertSSOUser(identity.Email, identity.Name)
	if err != nil {
		log.Error().Err(err).Msg("Failed to provision SSO user")
		RespondInternalError(c, "failed to create account")
		return
	}

	accessToken, err := auth.IssueAccessToken(user.ID)
	if err != nil {
		RespondInternalError(c, "failed to issue token")
		return
	}
	refreshToken := auth.NewSessionToken()
	if _, err := h.server.DB().CreateSession(refreshToken, user.ID); err != nil {
		log.Error().Err(err).Msg("Failed to create refresh session")
		RespondInternalError(c, "failed to create session")
		return
	}

	log.Info().Str("user_id", user.ID).Msg("SSO login completed")

	h.setAuthCookie(c, accessTokenCookie, accessToken, int(auth.AccessTokenDuration.Seconds()))
	h.setAuthCookie(c, refreshTokenCookie, refreshToken, int(db.SessionDuration.Seconds()))
	c.Redirect(http.StatusFound, "/")
}
