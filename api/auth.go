package api

import (
	"net/mail"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/focusflow-app/focusflow/auth"
	"github.com/focusflow-app/focusflow/db"
	"github.com/focusflow-app/focusflow/log"
)

const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"

	minPasswordLength = 8
)

// UserResponse is the public view of a user account
type UserResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	CreatedAt   int64  `json:"createdAt"`
}

func userResponse(u *db.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

// AuthResponse is returned by register, login and refresh
type AuthResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"accessToken"`
}

type registerRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"displayName"`
}

// Register handles POST /api/auth/register
func (h *Handlers) Register(c *gin.Context) {
	if h.server.Config().AuthMode != "password" {
		RespondBadRequest(c, "password registration is disabled")
		return
	}

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "email and password are required")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if _, err := mail.ParseAddress(req.Email); err != nil {
		RespondValidationError(c, "invalid email address")
		return
	}
	if len(req.Password) < minPasswordLength {
		RespondValidationError(c, "password must be at least 8 characters")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("Failed to hash password")
		RespondInternalError(c, "failed to create account")
		return
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = req.Email[:strings.Index(req.Email, "@")]
	}

	user, err := h.server.DB().CreateUser(req.Email, hash, displayName)
	if err != nil {
		if db.IsUniqueViolation(err) {
			RespondConflict(c, "an account with this email already exists")
			return
		}
		log.Error().Err(err).Msg("Failed to create user")
		RespondInternalError(c, "failed to create account")
		return
	}

	log.Info().Str("user_id", user.ID).Msg("User registered")
	h.issueSession(c, user, true)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "email and password are required")
		return
	}

	user, err := h.server.DB().GetUserByEmail(strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		log.Error().Err(err).Msg("Failed to look up user")
		RespondInternalError(c, "login failed")
		return
	}
	// Uniform response for unknown email and wrong password
	if user == nil || !auth.VerifyPassword(user.PasswordHash, req.Password) {
		RespondUnauthorized(c, "invalid email or password")
		return
	}

	h.issueSession(c, user, true)
}

// Refresh handles POST /api/auth/refresh. It rotates the access token from
// the refresh session cookie without requiring credentials.
func (h *Handlers) Refresh(c *gin.Context) {
	token, err := c.Cookie(refreshTokenCookie)
	if err != nil || token == "" {
		RespondUnauthorized(c, "missing refresh token")
		return
	}

	session, err := h.server.DB().GetSession(token)
	if err != nil {
		log.Error().Err(err).Msg("Failed to look up session")
		RespondInternalError(c, "refresh failed")
		return
	}
	// A dead refresh cookie would be replayed forever, clear it with the 401
	if session == nil {
		h.clearAuthCookies(c)
		RespondUnauthorized(c, "invalid or expired refresh token")
		return
	}

	user, err := h.server.DB().GetUser(session.UserID)
	if err != nil || user == nil {
		h.clearAuthCookies(c)
		RespondUnauthorized(c, "invalid or expired refresh token")
		return
	}

	if err := h.server.DB().TouchSession(token); err != nil {
		log.Error().Err(err).Msg("Failed to touch session")
	}

	h.issueSession(c, user, false)
}

// Logout handles POST /api/auth/logout
func (h *Handlers) Logout(c *gin.Context) {
	if token, err := c.Cookie(refreshTokenCookie); err == nil && token != "" {
		if err := h.server.DB().DeleteSession(token); err != nil {
			log.Error().Err(err).Msg("Failed to delete session")
		}
	}
	h.clearAuthCookies(c)
	RespondNoContent(c)
}

// Me handles GET /api/auth/me
func (h *Handlers) Me(c *gin.Context) {
	user, err := h.server.DB().GetUser(currentUserID(c))
	if err != nil {
		log.Error().Err(err).Msg("Failed to load user")
		RespondInternalError(c, "failed to load user")
		return
	}
	if user == nil {
		RespondUnauthorized(c, "account no longer exists")
		return
	}
	RespondData(c, userResponse(user))
}

// issueSession mints an access token for the user and, when newRefresh is
// set, a fresh refresh session. Tokens are delivered both in the response
// body and as cookies so SPA and cookie-only clients both work.
func (h *Handlers) issueSession(c *gin.Context, user *db.User, newRefresh bool) {
	accessToken, err := auth.IssueAccessToken(user.ID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to issue access token")
		RespondInternalError(c, "failed to issue token")
		return
	}

	if newRefresh {
		refreshToken := auth.NewSessionToken()
		if _, err := h.server.DB().CreateSession(refreshToken, user.ID); err != nil {
			log.Error().Err(err).Msg("Failed to create refresh session")
			RespondInternalError(c, "failed to create session")
			return
		}
		h.setAuthCookie(c, refreshTokenCookie, refreshToken, int(db.SessionDuration.Seconds()))
	}

	h.setAuthCookie(c, accessTokenCookie, accessToken, int(auth.AccessTokenDuration.Seconds()))
	RespondData(c, AuthResponse{User: userResponse(user), AccessToken: accessToken})
}

func (h *Handlers) setAuthCookie(c *gin.Context, name, value string, maxAge int) {
	secure := !h.server.Config().IsDevelopment()
	c.SetCookie(name, value, maxAge, "/", "", secure, true)
}

func (h *Handlers) clearAuthCookies(c *gin.Context) {
	h.setAuthCookie(c, accessTokenCookie, "", -1)
	h.setAuthCookie(c, refreshTokenCookie, "", -1)
}
