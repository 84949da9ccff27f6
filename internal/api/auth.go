package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pulsesocial/pulse/internal/apperr"
	"github.com/pulsesocial/pulse/internal/auth"
	"github.com/pulsesocial/pulse/internal/db"
	"github.com/pulsesocial/pulse/internal/models"
	"github.com/pulsesocial/pulse/pkg/logging"
)

// AuthAPI handles signup, login and token lifecycle
type AuthAPI struct {
	users  *db.UserRepository
	tokens *auth.TokenManager
	logger *zap.Logger
}

// NewAuthAPI creates a new auth API handler
func NewAuthAPI(users *db.UserRepository, tokens *auth.TokenManager) *AuthAPI {
	return &AuthAPI{
		users:  users,
		tokens: tokens,
		logger: logging.WithComponent("auth-api"),
	}
}

type signupRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=50"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type tokenResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresAt    time.Time    `json:"expiresAt"`
	User         *models.User `json:"user"`
}

// Signup registers a new account
func (a *AuthAPI) Signup(c *gin.Context) {
	var req signupRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()

	if existing, err := a.users.GetByUsername(ctx, req.Username); err != nil {
		respondError(c, err)
		return
	} else if existing != nil {
		respondError(c, apperr.Conflict("username is already taken"))
		return
	}
	if existing, err := a.users.GetByEmail(ctx, req.Email); err != nil {
		respondError(c, err)
		return
	} else if existing != nil {
		respondError(c, apperr.Conflict("email is already registered"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		IsActive:     true,
	}
	if req.FirstName != "" {
		user.FirstName = sql.NullString{String: req.FirstName, Valid: true}
	}
	if req.LastName != "" {
		user.LastName = sql.NullString{String: req.LastName, Valid: true}
	}

	if err := a.users.Create(ctx, user); err != nil {
		respondError(c, err)
		return
	}

	a.logger.Info("User registered",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username))

	resp, err := a.issueTokens(c, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "user created successfully", "auth": resp})
}

// Login authenticates with email and password
func (a *AuthAPI) Login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()

	user, err := a.users.GetByEmail(ctx, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		respondError(c, apperr.Unauthorized("invalid credentials"))
		return
	}
	if !user.IsActive {
		respondError(c, apperr.Forbidden("account has been deactivated"))
		return
	}

	user.LastLogin = sql.NullTime{Time: time.Now(), Valid: true}
	if err := a.users.Update(ctx, user); err != nil {
		respondError(c, err)
		return
	}

	resp, err := a.issueTokens(c, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "auth": resp})
}

// Refresh rotates a refresh token and issues a new access token
func (a *AuthAPI) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()

	stored, err := a.users.GetRefreshToken(ctx, auth.HashRefreshToken(req.RefreshToken))
	if err != nil {
		respondError(c, err)
		return
	}
	if stored == nil || time.Now().After(stored.ExpiresAt) {
		respondError(c, apperr.Unauthorized("invalid or expired refresh token"))
		return
	}

	user, err := a.users.GetByID(ctx, stored.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil || !user.IsActive {
		respondError(c, apperr.Unauthorized("account is not active"))
		return
	}

	// Rotation: the presented token is single use
	if err := a.users.DeleteRefreshToken(ctx, stored.TokenHash); err != nil {
		respondError(c, err)
		return
	}

	resp, err := a.issueTokens(c, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "token refreshed", "auth": resp})
}

// Logout revokes the presented refresh token, or every session when
// none is given
func (a *AuthAPI) Logout(c *gin.Context) {
	user := currentUser(c)

	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		if err := a.users.DeleteRefreshTokensForUser(c.Request.Context(), user.ID); err != nil {
			respondError(c, err)
			return
		}
		respondMessage(c, http.StatusOK, "logged out of all sessions")
		return
	}

	if err := a.users.DeleteRefreshToken(c.Request.Context(), auth.HashRefreshToken(req.RefreshToken)); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "logged out")
}

func (a *AuthAPI) issueTokens(c *gin.Context, user *models.User) (*tokenResponse, error) {
	access, expiresAt, err := a.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}

	raw, hash, refreshExpiry := a.tokens.NewRefreshToken()
	err = a.users.CreateRefreshToken(c.Request.Context(), &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: refreshExpiry,
	})
	if err != nil {
		return nil, err
	}

	return &tokenResponse{
		AccessToken:  access,
		RefreshToken: raw,
		ExpiresAt:    expiresAt,
		User:         user,
	}, nil
}
