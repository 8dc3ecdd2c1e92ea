package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"quiz-service/internal/auth"
	"quiz-service/internal/service"
)

const (
	ctxUserID   = "userID"
	ctxUsername = "username"
)

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// POST /auth/
func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		var policyErr *auth.PolicyError
		switch {
		case errors.As(err, &policyErr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": policyErr.Reason})
		case errors.Is(err, service.ErrUserAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"detail": "username is already taken"})
		default:
			h.logger.WithError(err).Error("register user")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":       user.ID,
		"username": user.Username,
	})
}

// POST /auth/token
func (h *Handler) login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	token, err := h.users.Login(c.Request.Context(), username, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": service.ErrInvalidCredentials.Error()})
			return
		}
		h.logger.WithError(err).Error("login user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to login"})
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// GET /
func (h *Handler) currentUser(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"User": gin.H{
			"username": c.GetString(ctxUsername),
			"user_id":  c.GetInt64(ctxUserID),
		},
	})
}

// authMiddleware extracts and verifies the bearer token, storing the claims in
// the request context. Missing, malformed, invalid and expired tokens all end
// the request with 401.
func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "missing bearer token"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "invalid authorization header"})
			return
		}

		claims, err := auth.ParseToken(parts[1], h.jwtSecret)
		if err != nil {
			detail := "could not authenticate the user"
			if errors.Is(err, auth.ErrTokenExpired) {
				detail = "token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detail})
			return
		}

		c.Set(ctxUsername, claims.Subject)
		c.Set(ctxUserID, claims.UserID)

		c.Next()
	}
}
