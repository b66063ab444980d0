package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/quayside-ops/panel-backend-go/internal/panel"
	apperrors "github.com/quayside-ops/panel-backend-go/pkg/errors"
	"github.com/quayside-ops/panel-backend-go/pkg/utils"
)

// LoginRequest is the login payload
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials against the panel and issues a JWT
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	account, err := h.panel.VerifyCredentials(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		var apiErr *panel.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			utils.SendError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.log.WithError(err).Error("Credential verification failed")
		utils.SendError(c, apperrors.ErrUpstream.Code, apperrors.ErrUpstream.Message)
		return
	}

	expiry := time.Now().Add(time.Duration(h.cfg.Auth.TokenExpiry) * time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  account.ID,
		"username": account.Username,
		"admin":    account.Admin,
		"exp":      expiry.Unix(),
		"iat":      time.Now().Unix(),
	})

	signed, err := token.SignedString([]byte(h.cfg.Auth.JWTSecret))
	if err != nil {
		h.log.WithError(err).Error("Token signing failed")
		utils.SendError(c, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	utils.SendSuccess(c, gin.H{
		"token":      signed,
		"expires_at": expiry.UTC().Format(time.RFC3339),
		"user": gin.H{
			"id":       account.ID,
			"username": account.Username,
			"admin":    account.Admin,
		},
	})
}
