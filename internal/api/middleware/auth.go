package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/quayside-ops/panel-backend-go/pkg/utils"
)

// AuthRequired validates JWT tokens (strict auth)
func AuthRequired(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parseToken(c, jwtSecret)
		if err != "" {
			utils.SendError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}

		storeClaims(c, claims)
		c.Next()
	}
}

// AuthOptional parses a JWT token when present so downstream middleware can
// key on the caller's identity, but never rejects the request. Invalid tokens
// are treated as anonymous.
func AuthOptional(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, errMsg := parseToken(c, jwtSecret); errMsg == "" {
			storeClaims(c, claims)
		}
		c.Next()
	}
}

// AdminRequired rejects authenticated non-admin callers. Must run after
// AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("is_admin") {
			utils.SendError(c, http.StatusForbidden, "Admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// parseToken extracts and validates the Bearer token. Returns claims on
// success or a user-facing error message.
func parseToken(c *gin.Context, jwtSecret string) (jwt.MapClaims, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, "Authorization header required"
	}

	// Extract token from "Bearer <token>"
	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return nil, "Invalid authorization header format"
	}

	token, err := jwt.Parse(tokenParts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, "Invalid token"
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, "Invalid token"
	}
	return claims, ""
}

func storeClaims(c *gin.Context, claims jwt.MapClaims) {
	if userID, ok := claims["user_id"].(string); ok {
		c.Set("user_id", userID)
	}
	if username, ok := claims["username"].(string); ok {
		c.Set("username", username)
	}
	if admin, ok := claims["admin"].(bool); ok {
		c.Set("is_admin", admin)
	}
}
