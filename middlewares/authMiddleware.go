package middlewares

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
)

// extractToken pulls the token from the Authorization header or the
// auth_token cookie.
func extractToken(c *gin.Context) string {
	authHeader := c.Request.Header.Get("Authorization")
	if authHeader != "" {
		if strings.HasPrefix(authHeader, "Bearer ") {
			return authHeader[7:]
		}
		return authHeader
	}
	if cookie, err := c.Cookie("auth_token"); err == nil {
		return cookie
	}
	return ""
}

// setIdentity validates the token and stores the identity claims on the
// context. Returns false when the token is missing or invalid.
func setIdentity(c *gin.Context, tokenString string) bool {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return false
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		log.Printf("Token validation failed: %v", err)
		return false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	userID, exists := claims["user_id"]
	if !exists {
		return false
	}

	c.Set("user_id", userID)
	if email, ok := claims["user_email"].(string); ok {
		c.Set("user_email", email)
	}
	if name, ok := claims["user_name"].(string); ok {
		c.Set("user_name", name)
	}
	return true
}

// AuthMiddleware rejects requests without a valid token.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No authorization token provided"})
			c.Abort()
			return
		}

		if os.Getenv("JWT_SECRET") == "" {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "JWT secret not configured"})
			c.Abort()
			return
		}

		if !setIdentity(c, tokenString) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization token"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// OptionalAuthMiddleware sets the identity when a valid token is present and
// lets anonymous requests through untouched. Problem submission accepts both.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := extractToken(c); tokenString != "" {
			setIdentity(c, tokenString)
		}
		c.Next()
	}
}
