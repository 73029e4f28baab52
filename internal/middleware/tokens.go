package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/windoze95/forkful-api/internal/config"
	"github.com/windoze95/forkful-api/internal/util"
)

// Token types carried in the "type" claim.
const (
	AccessToken  = "access"
	RefreshToken = "refresh"
)

var (
	// ErrInvalidToken is returned for unparseable, expired or wrongly signed tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrWrongTokenType is returned when a refresh token is used as an access token or vice versa.
	ErrWrongTokenType = errors.New("invalid token type")
	// ErrInvalidSubject is returned when the user_id claim is missing or malformed.
	ErrInvalidSubject = errors.New("invalid user_id in token")
)

// ParseToken verifies an HS256 token of the given type and returns its user ID.
func ParseToken(secret, tokenString, tokenType string) (uint, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	if t, ok := claims["type"].(string); !ok || t != tokenType {
		return 0, ErrWrongTokenType
	}

	// JSON numbers decode as float64
	idFloat, ok := claims["user_id"].(float64)
	if !ok || idFloat <= 0 {
		return 0, ErrInvalidSubject
	}
	return uint(idFloat), nil
}

// VerifyTokenMiddleware verifies the JWT token provided in the Authorization header.
func VerifyTokenMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))

		userID, err := ParseToken(cfg.EnvVars.JwtSecretKey, tokenString, AccessToken)
		switch {
		case errors.Is(err, ErrInvalidSubject):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id in token"})
			c.Abort()
			return
		case errors.Is(err, ErrWrongTokenType):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token type"})
			c.Abort()
			return
		case err != nil:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(util.UserIDKey, userID)
		c.Next()
	}
}
