package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

// TokenTTL is how long an issued token stays valid.
const TokenTTL = 72 * time.Hour

// Abort writes an error response and stops the chain.
type Abort func(c *gin.Context, code int, message string)

// UserSource resolves the token subject to a stored user.
type UserSource interface {
	GetUserByID(ctx context.Context, id string) (model.User, error)
}

// GenerateJWT signs a token embedding the user's id in the "sub" claim and
// their role in "role".
func GenerateJWT(user model.User, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"exp":  time.Now().Add(TokenTTL).Unix(),
	})
	return token.SignedString([]byte(secret))
}

// parseToken verifies the JWT and returns the user ID.
func parseToken(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("invalid sub claim")
	}
	return sub, nil
}

// JWTMiddleware checks "Authorization: Bearer <token>", verifies it, loads
// the user and sets "currentUser" in the context. Inactive users are refused.
func JWTMiddleware(secret string, users UserSource, abort Abort) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, http.StatusUnauthorized, "missing auth header")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abort(c, http.StatusUnauthorized, "invalid auth header")
			return
		}

		userID, err := parseToken(parts[1], secret)
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid token")
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			log.Warn().Err(err).Str("sub", userID).Msg("[auth] token for unknown user")
			abort(c, http.StatusUnauthorized, "user not found")
			return
		}
		if !user.IsActive {
			abort(c, http.StatusForbidden, "account disabled")
			return
		}
		c.Set(currentUserKey, &user)
		c.Next()
	}
}
