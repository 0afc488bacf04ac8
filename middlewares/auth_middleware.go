package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/oncounter-billing/utils"
)

const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
)

// TokenParser validates access tokens and the account they were issued to.
type TokenParser interface {
	ParseAccess(ctx context.Context, token string) (*utils.CustomClaims, error)
}

// AuthMiddleware resolves the caller from an optional Bearer access token.
// Requests without a token continue anonymously; a bad token is rejected.
func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Authorization header must be a Bearer token"))
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := tokens.ParseAccess(c.Request.Context(), tokenString)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Next()
	}
}

// Principal returns the authenticated account id, if any.
func Principal(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}
