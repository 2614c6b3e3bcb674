package middlewares

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/todovault/todovault/internal/domain/user"
)

// TokenHeader is where clients present their bearer token.
const TokenHeader = "x-access-token"

// Keep these interfaces small so tests can fake them easily.
type TokenVerifier interface {
	Verify(token string) (publicID string, err error)
}

type UserResolver interface {
	GetByPublicID(ctx context.Context, publicID string) (user.User, error)
}

type AuthMiddleware struct {
	tokens TokenVerifier
	users  UserResolver
}

func NewAuthMiddleware(tokens TokenVerifier, users UserResolver) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// RequireAuth verifies the x-access-token header, resolves the caller and
// stashes the full user record on the context. A token whose public ID no
// longer maps to a user is rejected outright: a deleted account must not be
// able to keep acting on a leftover token.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(TokenHeader)

		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Token does not exist!",
			})
			return
		}

		publicID, err := m.tokens.Verify(token)

		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Token invalid!",
			})
			return
		}

		caller, err := m.users.GetByPublicID(c.Request.Context(), publicID)

		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Token invalid!",
			})
			return
		}

		SetCurrentUser(c, caller)

		c.Next()
	}
}

// RequireAdmin gates the user management routes. Must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CurrentUser(c)

		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Token does not exist!",
			})
			return
		}

		if !caller.Admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": "Action not permitted!",
			})
			return
		}

		c.Next()
	}
}

// SetCurrentUser stashes the caller on the context. RequireAuth does this
// for real requests; handler tests use it directly.
func SetCurrentUser(c *gin.Context, u user.User) {
	c.Set(ctxCurrentUser, u)
}

// CurrentUser returns the caller resolved by RequireAuth.
func CurrentUser(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(ctxCurrentUser)

	if !ok {
		return user.User{}, false
	}

	u, ok := v.(user.User)
	return u, ok
}
