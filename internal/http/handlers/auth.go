package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/todovault/todovault/internal/domain/user"
	"github.com/todovault/todovault/internal/security"
)

type UserReader interface {
	GetByName(ctx context.Context, name string) (user.User, error)
}

type TokenIssuer interface {
	Issue(publicID string) (string, error)
}

type AuthHandler struct {
	users  UserReader
	tokens TokenIssuer
}

func NewAuthHandler(users UserReader, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{
		users:  users,
		tokens: tokens,
	}
}

// Login exchanges HTTP Basic credentials for a bearer token. Missing
// credentials, an unknown name and a wrong password all produce the exact
// same response so the endpoint cannot be used to enumerate accounts.
func (h *AuthHandler) Login(ctx *gin.Context) {
	name, password, ok := ctx.Request.BasicAuth()

	if !ok || name == "" || password == "" {
		respondCouldNotVerify(ctx)
		return
	}

	foundUser, err := h.users.GetByName(ctx.Request.Context(), name)

	if err != nil {
		respondCouldNotVerify(ctx)
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, password)

	if err != nil {
		respondCouldNotVerify(ctx)
		return
	}

	token, err := h.tokens.Issue(foundUser.PublicID)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
	})
}

func respondCouldNotVerify(ctx *gin.Context) {
	ctx.Header("WWW-Authenticate", `Basic realm="Login Required!"`)
	// fixed body, no request id: failure causes must stay indistinguishable
	ctx.JSON(http.StatusUnauthorized, gin.H{"message": "Could not verify"})
}
