package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/todovault/todovault/internal/domain/user"
	"github.com/todovault/todovault/internal/security"
)

type UserStore interface {
	List(ctx context.Context) ([]user.User, error)
	GetByPublicID(ctx context.Context, publicID string) (user.User, error)
	Create(ctx context.Context, name, passwordHash string) (user.User, error)
	Promote(ctx context.Context, publicID string) error
	Delete(ctx context.Context, publicID string) error
}

// UsersHandler implements the admin-only account management routes. Admin
// gating happens in middleware; by the time these run the caller is known to
// be an administrator.
type UsersHandler struct {
	users UserStore
}

func NewUsersHandler(users UserStore) *UsersHandler {
	return &UsersHandler{users: users}
}

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Password hashes never leave the store layer: user.User tags the hash
// json:"-", so serializing the domain type cannot leak it.

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	users, err := h.users.List(ctx.Request.Context())

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"users": users,
	})
}

func (h *UsersHandler) GetUser(ctx *gin.Context) {
	publicID := ctx.Param("public_id")

	u, err := h.users.GetByPublicID(ctx.Request.Context(), publicID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User does not exist!")
			return
		}
		RespondInternal(ctx, "Could not fetch user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": u,
	})
}

func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	var req CreateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	_, err = h.users.Create(ctx.Request.Context(), req.Name, hash)

	if err != nil {
		if errors.Is(err, user.ErrNameTaken) {
			RespondConflict(ctx, "Name is already taken.")
			return
		}
		RespondInternal(ctx, "Could not create user")
		return
	}

	RespondMessage(ctx, http.StatusCreated, "New user created successfully!")
}

func (h *UsersHandler) PromoteUser(ctx *gin.Context) {
	publicID := ctx.Param("public_id")

	err := h.users.Promote(ctx.Request.Context(), publicID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User does not exist!")
			return
		}
		RespondInternal(ctx, "Could not promote user")
		return
	}

	RespondMessage(ctx, http.StatusOK, "The user has been granted administrative privileges.")
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	publicID := ctx.Param("public_id")

	err := h.users.Delete(ctx.Request.Context(), publicID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User does not exist!")
			return
		}
		RespondInternal(ctx, "Could not delete user")
		return
	}

	RespondMessage(ctx, http.StatusOK, "User deleted successfully!")
}
