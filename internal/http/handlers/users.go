package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwellcms/inkwell/internal/config"
	"github.com/inkwellcms/inkwell/internal/domain/user"
	"github.com/inkwellcms/inkwell/internal/http/middlewares"
)

type UsersStore interface {
	List(ctx context.Context) ([]user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	Update(ctx context.Context, id int64, p user.Patch) (user.User, error)
	Delete(ctx context.Context, id int64) error
}

type UsersHandler struct {
	repo UsersStore
}

func NewUsersHandler(repo UsersStore) *UsersHandler {
	return &UsersHandler{repo: repo}
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	users, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *UsersHandler) GetUser(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not fetch user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	ident, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var patch user.Patch

	if !BindJSON(ctx, &patch) {
		return
	}

	// only admins may touch roles
	if patch.Role != nil && !ident.IsAdmin() {
		RespondForbidden(ctx, "Only admins can change roles")
		return
	}

	// users may only update themselves unless admin
	if id != ident.ID && !ident.IsAdmin() {
		RespondForbidden(ctx, "You may only modify your own account")
		return
	}

	if patch.Empty() {
		RespondBadRequest(ctx, "No fields to update", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	updated, err := h.repo.Update(cctx, id, patch)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not update user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": updated})
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	ident, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	// admins cannot remove their own account
	if id == ident.ID {
		RespondBadRequest(ctx, "Cannot delete yourself", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if err := h.repo.Delete(cctx, id); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not delete user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
