package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwellcms/inkwell/internal/config"
	"github.com/inkwellcms/inkwell/internal/domain/client"
	"github.com/inkwellcms/inkwell/internal/http/middlewares"
)

type ClientsStore interface {
	List(ctx context.Context) ([]client.Client, error)
	GetByID(ctx context.Context, id int64) (client.Client, error)
	Create(ctx context.Context, createdBy int64, req client.CreateRequest) (client.Client, error)
	Update(ctx context.Context, id int64, p client.Patch) (client.Client, error)
	Delete(ctx context.Context, id int64) error
}

type ClientsHandler struct {
	repo ClientsStore
}

func NewClientsHandler(repo ClientsStore) *ClientsHandler {
	return &ClientsHandler{repo: repo}
}

func (h *ClientsHandler) ListClients(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	clients, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list clients")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"clients": clients})
}

func (h *ClientsHandler) GetClient(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	c, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			RespondNotFound(ctx, "Client not found")
			return
		}
		RespondInternal(ctx, "Could not fetch client")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"client": c})
}

func (h *ClientsHandler) CreateClient(ctx *gin.Context) {
	ident, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req client.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	created, err := h.repo.Create(cctx, ident.ID, req)

	if err != nil {
		if errors.Is(err, client.ErrEmailTaken) {
			RespondConflict(ctx, "Email already exists")
			return
		}
		RespondInternal(ctx, "Could not create client")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"client": created})
}

func (h *ClientsHandler) UpdateClient(ctx *gin.Context) {
	ident, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var patch client.Patch

	if !BindJSON(ctx, &patch) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	existing, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			RespondNotFound(ctx, "Client not found")
			return
		}
		RespondInternal(ctx, "Could not update client")
		return
	}

	if !ident.CanMutate(existing.CreatedBy) {
		RespondForbidden(ctx, "You may only modify your own clients")
		return
	}

	updated, err := h.repo.Update(cctx, id, patch)

	if err != nil {
		switch {
		case errors.Is(err, client.ErrNotFound):
			RespondNotFound(ctx, "Client not found")
		case errors.Is(err, client.ErrEmailTaken):
			RespondConflict(ctx, "Email already exists")
		default:
			RespondInternal(ctx, "Could not update client")
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"client": updated})
}

func (h *ClientsHandler) DeleteClient(ctx *gin.Context) {
	ident, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	existing, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			RespondNotFound(ctx, "Client not found")
			return
		}
		RespondInternal(ctx, "Could not delete client")
		return
	}

	if !ident.CanMutate(existing.CreatedBy) {
		RespondForbidden(ctx, "You may only delete your own clients")
		return
	}

	if err := h.repo.Delete(cctx, id); err != nil {
		if errors.Is(err, client.ErrNotFound) {
			RespondNotFound(ctx, "Client not found")
			return
		}
		RespondInternal(ctx, "Could not delete client")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Client deleted successfully"})
}
