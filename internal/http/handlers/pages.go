package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwellcms/inkwell/internal/config"
	"github.com/inkwellcms/inkwell/internal/domain/page"
	"github.com/inkwellcms/inkwell/internal/http/middlewares"
)

type PagesStore interface {
	List(ctx context.Context) ([]page.Page, error)
	GetByID(ctx context.Context, id int64) (page.Page, error)
	GetBySlug(ctx context.Context, slug string) (page.Page, error)
	Create(ctx context.Context, authorID int64, req page.CreateRequest) (page.Page, error)
	Update(ctx context.Context, id int64, p page.Patch) (page.Page, error)
	Delete(ctx context.Context, id int64) error
}

type PagesHandler struct {
	repo PagesStore
}

func NewPagesHandler(repo PagesStore) *PagesHandler {
	return &PagesHandler{repo: repo}
}

func (h *PagesHandler) ListPages(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	pages, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list pages")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"pages": pages})
}

// resolve looks up by numeric id or by slug, depending on the shape of
// the identifier.
func (h *PagesHandler) resolve(ctx context.Context, identifier string) (page.Page, error) {
	if isNumeric(identifier) {
		id, err := strconv.ParseInt(identifier, 10, 64)
		if err != nil {
			return page.Page{}, page.ErrNotFound
		}
		return h.repo.GetByID(ctx, id)
	}

	return h.repo.GetBySlug(ctx, identifier)
}

func (h *PagesHandler) GetPage(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	pg, err := h.resolve(cctx, ctx.Param("identifier"))

	if err != nil {
		if errors.Is(err, page.ErrNotFound) {
			RespondNotFound(ctx, "Page not found")
			return
		}
		RespondInternal(ctx, "Could not fetch page")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"page": pg})
}

func (h *PagesHandler) CreatePage(ctx *gin.Context) {
	ident, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req page.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	created, err := h.repo.Create(cctx, ident.ID, req)

	if err != nil {
		if errors.Is(err, page.ErrSlugTaken) {
			RespondConflict(ctx, "Slug already exists")
			return
		}
		RespondInternal(ctx, "Could not create page")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"page": created})
}

func (h *PagesHandler) UpdatePage(ctx *gin.Context) {
	ident, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var patch page.Patch

	if !BindJSON(ctx, &patch) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	existing, err := h.resolve(cctx, ctx.Param("identifier"))

	if err != nil {
		if errors.Is(err, page.ErrNotFound) {
			RespondNotFound(ctx, "Page not found")
			return
		}
		RespondInternal(ctx, "Could not update page")
		return
	}

	if !ident.CanMutate(existing.AuthorID) {
		RespondForbidden(ctx, "You may only modify your own pages")
		return
	}

	updated, err := h.repo.Update(cctx, existing.ID, patch)

	if err != nil {
		switch {
		case errors.Is(err, page.ErrNotFound):
			RespondNotFound(ctx, "Page not found")
		case errors.Is(err, page.ErrSlugTaken):
			RespondConflict(ctx, "Slug already exists")
		default:
			RespondInternal(ctx, "Could not update page")
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"page": updated})
}

func (h *PagesHandler) DeletePage(ctx *gin.Context) {
	ident, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	existing, err := h.resolve(cctx, ctx.Param("identifier"))

	if err != nil {
		if errors.Is(err, page.ErrNotFound) {
			RespondNotFound(ctx, "Page not found")
			return
		}
		RespondInternal(ctx, "Could not delete page")
		return
	}

	if !ident.CanMutate(existing.AuthorID) {
		RespondForbidden(ctx, "You may only delete your own pages")
		return
	}

	if err := h.repo.Delete(cctx, existing.ID); err != nil {
		if errors.Is(err, page.ErrNotFound) {
			RespondNotFound(ctx, "Page not found")
			return
		}
		RespondInternal(ctx, "Could not delete page")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Page deleted successfully"})
}
