package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwellcms/inkwell/internal/config"
	"github.com/inkwellcms/inkwell/internal/domain/taxonomy"
)

type TaxonomyStore interface {
	ListCategories(ctx context.Context) ([]taxonomy.Category, error)
	CreateCategory(ctx context.Context, req taxonomy.CreateCategoryRequest) (taxonomy.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	ListTags(ctx context.Context) ([]taxonomy.Tag, error)
	CreateTag(ctx context.Context, req taxonomy.CreateTagRequest) (taxonomy.Tag, error)
	DeleteTag(ctx context.Context, id int64) error
}

type TaxonomyHandler struct {
	repo TaxonomyStore
}

func NewTaxonomyHandler(repo TaxonomyStore) *TaxonomyHandler {
	return &TaxonomyHandler{repo: repo}
}

func (h *TaxonomyHandler) ListCategories(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	categories, err := h.repo.ListCategories(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list categories")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *TaxonomyHandler) CreateCategory(ctx *gin.Context) {
	var req taxonomy.CreateCategoryRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	created, err := h.repo.CreateCategory(cctx, req)

	if err != nil {
		if errors.Is(err, taxonomy.ErrSlugTaken) {
			RespondConflict(ctx, "Slug already exists")
			return
		}
		RespondInternal(ctx, "Could not create category")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"category": created})
}

func (h *TaxonomyHandler) DeleteCategory(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if err := h.repo.DeleteCategory(cctx, id); err != nil {
		if errors.Is(err, taxonomy.ErrNotFound) {
			RespondNotFound(ctx, "Category not found")
			return
		}
		RespondInternal(ctx, "Could not delete category")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

func (h *TaxonomyHandler) ListTags(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	tags, err := h.repo.ListTags(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list tags")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"tags": tags})
}

func (h *TaxonomyHandler) CreateTag(ctx *gin.Context) {
	var req taxonomy.CreateTagRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	created, err := h.repo.CreateTag(cctx, req)

	if err != nil {
		if errors.Is(err, taxonomy.ErrSlugTaken) {
			RespondConflict(ctx, "Slug already exists")
			return
		}
		RespondInternal(ctx, "Could not create tag")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"tag": created})
}

func (h *TaxonomyHandler) DeleteTag(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if err := h.repo.DeleteTag(cctx, id); err != nil {
		if errors.Is(err, taxonomy.ErrNotFound) {
			RespondNotFound(ctx, "Tag not found")
			return
		}
		RespondInternal(ctx, "Could not delete tag")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Tag deleted successfully"})
}
