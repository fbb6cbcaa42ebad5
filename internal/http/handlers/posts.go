package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwellcms/inkwell/internal/config"
	"github.com/inkwellcms/inkwell/internal/domain/post"
	"github.com/inkwellcms/inkwell/internal/domain/taxonomy"
	"github.com/inkwellcms/inkwell/internal/http/middlewares"
)

type PostsStore interface {
	List(ctx context.Context, filter post.ListFilter) ([]post.Post, error)
	GetByID(ctx context.Context, id int64) (post.Post, error)
	GetBySlug(ctx context.Context, slug string) (post.Post, error)
	Create(ctx context.Context, authorID int64, req post.CreateRequest) (post.Post, error)
	Update(ctx context.Context, id int64, p post.Patch) (post.Post, error)
	Delete(ctx context.Context, id int64) error
}

type PostTermsReader interface {
	CategoriesForPost(ctx context.Context, postID int64) ([]taxonomy.Category, error)
	TagsForPost(ctx context.Context, postID int64) ([]taxonomy.Tag, error)
}

type PostsHandler struct {
	repo  PostsStore
	terms PostTermsReader
}

func NewPostsHandler(repo PostsStore, terms PostTermsReader) *PostsHandler {
	return &PostsHandler{repo: repo, terms: terms}
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func (h *PostsHandler) ListPosts(ctx *gin.Context) {
	filter := post.ListFilter{
		Limit:  queryInt(ctx, "limit", defaultListLimit),
		Offset: queryInt(ctx, "offset", 0),
	}

	if filter.Limit <= 0 || filter.Limit > maxListLimit {
		filter.Limit = defaultListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	if status := ctx.Query("status"); status != "" {
		filter.Status = &status
	}

	if rawAuthor := ctx.Query("author_id"); rawAuthor != "" {
		authorID, err := strconv.ParseInt(rawAuthor, 10, 64)

		if err != nil {
			RespondBadRequest(ctx, "Invalid author_id", nil)
			return
		}

		filter.AuthorID = &authorID
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	posts, err := h.repo.List(cctx, filter)

	if err != nil {
		RespondInternal(ctx, "Could not list posts")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"posts": posts})
}

// resolve looks up by numeric id or by slug, depending on the shape of
// the identifier.
func (h *PostsHandler) resolve(ctx context.Context, identifier string) (post.Post, error) {
	if isNumeric(identifier) {
		id, err := strconv.ParseInt(identifier, 10, 64)
		if err != nil {
			return post.Post{}, post.ErrNotFound
		}
		return h.repo.GetByID(ctx, id)
	}

	return h.repo.GetBySlug(ctx, identifier)
}

func (h *PostsHandler) GetPost(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	p, err := h.resolve(cctx, ctx.Param("identifier"))

	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			RespondNotFound(ctx, "Post not found")
			return
		}
		RespondInternal(ctx, "Could not fetch post")
		return
	}

	categories, err := h.terms.CategoriesForPost(cctx, p.ID)
	if err != nil {
		RespondInternal(ctx, "Could not fetch post")
		return
	}

	tags, err := h.terms.TagsForPost(cctx, p.ID)
	if err != nil {
		RespondInternal(ctx, "Could not fetch post")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"post":       p,
		"categories": categories,
		"tags":       tags,
	})
}

func (h *PostsHandler) CreatePost(ctx *gin.Context) {
	ident, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req post.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	created, err := h.repo.Create(cctx, ident.ID, req)

	if err != nil {
		if errors.Is(err, post.ErrSlugTaken) {
			RespondConflict(ctx, "Slug already exists")
			return
		}
		RespondInternal(ctx, "Could not create post")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"post": created})
}

func (h *PostsHandler) UpdatePost(ctx *gin.Context) {
	ident, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var patch post.Patch

	if !BindJSON(ctx, &patch) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	existing, err := h.resolve(cctx, ctx.Param("identifier"))

	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			RespondNotFound(ctx, "Post not found")
			return
		}
		RespondInternal(ctx, "Could not update post")
		return
	}

	if !ident.CanMutate(existing.AuthorID) {
		RespondForbidden(ctx, "You may only modify your own posts")
		return
	}

	updated, err := h.repo.Update(cctx, existing.ID, patch)

	if err != nil {
		switch {
		case errors.Is(err, post.ErrNotFound):
			RespondNotFound(ctx, "Post not found")
		case errors.Is(err, post.ErrSlugTaken):
			RespondConflict(ctx, "Slug already exists")
		default:
			RespondInternal(ctx, "Could not update post")
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"post": updated})
}

func (h *PostsHandler) DeletePost(ctx *gin.Context) {
	ident, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	existing, err := h.resolve(cctx, ctx.Param("identifier"))

	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			RespondNotFound(ctx, "Post not found")
			return
		}
		RespondInternal(ctx, "Could not delete post")
		return
	}

	if !ident.CanMutate(existing.AuthorID) {
		RespondForbidden(ctx, "You may only delete your own posts")
		return
	}

	if err := h.repo.Delete(cctx, existing.ID); err != nil {
		if errors.Is(err, post.ErrNotFound) {
			RespondNotFound(ctx, "Post not found")
			return
		}
		RespondInternal(ctx, "Could not delete post")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}
