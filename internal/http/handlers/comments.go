package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwellcms/inkwell/internal/config"
	"github.com/inkwellcms/inkwell/internal/domain/comment"
	"github.com/inkwellcms/inkwell/internal/domain/post"
	"github.com/inkwellcms/inkwell/internal/http/middlewares"
)

type CommentsStore interface {
	ListForPost(ctx context.Context, postID int64, status *string) ([]comment.Comment, error)
	Create(ctx context.Context, postID int64, req comment.CreateRequest) (comment.Comment, error)
	SetStatus(ctx context.Context, id int64, status string) (comment.Comment, error)
	Delete(ctx context.Context, id int64) error
}

type PostChecker interface {
	GetByID(ctx context.Context, id int64) (post.Post, error)
	GetBySlug(ctx context.Context, slug string) (post.Post, error)
}

type CommentsHandler struct {
	repo  CommentsStore
	posts PostChecker
}

func NewCommentsHandler(repo CommentsStore, posts PostChecker) *CommentsHandler {
	return &CommentsHandler{repo: repo, posts: posts}
}

func (h *CommentsHandler) resolvePost(ctx context.Context, identifier string) (post.Post, error) {
	if isNumeric(identifier) {
		id, err := strconv.ParseInt(identifier, 10, 64)
		if err != nil {
			return post.Post{}, post.ErrNotFound
		}
		return h.posts.GetByID(ctx, id)
	}

	return h.posts.GetBySlug(ctx, identifier)
}

// ListComments shows approved comments to the public; authenticated
// staff see everything.
func (h *CommentsHandler) ListComments(ctx *gin.Context) {
	var status *string

	if _, authed := middlewares.IdentityFromContext(ctx); !authed {
		approved := comment.StatusApproved
		status = &approved
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	target, err := h.resolvePost(cctx, ctx.Param("identifier"))

	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			RespondNotFound(ctx, "Post not found")
			return
		}
		RespondInternal(ctx, "Could not list comments")
		return
	}

	comments, err := h.repo.ListForPost(cctx, target.ID, status)

	if err != nil {
		RespondInternal(ctx, "Could not list comments")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"comments": comments})
}

func (h *CommentsHandler) CreateComment(ctx *gin.Context) {
	var req comment.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	target, err := h.resolvePost(cctx, ctx.Param("identifier"))

	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			RespondNotFound(ctx, "Post not found")
			return
		}
		RespondInternal(ctx, "Could not create comment")
		return
	}

	created, err := h.repo.Create(cctx, target.ID, req)

	if err != nil {
		RespondInternal(ctx, "Could not create comment")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"comment": created})
}

type moderateCommentRequest struct {
	Status string `json:"status" binding:"required,oneof=pending approved rejected"`
}

func (h *CommentsHandler) ModerateComment(ctx *gin.Context) {
	id, ok := pathID(ctx, "commentId")
	if !ok {
		return
	}

	var req moderateCommentRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	updated, err := h.repo.SetStatus(cctx, id, req.Status)

	if err != nil {
		if errors.Is(err, comment.ErrNotFound) {
			RespondNotFound(ctx, "Comment not found")
			return
		}
		RespondInternal(ctx, "Could not update comment")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"comment": updated})
}

func (h *CommentsHandler) DeleteComment(ctx *gin.Context) {
	id, ok := pathID(ctx, "commentId")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if err := h.repo.Delete(cctx, id); err != nil {
		if errors.Is(err, comment.ErrNotFound) {
			RespondNotFound(ctx, "Comment not found")
			return
		}
		RespondInternal(ctx, "Could not delete comment")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
