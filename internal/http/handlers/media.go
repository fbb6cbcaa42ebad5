package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwellcms/inkwell/internal/config"
	"github.com/inkwellcms/inkwell/internal/domain/media"
	"github.com/inkwellcms/inkwell/internal/http/middlewares"
	"github.com/inkwellcms/inkwell/internal/uploads"
)

type MediaStore interface {
	List(ctx context.Context) ([]media.Media, error)
	GetByID(ctx context.Context, id int64) (media.Media, error)
	Create(ctx context.Context, uploadedBy int64, filename, originalName, mimeType string, size int64, path string) (media.Media, error)
	Delete(ctx context.Context, id int64) error
}

type FileStore interface {
	Save(src io.Reader, originalName string) (string, error)
	Remove(filename string) error
	PublicPath(filename string) string
}

type MediaHandler struct {
	repo     MediaStore
	files    FileStore
	maxBytes int64
}

func NewMediaHandler(repo MediaStore, files FileStore, maxBytes int64) *MediaHandler {
	return &MediaHandler{repo: repo, files: files, maxBytes: maxBytes}
}

func (h *MediaHandler) ListMedia(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	items, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list media")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"media": items})
}

func (h *MediaHandler) Upload(ctx *gin.Context) {
	ident, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	fileHeader, err := ctx.FormFile("file")

	if err != nil {
		RespondBadRequest(ctx, "No file uploaded", nil)
		return
	}

	if fileHeader.Size > h.maxBytes {
		RespondBadRequest(ctx, "File too large", nil)
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")

	if !uploads.AllowedType(fileHeader.Filename, mimeType) {
		RespondBadRequest(ctx, "Invalid file type", nil)
		return
	}

	src, err := fileHeader.Open()

	if err != nil {
		RespondInternal(ctx, "Could not read upload")
		return
	}

	defer src.Close()

	filename, err := h.files.Save(src, fileHeader.Filename)

	if err != nil {
		RespondInternal(ctx, "Could not store upload")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	row, err := h.repo.Create(
		cctx,
		ident.ID,
		filename,
		fileHeader.Filename,
		mimeType,
		fileHeader.Size,
		h.files.PublicPath(filename),
	)

	if err != nil {
		// don't leave an orphaned file behind
		_ = h.files.Remove(filename)
		RespondInternal(ctx, "Could not save media record")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"media": row})
}

func (h *MediaHandler) DeleteMedia(ctx *gin.Context) {
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
		if errors.Is(err, media.ErrNotFound) {
			RespondNotFound(ctx, "Media not found")
			return
		}
		RespondInternal(ctx, "Could not delete media")
		return
	}

	if !ident.CanMutate(existing.UploadedBy) {
		RespondForbidden(ctx, "You may only delete your own uploads")
		return
	}

	if err := h.repo.Delete(cctx, id); err != nil {
		if errors.Is(err, media.ErrNotFound) {
			RespondNotFound(ctx, "Media not found")
			return
		}
		RespondInternal(ctx, "Could not delete media")
		return
	}

	// the row is gone; an orphaned file on disk is harmless, a row
	// pointing at a missing file is not
	_ = h.files.Remove(existing.Filename)

	ctx.JSON(http.StatusOK, gin.H{"message": "Media deleted successfully"})
}
