package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwellcms/inkwell/internal/cache"
	"github.com/inkwellcms/inkwell/internal/config"
	"github.com/inkwellcms/inkwell/internal/domain/setting"
)

type SettingsStore interface {
	GetAll(ctx context.Context) ([]setting.Setting, error)
	Get(ctx context.Context, key string) (setting.Setting, error)
	UpsertMany(ctx context.Context, values map[string]setting.Value) error
}

type SettingsHandler struct {
	repo  SettingsStore
	cache *cache.Cache
}

func NewSettingsHandler(repo SettingsStore, c *cache.Cache) *SettingsHandler {
	return &SettingsHandler{repo: repo, cache: c}
}

const settingsCacheKey = "settings:all"

func (h *SettingsHandler) GetSettings(ctx *gin.Context) {
	if h.cache != nil {
		if cached, ok := h.cache.Get(settingsCacheKey); ok {
			if payload, ok := cached.(gin.H); ok {
				RespondJSONWithETag(ctx, http.StatusOK, payload)
				return
			}
		}
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	all, err := h.repo.GetAll(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not load settings")
		return
	}

	settings := make(map[string]setting.Value, len(all))

	for _, s := range all {
		settings[s.Key] = s.Value
	}

	payload := gin.H{"settings": settings}

	if h.cache != nil {
		h.cache.Set(settingsCacheKey, payload)
	}

	RespondJSONWithETag(ctx, http.StatusOK, payload)
}

func (h *SettingsHandler) GetSetting(ctx *gin.Context) {
	key := ctx.Param("key")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	s, err := h.repo.Get(cctx, key)

	if err != nil {
		if errors.Is(err, setting.ErrNotFound) {
			RespondNotFound(ctx, "Setting not found")
			return
		}
		RespondInternal(ctx, "Could not load setting")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{s.Key: s.Value})
}

// UpdateSettings takes a flat JSON object and upserts every key with a
// type tag inferred from its JSON value.
func (h *SettingsHandler) UpdateSettings(ctx *gin.Context) {
	var body map[string]json.RawMessage

	if err := ctx.ShouldBindJSON(&body); err != nil {
		RespondBadRequest(ctx, "Invalid request body", nil)
		return
	}

	if len(body) == 0 {
		RespondBadRequest(ctx, "No settings supplied", nil)
		return
	}

	values := make(map[string]setting.Value, len(body))

	for key, raw := range body {
		val, err := setting.FromJSON(raw)

		if err != nil {
			RespondBadRequest(ctx, "Invalid value for "+key, nil)
			return
		}

		values[key] = val
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	if err := h.repo.UpsertMany(cctx, values); err != nil {
		RespondInternal(ctx, "Could not update settings")
		return
	}

	if h.cache != nil {
		h.cache.Delete(settingsCacheKey)
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Settings updated successfully"})
}
