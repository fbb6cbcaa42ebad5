package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwellcms/inkwell/internal/cache/redisclient"
	"github.com/inkwellcms/inkwell/internal/config"
	"github.com/inkwellcms/inkwell/internal/repo/postgres"
)

type StatsReader interface {
	Stats(ctx context.Context) (postgres.Stats, error)
}

type DashboardHandler struct {
	repo  StatsReader
	redis *redisclient.Client
}

func NewDashboardHandler(repo StatsReader, redis *redisclient.Client) *DashboardHandler {
	return &DashboardHandler{repo: repo, redis: redis}
}

const (
	statsCacheKey = "dashboard:stats"
	statsCacheTTL = 30 * time.Second
)

func (h *DashboardHandler) GetStats(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	if h.redis != nil {
		if raw, err := h.redis.Get(cctx, statsCacheKey); err == nil && raw != "" {
			var stats postgres.Stats
			if json.Unmarshal([]byte(raw), &stats) == nil {
				ctx.JSON(http.StatusOK, gin.H{"stats": stats})
				return
			}
		}
	}

	stats, err := h.repo.Stats(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not load dashboard stats")
		return
	}

	if h.redis != nil {
		if raw, err := json.Marshal(stats); err == nil {
			// best effort; a cache miss next time is fine
			_ = h.redis.Set(cctx, statsCacheKey, string(raw), statsCacheTTL)
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"stats": stats})
}
