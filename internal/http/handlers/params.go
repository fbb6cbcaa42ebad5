package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// pathID parses a numeric :id param, responding 400 on garbage.
func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)

	if err != nil || id <= 0 {
		RespondBadRequest(ctx, "Invalid id", nil)
		return 0, false
	}

	return id, true
}

// isNumeric distinguishes an id lookup from a slug lookup.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func queryInt(ctx *gin.Context, name string, fallback int) int {
	raw := ctx.Query(name)
	if raw == "" {
		return fallback
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return n
}
