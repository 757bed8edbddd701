package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/tunearena/gateway/internal/arena"
)

// GetSystems lists the registered system keys as a bare array, sorted
// for a stable response.
func (h *Handler) GetSystems(c *gin.Context) {
	if h.injectFlakiness(c) {
		return
	}

	keys := make([]arena.SystemKey, 0, len(h.catalog))
	for key := range h.catalog {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})

	c.JSON(http.StatusOK, keys)
}

// GetPrebaked returns the curated prompt set as a bare map keyed by
// checksum, the same key the frontend sends back through
// prompt_detailed.
func (h *Handler) GetPrebaked(c *gin.Context) {
	if h.injectFlakiness(c) {
		return
	}

	c.JSON(http.StatusOK, h.prebaked)
}
