package handlers

import (
	"math/rand"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tunearena/gateway/internal/arena"
	"github.com/tunearena/gateway/internal/battle"
)

// HealthCheck pings every worker and then runs one full synthetic
// battle from a random prebaked prompt, exercising the whole path real
// traffic takes. The synthetic battle persists like any other, tagged
// prompt_prebaked.
func (h *Handler) HealthCheck(c *gin.Context) {
	timings := arena.NewTimingLog()
	if err := h.gen.HealthCheck(c.Request.Context(), timings); err != nil {
		respondError(c, err)
		return
	}

	prompt, ok := h.randomPrebaked()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "uuid": nil})
		return
	}

	b, err := h.gen.Generate(c.Request.Context(), battle.Request{
		PromptDetailed: &prompt,
		User:           &arena.User{},
		Prebaked:       true,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Set("battle_uuid", b.UUID)

	c.JSON(http.StatusOK, gin.H{"status": "ok", "uuid": b.UUID})
}

func (h *Handler) randomPrebaked() (arena.DetailedPrompt, bool) {
	if len(h.prebaked) == 0 {
		return arena.DetailedPrompt{}, false
	}
	n := rand.Intn(len(h.prebaked))
	for _, p := range h.prebaked {
		if n == 0 {
			return p, true
		}
		n--
	}
	return arena.DetailedPrompt{}, false
}
