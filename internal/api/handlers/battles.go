package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tunearena/gateway/internal/arena"
	"github.com/tunearena/gateway/internal/battle"
	"github.com/tunearena/gateway/internal/logger"
	"github.com/tunearena/gateway/internal/metrics"
)

// Global metrics instance
var sentryMetrics = metrics.NewSentryMetrics()

type generateBattleRequest struct {
	Session        *arena.Session        `json:"session"`
	User           *arena.User           `json:"user"`
	Prompt         *string               `json:"prompt"`
	PromptDetailed *arena.DetailedPrompt `json:"prompt_detailed"`
}

// GenerateBattle runs a full battle and returns the anonymized copy the
// voter is allowed to see.
func (h *Handler) GenerateBattle(c *gin.Context) {
	if h.injectFlakiness(c) {
		return
	}

	var req generateBattleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &arena.InvalidRequestError{Field: "body", Reason: err.Error()})
		return
	}

	if req.Session == nil {
		respondError(c, &arena.InvalidRequestError{Field: "session", Reason: "session is required"})
		return
	}
	if err := req.Session.RequireComplete(); err != nil {
		respondError(c, err)
		return
	}
	c.Set("session_uuid", req.Session.UUID)
	if req.User == nil {
		respondError(c, &arena.InvalidRequestError{Field: "user", Reason: "user is required"})
		return
	}
	if req.Prompt == nil && req.PromptDetailed == nil {
		respondError(c, &arena.InvalidRequestError{
			Field:  "prompt",
			Reason: "one of prompt and prompt_detailed is required",
		})
		return
	}

	genReq := battle.Request{
		User:    resolveUser(c, req.User),
		Session: req.Session,
	}
	if req.PromptDetailed != nil {
		genReq.PromptDetailed = req.PromptDetailed
		// A detailed prompt matching the curated set is a prebaked battle.
		_, genReq.Prebaked = h.prebaked[req.PromptDetailed.Checksum()]
	} else {
		genReq.Prompt = &arena.SimplePrompt{Prompt: *req.Prompt}
	}

	start := time.Now()
	b, err := h.gen.Generate(c.Request.Context(), genReq)
	h.recordBattleMetrics(b, genReq.Prebaked, time.Since(start), err)
	sentryMetrics.RecordBattleSpan(c.Request.Context(), b.UUID, time.Since(start), err == nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Set("battle_uuid", b.UUID)

	b.Timings = append(b.Timings, arena.Timing{
		Label: "anonymizing",
		At:    float64(time.Now().UnixNano()) / 1e9,
	})
	h.store.CachePut(b)

	c.JSON(http.StatusOK, b.Anonymize())
}

func (h *Handler) recordBattleMetrics(b arena.Battle, prebaked bool, duration time.Duration, err error) {
	h.cw.RecordBattle(duration, prebaked, err == nil)

	if err != nil {
		var failed *arena.WorkerFailedError
		if errors.As(err, &failed) {
			h.cw.RecordWorkerCall(failed.System.String(), false, failed.Attempts-1, 0)
		}
		return
	}
	for _, md := range []*arena.ResponseMetadata{b.AMetadata, b.BMetadata} {
		if md == nil || md.SystemKey == nil {
			continue
		}
		retries := 0
		if md.GatewayNumRetries != nil {
			retries = *md.GatewayNumRetries
		}
		var callDuration time.Duration
		if md.GatewayTimeStarted != nil && md.GatewayTimeComplete != nil {
			callDuration = time.Duration((*md.GatewayTimeComplete - *md.GatewayTimeStarted) * float64(time.Second))
		}
		h.cw.RecordWorkerCall(md.SystemKey.String(), true, retries, callDuration)
	}
}

// GetBattle returns the anonymized battle by uuid, for reloads of the
// voting page.
func (h *Handler) GetBattle(c *gin.Context) {
	c.Set("battle_uuid", c.Param("uuid"))
	b, err := h.store.Get(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		respondError(c, err)
		return
	}
	if b.Vote == nil {
		c.JSON(http.StatusOK, b.Anonymize())
		return
	}
	// Once voted, the system identities are no longer secret.
	c.JSON(http.StatusOK, b)
}

func logBattleWarn(msg string, b arena.Battle, fields logger.Fields) {
	if fields == nil {
		fields = logger.Fields{}
	}
	fields["battle_uuid"] = b.UUID
	logger.Warn(msg, fields)
}
