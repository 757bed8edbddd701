package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tunearena/gateway/internal/arena"
	"github.com/tunearena/gateway/internal/logger"
)

type recordVoteRequest struct {
	BattleUUID string         `json:"battle_uuid"`
	Session    *arena.Session `json:"session"`
	User       *arena.User    `json:"user"`
	Vote       *arena.Vote    `json:"vote"`
}

type recordVoteResponse struct {
	Winner    *arena.SystemKey        `json:"winner"`
	AMetadata *arena.ResponseMetadata `json:"a_metadata"`
	BMetadata *arena.ResponseMetadata `json:"b_metadata"`
}

// RecordVote attaches the vote to its battle and reveals the system
// identities. Reconciliation warnings (mismatched user or session,
// repeat vote) are logged, not fatal: last write wins.
func (h *Handler) RecordVote(c *gin.Context) {
	if h.injectFlakiness(c) {
		return
	}

	var req recordVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &arena.InvalidRequestError{Field: "body", Reason: err.Error()})
		return
	}

	if req.BattleUUID == "" {
		respondError(c, &arena.InvalidRequestError{Field: "battle_uuid", Reason: "battle_uuid is required"})
		return
	}
	c.Set("battle_uuid", req.BattleUUID)
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
	if req.Vote == nil {
		respondError(c, &arena.InvalidRequestError{Field: "vote", Reason: "vote is required"})
		return
	}
	if err := req.Vote.RequireComplete(); err != nil {
		respondError(c, err)
		return
	}

	b, err := h.store.Get(c.Request.Context(), req.BattleUUID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Set("battle_uuid", b.UUID)

	user := resolveUser(c, req.User)
	if b.Vote != nil {
		logBattleWarn("battle already has a vote, overwriting", b, nil)
	}
	if b.PromptUser != nil && user.Checksum() != b.PromptUser.Checksum() {
		logBattleWarn("vote user differs from prompt user", b, logger.Fields{
			"prompt_user_checksum": b.PromptUser.Checksum(),
			"vote_user_checksum":   user.Checksum(),
		})
	}
	if b.PromptSession != nil && req.Session.UUID != b.PromptSession.UUID {
		logBattleWarn("vote session differs from prompt session", b, logger.Fields{
			"prompt_session": b.PromptSession.UUID,
			"vote_session":   req.Session.UUID,
		})
	}

	b.Vote = req.Vote
	b.VoteUser = user
	b.VoteSession = req.Session
	b.Timings = append(b.Timings, arena.Timing{
		Label: "vote",
		At:    float64(time.Now().UnixNano()) / 1e9,
	})

	if err := h.store.Put(c.Request.Context(), b); err != nil {
		respondError(c, err)
		return
	}
	h.cw.RecordVote(string(req.Vote.Preference))

	c.JSON(http.StatusOK, recordVoteResponse{
		Winner:    b.Winner(),
		AMetadata: b.AMetadata,
		BMetadata: b.BMetadata,
	})
}
