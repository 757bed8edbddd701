// Package handlers implements the gateway's HTTP surface.
package handlers

import (
	"errors"
	"math/rand"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tunearena/gateway/internal/arena"
	"github.com/tunearena/gateway/internal/battle"
	"github.com/tunearena/gateway/internal/config"
	"github.com/tunearena/gateway/internal/logger"
	"github.com/tunearena/gateway/internal/metrics"
	"github.com/tunearena/gateway/internal/registry"
)

// Handler carries the wired dependencies for all routes.
type Handler struct {
	cfg      *config.Config
	catalog  registry.Catalog
	prebaked map[string]arena.DetailedPrompt
	gen      *battle.Generator
	store    *battle.Store
	cw       *metrics.Client
}

func New(cfg *config.Config, catalog registry.Catalog, prebaked map[string]arena.DetailedPrompt, gen *battle.Generator, store *battle.Store, cw *metrics.Client) *Handler {
	return &Handler{
		cfg:      cfg,
		catalog:  catalog,
		prebaked: prebaked,
		gen:      gen,
		store:    store,
		cw:       cw,
	}
}

// injectFlakiness fails the request with probability cfg.Flakiness. Used
// by load tests to exercise frontend error paths against a live gateway.
func (h *Handler) injectFlakiness(c *gin.Context) bool {
	if h.cfg.Flakiness > 0 && rand.Float64() < h.cfg.Flakiness {
		respondError(c, &arena.InjectedFailureError{})
		return true
	}
	return false
}

// respondError maps the closed set of error kinds onto status codes.
// Every failure is logged with its kind and whatever battle identity
// the handler had resolved before failing.
func respondError(c *gin.Context, err error) {
	var (
		invalid  *arena.InvalidRequestError
		rejected *arena.PromptRejectedError
		limited  *arena.RateLimitedError
		notFound *arena.NotFoundError
	)

	kind := "internal"
	status := http.StatusInternalServerError
	body := gin.H{"error": err.Error()}
	switch {
	case errors.As(err, &invalid):
		kind, status = "invalid_request", http.StatusBadRequest
	case errors.As(err, &rejected):
		kind, status = "prompt_rejected", http.StatusNotAcceptable
		body["rationale"] = rejected.Rationale
	case errors.As(err, &limited):
		kind, status = "rate_limited", http.StatusTooManyRequests
	case errors.As(err, &notFound):
		kind, status = "not_found", http.StatusNotFound
	}

	fields := logger.WithBattle(
		c.GetString("battle_uuid"),
		c.GetString("session_uuid"),
		c.GetString("user_checksum"),
	)
	fields["kind"] = kind
	fields["request_id"] = c.GetString("request_id")
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", err, fields)
	} else {
		fields["error"] = err.Error()
		logger.Warn("request failed", fields)
	}

	c.JSON(status, body)
}

// resolveUser tags the request context with the user's checksum so
// later log lines carry it. A user with no tracking signal at all is
// worth a warning: vote reconciliation degrades without it.
func resolveUser(c *gin.Context, u *arena.User) *arena.User {
	if u == nil {
		anon := arena.User{}
		u = &anon
	}
	c.Set("user_checksum", u.Checksum())
	if u.Anonymous() {
		logger.Warn("request user carries no ip or fingerprint", logger.Fields{
			"request_id": c.GetString("request_id"),
		})
	}
	return u
}
