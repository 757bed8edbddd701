package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tunearena/gateway/internal/arena"
	"github.com/tunearena/gateway/internal/observability"
)

const (
	moderateMaxTokens = 64
	routeMaxTokens    = 64
	lyricsMaxTokens   = 512
)

// Pipeline turns a raw user prompt into a structured one: a moderation
// pass, then a routing pass that extracts instrumental and duration
// intent. It also writes lyrics for vocal prompts that arrive without
// any.
type Pipeline struct {
	backend Backend
	cfg     routeConfig
	tag     string
}

// NewPipeline builds the pipeline for a route config tag, e.g. "4o-v00".
func NewPipeline(routeTag, apiKey string) (*Pipeline, error) {
	cfg, ok := routeConfigs[routeTag]
	if !ok {
		return nil, fmt.Errorf("unknown route config %q", routeTag)
	}
	return &Pipeline{
		backend: NewOpenAIBackend(apiKey, cfg.model),
		cfg:     cfg,
		tag:     routeTag,
	}, nil
}

// NewPipelineWithBackend wires an explicit backend, used by tests.
func NewPipelineWithBackend(routeTag string, backend Backend) (*Pipeline, error) {
	cfg, ok := routeConfigs[routeTag]
	if !ok {
		return nil, fmt.Errorf("unknown route config %q", routeTag)
	}
	return &Pipeline{backend: backend, cfg: cfg, tag: routeTag}, nil
}

// Tag returns the route config tag the pipeline was built with.
func (p *Pipeline) Tag() string {
	return p.tag
}

// Parse moderates and routes a free-text prompt. A rejected prompt
// returns a PromptRejectedError carrying the moderation rationale.
func (p *Pipeline) Parse(ctx context.Context, prompt arena.SimplePrompt) (arena.DetailedPrompt, error) {
	trace := observability.GetClient().StartTrace(ctx, "parse_prompt", map[string]interface{}{
		"route_config":    p.tag,
		"prompt_checksum": prompt.Checksum(),
	})
	defer trace.Finish()

	if err := p.moderate(ctx, trace, prompt.Prompt); err != nil {
		return arena.DetailedPrompt{}, err
	}
	return p.route(ctx, trace, prompt.Prompt)
}

func (p *Pipeline) moderate(ctx context.Context, trace *observability.Trace, prompt string) error {
	examples, err := formatExamples[moderateVerdict](p.cfg.moderateExamples)
	if err != nil {
		return &arena.ChatError{Reason: "building moderation prompt", Err: err}
	}
	full := fmt.Sprintf(moderatePromptTemplate, examples, prompt)

	gen := trace.Generation("moderate", nil)
	defer gen.Finish()

	result, err := p.backend.Complete(ctx, CompletionRequest{
		Prompt:    full,
		MaxTokens: moderateMaxTokens,
		ForceJSON: true,
	})
	if err != nil {
		gen.SetLevel("ERROR")
		return err
	}
	gen.LogCompletion(p.backend.Model(), full, result.Text, result.InputTokens, result.OutputTokens)

	var verdict moderateVerdict
	if err := decodeJSON(result.Text, &verdict); err != nil {
		gen.SetLevel("ERROR")
		return &arena.ChatError{Reason: "moderation returned malformed JSON", Err: err}
	}
	if !verdict.IsOkay {
		rationale := verdict.Rationale
		if rationale == "" {
			rationale = "Other"
		}
		return &arena.PromptRejectedError{Rationale: rationale}
	}
	return nil
}

func (p *Pipeline) route(ctx context.Context, trace *observability.Trace, prompt string) (arena.DetailedPrompt, error) {
	examples, err := formatExamples[routeVerdict](p.cfg.routeExamples)
	if err != nil {
		return arena.DetailedPrompt{}, &arena.ChatError{Reason: "building route prompt", Err: err}
	}
	full := fmt.Sprintf(routePromptTemplate, examples, prompt)

	gen := trace.Generation("route", nil)
	defer gen.Finish()

	result, err := p.backend.Complete(ctx, CompletionRequest{
		Prompt:    full,
		MaxTokens: routeMaxTokens,
		ForceJSON: true,
	})
	if err != nil {
		gen.SetLevel("ERROR")
		return arena.DetailedPrompt{}, err
	}
	gen.LogCompletion(p.backend.Model(), full, result.Text, result.InputTokens, result.OutputTokens)

	var verdict routeVerdict
	if err := decodeJSON(result.Text, &verdict); err != nil {
		gen.SetLevel("ERROR")
		return arena.DetailedPrompt{}, &arena.ChatError{Reason: "route returned malformed JSON", Err: err}
	}
	if !verdict.IsOkay {
		return arena.DetailedPrompt{}, &arena.PromptRejectedError{Rationale: "Other"}
	}

	detailed := arena.DetailedPrompt{
		OverallPrompt: prompt,
		Instrumental:  verdict.Instrumental,
		Duration:      verdict.Duration,
	}
	if err := detailed.Validate(); err != nil {
		return arena.DetailedPrompt{}, &arena.ChatError{Reason: "route produced invalid prompt", Err: err}
	}
	return detailed, nil
}

// GenerateLyrics writes lyrics for a vocal prompt that has none.
func (p *Pipeline) GenerateLyrics(ctx context.Context, prompt arena.DetailedPrompt) (string, error) {
	durationHint := "about a minute"
	if prompt.Duration != nil {
		durationHint = fmt.Sprintf("%.0f seconds", *prompt.Duration)
	}
	full := fmt.Sprintf(lyricsPromptTemplate, prompt.OverallPrompt, durationHint)

	trace := observability.GetClient().StartTrace(ctx, "generate_lyrics", map[string]interface{}{
		"route_config": p.tag,
	})
	defer trace.Finish()
	gen := trace.Generation("lyrics", nil)
	defer gen.Finish()

	result, err := p.backend.Complete(ctx, CompletionRequest{
		Prompt:    full,
		MaxTokens: lyricsMaxTokens,
	})
	if err != nil {
		gen.SetLevel("ERROR")
		return "", err
	}
	gen.LogCompletion(p.backend.Model(), full, result.Text, result.InputTokens, result.OutputTokens)

	lyrics := strings.TrimSpace(result.Text)
	if lyrics == "" {
		return "", &arena.ChatError{Reason: "lyrics generation returned empty output"}
	}
	return lyrics, nil
}

// decodeJSON tolerates code-fenced output, which some models emit even
// under JSON response format.
func decodeJSON(text string, v interface{}) error {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return json.Unmarshal([]byte(strings.TrimSpace(text)), v)
}
