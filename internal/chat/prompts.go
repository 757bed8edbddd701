package chat

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tunearena/gateway/pkg/embedded"
)

const moderatePromptTemplate = `You are a content moderator for a text-to-music service.
Decide whether the user's prompt is acceptable. Reject prompts that reference
specific artists or songs, request copyrighted lyrics, or ask for hateful,
explicit, or gratuitously profane content. Everyday coarse language in a
musical style request is acceptable.

Respond with a JSON object: {"is_okay": <bool>, "rationale": <string, only when rejected>}.
The rationale must be one of: "Music Reference", "Copyrighted", "Insensitive", "Explicit", "Profanity", "Other".

Examples:
%s
Prompt: %s`

const routePromptTemplate = `You are routing a text-to-music prompt. Decide whether the prompt asks
for instrumental music (no vocals) and whether it specifies a duration in
seconds. When the prompt does not mention duration, use null.

Respond with a JSON object: {"is_okay": <bool>, "instrumental": <bool>, "duration": <number or null>}.

Examples:
%s
Prompt: %s`

const lyricsPromptTemplate = `Write song lyrics matching this musical description: %s

Keep the lyrics short enough to sing within %s. Output only the lyrics,
with no title, commentary, or section labels.`

type moderateVerdict struct {
	IsOkay    bool   `json:"is_okay"`
	Rationale string `json:"rationale,omitempty"`
}

type routeVerdict struct {
	IsOkay       bool     `json:"is_okay"`
	Instrumental bool     `json:"instrumental"`
	Duration     *float64 `json:"duration"`
}

type example[V any] struct {
	Input  string `json:"input"`
	Output V      `json:"output"`
}

// routeConfig binds a config tag to a model and its few-shot example sets.
type routeConfig struct {
	model            string
	moderateExamples []byte
	routeExamples    []byte
}

var routeConfigs = map[string]routeConfig{
	"4o-v00": {
		model:            "gpt-4o",
		moderateExamples: embedded.ModerateExamplesV00JSON,
		routeExamples:    embedded.RouteExamplesV00JSON,
	},
	"4o-mini-v00": {
		model:            "gpt-4o-mini",
		moderateExamples: embedded.ModerateExamplesV00JSON,
		routeExamples:    embedded.RouteExamplesV00JSON,
	},
}

// formatExamples renders few-shot examples as prompt/answer pairs, the
// answer serialized the same way the model must respond.
func formatExamples[V any](raw []byte) (string, error) {
	var examples []example[V]
	if err := json.Unmarshal(raw, &examples); err != nil {
		return "", fmt.Errorf("parsing examples: %w", err)
	}

	var b strings.Builder
	for _, ex := range examples {
		out, err := json.Marshal(ex.Output)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "Prompt: %s\nAnswer: %s\n", ex.Input, out)
	}
	return b.String(), nil
}
