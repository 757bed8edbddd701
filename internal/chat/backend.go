// Package chat runs the LLM steps of the prompt pipeline: moderation,
// routing free-text prompts into structured form, and lyric writing.
package chat

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/tunearena/gateway/internal/arena"
)

// CompletionRequest is a single-turn completion call.
type CompletionRequest struct {
	Prompt    string
	MaxTokens int64
	Seed      *int64
	ForceJSON bool
}

// CompletionResult carries the completion text and its token usage.
type CompletionResult struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Backend abstracts the completion provider so the pipeline can be
// tested against a scripted fake.
type Backend interface {
	Model() string
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)
}

// OpenAIBackend implements Backend using OpenAI's Chat Completions API
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

// NewOpenAIBackend creates a new OpenAI backend
func NewOpenAIBackend(apiKey, model string) *OpenAIBackend {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIBackend{
		client: &client,
		model:  model,
	}
}

func (b *OpenAIBackend) Model() string {
	return b.model
}

func (b *OpenAIBackend) Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(b.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(0),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(req.MaxTokens)
	}
	if req.Seed != nil {
		params.Seed = openai.Int(*req.Seed)
	}
	if req.ForceJSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := b.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return CompletionResult{}, &arena.ChatError{Reason: "completion request failed", Err: err}
	}
	if len(resp.Choices) == 0 {
		return CompletionResult{}, &arena.ChatError{Reason: "completion returned no choices"}
	}

	return CompletionResult{
		Text:         resp.Choices[0].Message.Content,
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
	}, nil
}
