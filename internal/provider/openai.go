// ABOUTME: OpenAI dispatcher built on the official openai-go SDK.
// ABOUTME: System prompt travels as a system message; cost comes from total_tokens.

package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/genz-ai/agentchat/internal/agent"
)

// Request shaping constants shared by both dispatchers.
const (
	maxReplyTokens = 1000
	temperature    = 0.7
)

// OpenAIDispatcher implements Dispatcher for OpenAI chat models.
// The underlying client is created lazily on the first dispatch.
type OpenAIDispatcher struct {
	apiKey string
	client *openai.Client
	logger *slog.Logger
}

// NewOpenAIDispatcher creates an OpenAI dispatcher with lazy client init.
func NewOpenAIDispatcher(apiKey string, logger *slog.Logger) *OpenAIDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenAIDispatcher{
		apiKey: apiKey,
		logger: logger.With("component", "provider", "provider", "openai"),
	}
}

func (d *OpenAIDispatcher) ensureClient() error {
	if d.client != nil {
		return nil
	}
	if d.apiKey == "" {
		return fmt.Errorf("%w: openai api key not configured", ErrProvider)
	}
	client := openai.NewClient(option.WithAPIKey(d.apiKey))
	d.client = &client
	d.logger.Debug("openai client initialized")
	return nil
}

// Dispatch sends one chat turn to OpenAI.
// The agent's system prompt is prepended to the message array, which is how
// this backend expects instructions to arrive.
func (d *OpenAIDispatcher) Dispatch(ctx context.Context, ag *agent.Agent, userText string) (*Reply, error) {
	if err := d.ensureClient(); err != nil {
		return nil, err
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(ag.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(ag.SystemPrompt),
			openai.UserMessage(userText),
		},
		MaxTokens:   openai.Int(maxReplyTokens),
		Temperature: openai.Float(temperature),
	}

	completion, err := d.client.Chat.Completions.New(ctx, params)
	if err != nil {
		d.logger.Error("openai request failed", "model", ag.Model, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("%w: no response choices returned", ErrProvider)
	}
	text := completion.Choices[0].Message.Content
	if text == "" {
		return nil, fmt.Errorf("%w: empty response content", ErrProvider)
	}

	reply := &Reply{
		Text:   text,
		Tokens: int(completion.Usage.TotalTokens),
	}
	d.logger.Debug("openai reply received",
		"model", ag.Model,
		"tokens", reply.Tokens,
		"content_length", len(reply.Text),
	)
	return reply, nil
}
