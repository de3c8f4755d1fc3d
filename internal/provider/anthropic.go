// ABOUTME: Anthropic dispatcher built on the official anthropic-sdk-go.
// ABOUTME: System prompt uses the dedicated system field; cost is input+output tokens.

package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/genz-ai/agentchat/internal/agent"
)

// AnthropicDispatcher implements Dispatcher for Anthropic models.
// The underlying client is created lazily on the first dispatch.
type AnthropicDispatcher struct {
	apiKey string
	client *anthropic.Client
	logger *slog.Logger
}

// NewAnthropicDispatcher creates an Anthropic dispatcher with lazy client init.
func NewAnthropicDispatcher(apiKey string, logger *slog.Logger) *AnthropicDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnthropicDispatcher{
		apiKey: apiKey,
		logger: logger.With("component", "provider", "provider", "anthropic"),
	}
}

func (d *AnthropicDispatcher) ensureClient() error {
	if d.client != nil {
		return nil
	}
	if d.apiKey == "" {
		return fmt.Errorf("%w: anthropic api key not configured", ErrProvider)
	}
	client := anthropic.NewClient(option.WithAPIKey(d.apiKey))
	d.client = &client
	d.logger.Debug("anthropic client initialized")
	return nil
}

// Dispatch sends one chat turn to Anthropic.
// This backend takes the system prompt in a separate field rather than the
// message array, and reports usage as input and output tokens separately.
func (d *AnthropicDispatcher) Dispatch(ctx context.Context, ag *agent.Agent, userText string) (*Reply, error) {
	if err := d.ensureClient(); err != nil {
		return nil, err
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(ag.Model),
		MaxTokens:   maxReplyTokens,
		Temperature: anthropic.Float(temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userText)),
		},
	}
	if ag.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: ag.SystemPrompt},
		}
	}

	message, err := d.client.Messages.New(ctx, params)
	if err != nil {
		d.logger.Error("anthropic request failed", "model", ag.Model, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	var text string
	for _, block := range message.Content {
		text += block.Text
	}
	if text == "" {
		return nil, fmt.Errorf("%w: empty response content", ErrProvider)
	}

	reply := &Reply{
		Text:   text,
		Tokens: int(message.Usage.InputTokens + message.Usage.OutputTokens),
	}
	d.logger.Debug("anthropic reply received",
		"model", ag.Model,
		"tokens", reply.Tokens,
		"content_length", len(reply.Text),
	)
	return reply, nil
}
