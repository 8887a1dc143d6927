package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/umlhub/umlhub-backend/internal/assistant/domain"
)

const anthropicMaxTokens = 2048

type anthropicBackend struct {
	client anthropic.Client
}

func newAnthropicBackend(apiKey string) *anthropicBackend {
	return &anthropicBackend{client: anthropic.NewClient(option.WithAPIKey(apiKey))}
}

func (b *anthropicBackend) Name() string { return "anthropic" }

func (b *anthropicBackend) Complete(ctx context.Context, turns []domain.Turn, model string) (string, error) {
	var system []anthropic.TextBlockParam
	messages := make([]anthropic.MessageParam, 0, len(turns))

	// Anthropic takes the system prompt out of band.
	for _, t := range turns {
		switch t.Role {
		case domain.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: t.Content})
		case domain.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Content)))
		}
	}

	resp, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   anthropicMaxTokens,
		Temperature: anthropic.Float(0.2),
		System:      system,
		Messages:    messages,
	})
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return sb.String(), nil
}
