package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/umlhub/umlhub-backend/internal/assistant/domain"
)

type openAIBackend struct {
	client openai.Client
}

func newOpenAIBackend(apiKey string) *openAIBackend {
	return &openAIBackend{client: openai.NewClient(option.WithAPIKey(apiKey))}
}

func (b *openAIBackend) Name() string { return "openai" }

func (b *openAIBackend) Complete(ctx context.Context, turns []domain.Turn, model string) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case domain.RoleSystem:
			messages = append(messages, openai.SystemMessage(t.Content))
		case domain.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(t.Content))
		default:
			messages = append(messages, openai.UserMessage(t.Content))
		}
	}

	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    messages,
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}
