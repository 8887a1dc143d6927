package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/umlhub/umlhub-backend/internal/assistant/domain"
)

type geminiBackend struct {
	apiKey string

	once    sync.Once
	client  *genai.Client
	initErr error
}

func newGeminiBackend(apiKey string) *geminiBackend {
	return &geminiBackend{apiKey: apiKey}
}

func (b *geminiBackend) Name() string { return "gemini" }

// init is deferred until the first request because genai.NewClient takes a
// context and may probe the environment.
func (b *geminiBackend) init(ctx context.Context) (*genai.Client, error) {
	b.once.Do(func() {
		b.client, b.initErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  b.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	return b.client, b.initErr
}

func (b *geminiBackend) Complete(ctx context.Context, turns []domain.Turn, model string) (string, error) {
	client, err := b.init(ctx)
	if err != nil {
		return "", err
	}

	var systemParts []string
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case domain.RoleSystem:
			systemParts = append(systemParts, t.Content)
		case domain.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(t.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(t.Content, genai.RoleUser))
		}
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.2),
	}
	if len(systemParts) > 0 {
		cfg.SystemInstruction = genai.NewContentFromText(strings.Join(systemParts, "\n\n"), genai.RoleUser)
	}

	resp, err := client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", err
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty completion response")
	}
	return text, nil
}
