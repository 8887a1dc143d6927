package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/umlhub/umlhub-backend/internal/assistant/domain"
)

// ollamaBackend talks to a local Ollama daemon over its /api/chat endpoint.
// Ollama has no official Go SDK, so this is a thin JSON client.
type ollamaBackend struct {
	baseURL string
	http    *http.Client
}

func newOllamaBackend(baseURL string) *ollamaBackend {
	return &ollamaBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 120 * time.Second},
	}
}

func (b *ollamaBackend) Name() string { return "ollama" }

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
}

func (b *ollamaBackend) Complete(ctx context.Context, turns []domain.Turn, model string) (string, error) {
	messages := make([]ollamaMessage, 0, len(turns))
	for _, t := range turns {
		messages = append(messages, ollamaMessage{Role: string(t.Role), Content: t.Content})
	}

	body, err := json.Marshal(ollamaChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   false,
		Options:  ollamaOptions{Temperature: 0.2},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var chat ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	if chat.Message.Content == "" {
		return "", fmt.Errorf("empty completion response")
	}
	return chat.Message.Content, nil
}
