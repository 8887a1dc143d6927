package llm

import (
	"context"
	"strings"
	"time"

	"github.com/umlhub/umlhub-backend/config"
	"github.com/umlhub/umlhub-backend/internal/assistant/domain"
)

// Backend is a single model provider. Complete receives the full turn list
// (system preamble first) and returns the assistant's raw text.
type Backend interface {
	Name() string
	Complete(ctx context.Context, turns []domain.Turn, model string) (string, error)
}

type route struct {
	prefix  string
	backend Backend
	// trimPrefix strips the route prefix from the model ID before it is
	// passed to the backend (used for "ollama:<model>").
	trimPrefix bool
}

// Executor routes a completion request to a provider by model ID prefix and
// normalizes the reply.
type Executor struct {
	routes       []route
	fallback     Backend
	defaultModel string
}

// NewExecutor wires the provider set from config. Route order is fixed;
// unmatched model IDs go to the OpenAI backend.
func NewExecutor(cfg config.AIConfig) *Executor {
	openAI := newOpenAIBackend(cfg.OpenAIKey)
	return &Executor{
		routes: []route{
			{prefix: "gpt", backend: openAI},
			{prefix: "gemini", backend: newGeminiBackend(cfg.GeminiKey)},
			{prefix: "claude", backend: newAnthropicBackend(cfg.AnthropicKey)},
			{prefix: "ollama:", backend: newOllamaBackend(cfg.OllamaBaseURL), trimPrefix: true},
		},
		fallback:     openAI,
		defaultModel: cfg.DefaultModel,
	}
}

// Execute resolves the backend for modelID, runs the completion and returns
// the assistant turn with any surrounding markdown fence stripped. Failures
// come back as *BackendError.
func (e *Executor) Execute(ctx context.Context, turns []domain.Turn, modelID string) (domain.Turn, error) {
	if modelID == "" {
		modelID = e.defaultModel
	}

	backend, model := e.resolve(modelID)

	raw, err := backend.Complete(ctx, turns, model)
	if err != nil {
		return domain.Turn{}, wrapBackendError(backend.Name(), err)
	}

	return domain.Turn{
		Role:      domain.RoleAssistant,
		Content:   StripCodeFence(strings.TrimSpace(raw)),
		Timestamp: time.Now().UTC(),
	}, nil
}

func (e *Executor) resolve(modelID string) (Backend, string) {
	for _, r := range e.routes {
		if strings.HasPrefix(modelID, r.prefix) {
			if r.trimPrefix {
				return r.backend, strings.TrimPrefix(modelID, r.prefix)
			}
			return r.backend, modelID
		}
	}
	return e.fallback, modelID
}
