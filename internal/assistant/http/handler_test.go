package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umlhub/umlhub-backend/internal/assistant/domain"
	"github.com/umlhub/umlhub-backend/internal/assistant/llm"
	"github.com/umlhub/umlhub-backend/internal/assistant/service"
	"github.com/umlhub/umlhub-backend/internal/assistant/store"
)

type stubCompleter struct {
	reply string
	err   error
}

func (s *stubCompleter) Execute(_ context.Context, _ []domain.Turn, _ string) (domain.Turn, error) {
	if s.err != nil {
		return domain.Turn{}, s.err
	}
	return domain.Turn{Role: domain.RoleAssistant, Content: s.reply, Timestamp: time.Now().UTC()}, nil
}

type noDurable struct{}

func (noDurable) Load(context.Context, string, string) ([]domain.Turn, bool, error) {
	return nil, false, nil
}
func (noDurable) Append(context.Context, string, string, []domain.Turn) error { return nil }
func (noDurable) Clear(context.Context, string, string) error                 { return nil }

func newTestRouter(completer *stubCompleter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	volatile := store.NewVolatileStore(24*time.Hour, nil)
	manager := service.NewManager(noDurable{}, volatile, completer, nil, nil, 10)

	r := gin.New()
	Register(r.Group("/api/v1/ai"), NewHandler(manager))
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	return w, parsed
}

func TestExchangeEndpoint(t *testing.T) {
	r := newTestRouter(&stubCompleter{reply: "@startuml\nA -> B\n@enduml"})

	w, body := doJSON(t, r, http.MethodPost, "/api/v1/ai", `{"prompt":"draw a sequence diagram"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, true, body["isCodeResponse"])
	assert.Equal(t, "@startuml\nA -> B\n@enduml", body["response"])
	assert.NotEmpty(t, body["sessionId"])
	assert.NotEmpty(t, body["conversationHistory"])
}

func TestExchangeRejectsEmptyPrompt(t *testing.T) {
	r := newTestRouter(&stubCompleter{reply: "unused"})

	w, body := doJSON(t, r, http.MethodPost, "/api/v1/ai", `{"prompt":""}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["ok"])
}

func TestExchangeBackendErrorIsUserSafe(t *testing.T) {
	raw := errors.New("401 invalid api key sk-secret")
	r := newTestRouter(&stubCompleter{err: &llm.BackendError{Backend: "openai", Kind: llm.KindAuth, Err: raw}})

	w, body := doJSON(t, r, http.MethodPost, "/api/v1/ai", `{"prompt":"hi"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, body["error"], "sk-secret")
}

func TestExchangeQuotaMapsToServiceUnavailable(t *testing.T) {
	r := newTestRouter(&stubCompleter{err: &llm.BackendError{Backend: "openai", Kind: llm.KindQuota, Err: errors.New("429")}})

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/ai", `{"prompt":"hi"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestClearEndpoint(t *testing.T) {
	r := newTestRouter(&stubCompleter{reply: "hello"})

	_, first := doJSON(t, r, http.MethodPost, "/api/v1/ai", `{"prompt":"hi"}`)
	sessionID := first["sessionId"].(string)

	w, body := doJSON(t, r, http.MethodDelete, "/api/v1/ai", `{"sessionId":"`+sessionID+`"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["ok"])

	// cleared sessions reseed from scratch
	_, again := doJSON(t, r, http.MethodPost, "/api/v1/ai", `{"prompt":"hi again","sessionId":"`+sessionID+`"}`)
	history := again["conversationHistory"].([]any)
	assert.Len(t, history, 3)
}
