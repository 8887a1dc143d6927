package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/umlhub/umlhub-backend/internal/projects/service"
	"github.com/umlhub/umlhub-backend/internal/render"
)

type stubRenderer struct {
	data []byte
	err  error
}

func (s *stubRenderer) Render(_ context.Context, _ string, _ render.Format) ([]byte, error) {
	return s.data, s.err
}

func previewRouter(renderer *stubRenderer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	sync := service.NewSyncService(renderer, nil, nil, nil)
	h := NewHandler(nil, nil, sync, nil)

	r := gin.New()
	Register(r.Group("/api/v1/projects"), r.Group("/api/v1/diagrams"), h)
	return r
}

func TestPreviewEchoesSequence(t *testing.T) {
	r := previewRouter(&stubRenderer{data: []byte("<svg/>")})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/diagrams/preview",
		strings.NewReader(`{"source":"@startuml\n@enduml","format":"svg","seq":42}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "42", w.Header().Get("X-Preview-Seq"))
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Equal(t, "<svg/>", w.Body.String())
}

func TestPreviewRenderFailureIsGeneric(t *testing.T) {
	r := previewRouter(&stubRenderer{err: &render.Failure{Status: 500, Reason: "renderer returned status 500"}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/diagrams/preview",
		strings.NewReader(`{"source":"@startuml\n@enduml"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "please try again")
	assert.NotContains(t, w.Body.String(), "500")
}

func TestPreviewRejectsEmptySource(t *testing.T) {
	r := previewRouter(&stubRenderer{data: []byte("unused")})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/diagrams/preview",
		strings.NewReader(`{"source":"  "}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
