package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"lexlens-backend/llm"
	"lexlens-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingClient counts model calls; every completion fails
type countingClient struct {
	calls atomic.Int64
}

func (c *countingClient) Complete(ctx context.Context, prompt string) string {
	c.calls.Add(1)
	return ""
}

func (c *countingClient) Stream(ctx context.Context, prompt string) (llm.Stream, error) {
	c.calls.Add(1)
	return emptyStream{}, nil
}

type emptyStream struct{}

func (emptyStream) Recv() (string, error) { return "", io.EOF }
func (emptyStream) Close()                {}

func uiTestRouter(client llm.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewAnalysisService(service.WithLLMClient(client))
	handler := NewUIHandler(svc)

	router := gin.New()
	router.POST("/api/ui/generate", handler.GenerateUI)
	return router
}

func TestGenerateUIEmptyContent(t *testing.T) {
	client := &countingClient{}
	router := uiTestRouter(client)

	for _, body := range []string{
		`{"content": "", "category": "Contracts & Agreements"}`,
		`{"content": "   ", "category": "Contracts & Agreements"}`,
		`{"category": "Contracts & Agreements"}`,
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/ui/generate", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	assert.Zero(t, client.calls.Load(), "empty content must be rejected before any model call")
}

func TestGenerateUIMalformedBody(t *testing.T) {
	client := &countingClient{}
	router := uiTestRouter(client)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ui/generate", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, client.calls.Load())
}

func TestGenerateUIDegradedModelStillRendersValidPayload(t *testing.T) {
	// Every completion fails; the synthesizer must still return a payload
	// satisfying the component invariants
	client := &countingClient{}
	router := uiTestRouter(client)

	body := `{
		"content": "A standard lease with net-30 payment terms.",
		"category": "Property & Real Estate",
		"documentType": "Lease",
		"jsonData": {"importantPoints": ["Net-30 payment"]}
	}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ui/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			Elements []struct {
				ID   string `json:"id"`
				Kind string `json:"kind"`
			} `json:"elements"`
			RenderOrder      []string               `json:"renderOrder"`
			GeneratedContent map[string]interface{} `json:"generatedContent"`
			Theme            string                 `json:"theme"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)

	elements := envelope.Data.Elements
	require.GreaterOrEqual(t, len(elements), 3)
	require.LessOrEqual(t, len(elements), 6)
	assert.Equal(t, "card", elements[0].Kind)
	assert.Len(t, envelope.Data.RenderOrder, len(elements))

	for _, element := range elements {
		assert.Contains(t, envelope.Data.GeneratedContent, element.ID)
	}
}
