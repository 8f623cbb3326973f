package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade_advisor/internal/feature/advisor/domain/entity"
	"trade_advisor/internal/feature/advisor/usecase"
	chat "trade_advisor/internal/feature/chathistory/domain/entity"
)

func newTestCompleter(srv *httptest.Server) *GeminiCompleter {
	return NewGeminiCompleter(Config{BaseURL: srv.URL, MaxTokens: 256, Temperature: 0.7}, &http.Client{Timeout: 5 * time.Second})
}

func TestGeminiCompleter_Complete(t *testing.T) {
	t.Parallel()

	var path, key string
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		key = r.Header.Get("x-goog-api-key")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Hold for now."}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	c := newTestCompleter(srv)
	assert.Equal(t, DefaultModel, c.Model())

	got, err := c.Complete(context.Background(), entity.CompletionRequest{
		APIKey: "gm-key",
		System: "You are a trading assistant.",
		Messages: []entity.Message{
			{Role: chat.RoleUser, Text: "earlier"},
			{Role: chat.RoleAssistant, Text: "answer"},
			{Role: chat.RoleUser, Text: "chart?", Images: []chat.Image{{MimeType: "image/png", Data: "iVBORw0K"}}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hold for now.", got)
	assert.True(t, strings.HasSuffix(path, "models/"+DefaultModel+":generateContent"), path)
	assert.Equal(t, "gm-key", key)

	contents := body["contents"].([]any)
	require.Len(t, contents, 3)
	assert.Equal(t, "model", contents[1].(map[string]any)["role"])
	assert.Len(t, contents[2].(map[string]any)["parts"], 2)
	assert.NotNil(t, body["systemInstruction"])
}

func TestGeminiCompleter_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		images  bool
		wantErr error
	}{
		{"invalid key", http.StatusBadRequest, `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`, false, usecase.ErrCredentialRequired},
		{"forbidden", http.StatusForbidden, `{"error":{"code":403,"message":"Permission denied","status":"PERMISSION_DENIED"}}`, false, usecase.ErrCredentialRequired},
		{"image rejected", http.StatusBadRequest, `{"error":{"code":400,"message":"Unsupported image format","status":"INVALID_ARGUMENT"}}`, true, usecase.ErrImagesUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			msg := entity.Message{Role: chat.RoleUser, Text: "hi"}
			if tt.images {
				msg.Images = []chat.Image{{MimeType: "image/png", Data: "AA=="}}
			}
			_, err := newTestCompleter(srv).Complete(context.Background(), entity.CompletionRequest{APIKey: "k", Messages: []entity.Message{msg}})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestToContents_InvalidImage(t *testing.T) {
	t.Parallel()

	_, err := toContents([]entity.Message{{Role: chat.RoleUser, Images: []chat.Image{{MimeType: "image/png", Data: "***"}}}})
	assert.Error(t, err)
}
