package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"trade_advisor/internal/feature/settings/usecase"
)

type mockSettingsUsecase struct {
	SetFunc    func(ctx context.Context, apiKey string) error
	ClearFunc  func(ctx context.Context) error
	StatusFunc func(ctx context.Context) (usecase.CredentialStatus, error)
}

func (m *mockSettingsUsecase) SetLLMCredential(ctx context.Context, apiKey string) error {
	return m.SetFunc(ctx, apiKey)
}
func (m *mockSettingsUsecase) ClearLLMCredential(ctx context.Context) error { return m.ClearFunc(ctx) }
func (m *mockSettingsUsecase) Status(ctx context.Context) (usecase.CredentialStatus, error) {
	return m.StatusFunc(ctx)
}

func setupRouter(uc SettingsUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewSettingsHandler(uc)
	r.GET("/v1/settings/llm-credential", h.GetCredential)
	r.PUT("/v1/settings/llm-credential", h.PutCredential)
	r.DELETE("/v1/settings/llm-credential", h.DeleteCredential)
	return r
}

func TestSettingsHandler_PutCredential(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setErr     error
		wantStatus int
	}{
		{"saved", `{"apiKey":"sk-123"}`, nil, http.StatusOK},
		{"missing key", `{}`, nil, http.StatusBadRequest},
		{"blank key", `{"apiKey":"  "}`, usecase.ErrInvalidCredential, http.StatusBadRequest},
		{"store failure", `{"apiKey":"sk-123"}`, assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockSettingsUsecase{SetFunc: func(context.Context, string) error { return tt.setErr }}
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPut, "/v1/settings/llm-credential", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			setupRouter(uc).ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestSettingsHandler_GetAndDelete(t *testing.T) {
	cleared := false
	uc := &mockSettingsUsecase{
		StatusFunc: func(context.Context) (usecase.CredentialStatus, error) {
			return usecase.CredentialStatus{Configured: true, Source: usecase.SourceStored, Hint: "****1234"}, nil
		},
		ClearFunc: func(context.Context) error { cleared = true; return nil },
	}
	r := setupRouter(uc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/settings/llm-credential", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"configured":true,"source":"stored","hint":"****1234"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/settings/llm-credential", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, cleared)
}
