// Package handler はsettingsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"trade_advisor/internal/api"
	"trade_advisor/internal/feature/settings/transport/http/dto"
	"trade_advisor/internal/feature/settings/usecase"
)

type SettingsUsecase interface {
	SetLLMCredential(ctx context.Context, apiKey string) error
	ClearLLMCredential(ctx context.Context) error
	Status(ctx context.Context) (usecase.CredentialStatus, error)
}

type SettingsHandler struct {
	uc SettingsUsecase
}

func NewSettingsHandler(uc SettingsUsecase) *SettingsHandler {
	return &SettingsHandler{uc: uc}
}

// GetCredential はAPIキーの設定状況を返します。キー本体は返しません。
func (h *SettingsHandler) GetCredential(c *gin.Context) {
	st, err := h.uc.Status(c.Request.Context())
	if err != nil {
		slog.Error("failed to load credential status", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load settings", Code: api.CodeInternal})
		return
	}
	c.JSON(http.StatusOK, st)
}

// PutCredential はAPIキーを保存します。
func (h *SettingsHandler) PutCredential(c *gin.Context) {
	var req dto.CredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "apiKey is required", Code: api.CodeInvalidRequest})
		return
	}
	if err := h.uc.SetLLMCredential(c.Request.Context(), req.APIKey); err != nil {
		if errors.Is(err, usecase.ErrInvalidCredential) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error(), Code: api.CodeInvalidRequest})
			return
		}
		slog.Error("failed to store credential", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to store credential", Code: api.CodeInternal})
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "credential saved"})
}

func (h *SettingsHandler) DeleteCredential(c *gin.Context) {
	if err := h.uc.ClearLLMCredential(c.Request.Context()); err != nil {
		slog.Error("failed to clear credential", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to clear credential", Code: api.CodeInternal})
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "credential cleared"})
}
