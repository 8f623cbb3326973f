// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"trade_advisor/internal/api"
	"trade_advisor/internal/feature/auth/domain"
	"trade_advisor/internal/feature/auth/transport/http/dto"
	"trade_advisor/internal/feature/auth/usecase"
	jwtmw "trade_advisor/internal/platform/jwt"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	Login(ctx context.Context, password string, meta usecase.ClientMeta) (usecase.LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login はトークン発行APIを処理します。
// - バリデーションエラー時は400
// - パスワード不一致時は401（詳細は返さない）
// - オペレーター未設定時は503
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request", Code: api.CodeInvalidRequest})
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Password, usecase.ClientMeta{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	switch {
	case errors.Is(err, domain.ErrNotConfigured):
		slog.Error("login rejected: operator password not configured")
		c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: "login is not configured", Code: api.CodeInternal})
		return
	case err != nil:
		slog.Warn("login failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid credentials", Code: api.CodeUnauthorized})
		return
	}

	slog.Info("operator login successful", "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.TokenResponse{Token: res.Token, ExpiresAt: res.ExpiresAt})
}

// Logout は現在のセッションを無効化します。
func (h *AuthHandler) Logout(c *gin.Context) {
	sid := c.GetString(jwtmw.ContextSessionID)
	if sid == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "no session", Code: api.CodeInvalidRequest})
		return
	}
	if err := h.auth.Logout(c.Request.Context(), sid); err != nil {
		slog.Error("logout failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "logout failed", Code: api.CodeInternal})
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "ok"})
}
