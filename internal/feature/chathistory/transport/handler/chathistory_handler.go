// Package handler はchathistoryフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"trade_advisor/internal/api"
	"trade_advisor/internal/feature/chathistory/domain/entity"
	"trade_advisor/internal/feature/chathistory/transport/http/dto"
	"trade_advisor/internal/feature/chathistory/usecase"
)

// ChatHistoryUsecase はチャット履歴ユースケースのインターフェースです。
type ChatHistoryUsecase interface {
	Get(ctx context.Context, ticker string) ([]entity.ChatMessage, error)
	Clear(ctx context.Context, ticker string) error
	ClearAll(ctx context.Context) error
	Search(ctx context.Context, query string) ([]entity.SearchHit, error)
	Export(ctx context.Context) (entity.Export, error)
	Import(ctx context.Context, exp entity.Export) (int, error)
}

type ChatHistoryHandler struct {
	uc ChatHistoryUsecase
}

func NewChatHistoryHandler(uc ChatHistoryUsecase) *ChatHistoryHandler {
	return &ChatHistoryHandler{uc: uc}
}

func (h *ChatHistoryHandler) GetHistory(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	msgs, err := h.uc.Get(c.Request.Context(), code)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.HistoryResponse{Ticker: code, Messages: msgs})
}

func (h *ChatHistoryHandler) ClearHistory(c *gin.Context) {
	if err := h.uc.Clear(c.Request.Context(), c.Param("code")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "chat history cleared"})
}

func (h *ChatHistoryHandler) ClearAll(c *gin.Context) {
	if err := h.uc.ClearAll(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "all chat history cleared"})
}

// Search は ?q= を本文に含むメッセージを全銘柄から探します。
func (h *ChatHistoryHandler) Search(c *gin.Context) {
	q := c.Query("q")
	hits, err := h.uc.Search(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SearchResponse{Query: q, Hits: hits})
}

// Export は全履歴をダウンロード用のJSONとして返します。
func (h *ChatHistoryHandler) Export(c *gin.Context) {
	exp, err := h.uc.Export(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="chat-history.json"`)
	c.JSON(http.StatusOK, exp)
}

// Import はエクスポート形式のJSONを取り込みます。同じ銘柄の履歴は上書きされます。
func (h *ChatHistoryHandler) Import(c *gin.Context) {
	var exp entity.Export
	if err := c.ShouldBindJSON(&exp); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid export body", Code: api.CodeInvalidRequest})
		return
	}
	n, err := h.uc.Import(c.Request.Context(), exp)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ImportResponse{Imported: n})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidTicker),
		errors.Is(err, usecase.ErrInvalidMessage),
		errors.Is(err, usecase.ErrUnsupportedExport):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error(), Code: api.CodeInvalidRequest})
	default:
		slog.Error("chat history request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "chat history unavailable", Code: api.CodeInternal})
	}
}
