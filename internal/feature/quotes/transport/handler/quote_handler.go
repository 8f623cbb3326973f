// Package handler はquotesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"trade_advisor/internal/api"
	"trade_advisor/internal/feature/quotes/domain/entity"
	"trade_advisor/internal/feature/quotes/transport/http/dto"
)

// QuoteUsecase は価格照合ユースケースのインターフェースです。
type QuoteUsecase interface {
	GetValidatedPrice(ctx context.Context, code string) entity.ValidatedQuote
}

// QuoteHandler は価格に関するHTTPリクエストを処理します。
type QuoteHandler struct {
	uc QuoteUsecase
}

// NewQuoteHandler は QuoteHandler を生成します。
func NewQuoteHandler(uc QuoteUsecase) *QuoteHandler {
	return &QuoteHandler{uc: uc}
}

// GetQuote は照合済みの現在価格を返します。
// プロバイダーが全滅しても合成価格（isReal=false）で 200 を返します。
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "code is required", Code: api.CodeInvalidRequest})
		return
	}
	vq := h.uc.GetValidatedPrice(c.Request.Context(), strings.ToUpper(code))
	c.JSON(http.StatusOK, dto.FromValidated(vq))
}
