// Package handler はtechnicalフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"trade_advisor/internal/api"
	"trade_advisor/internal/feature/technical/domain/entity"
	"trade_advisor/internal/feature/technical/transport/http/dto"
	"trade_advisor/internal/shared/fallback"
)

// TechnicalUsecase はテクニカル分析ユースケースのインターフェースです。
type TechnicalUsecase interface {
	GetTechnicalAnalysis(ctx context.Context, ticker, timeframe string) fallback.Result[entity.TechnicalSignal]
	GetNewsRisk(ctx context.Context, ticker string) fallback.Result[entity.NewsRisk]
}

type TechnicalHandler struct {
	uc TechnicalUsecase
}

func NewTechnicalHandler(uc TechnicalUsecase) *TechnicalHandler {
	return &TechnicalHandler{uc: uc}
}

// GetTechnical はテクニカル分析を返します。プロキシ停止時も合成シグナルで 200 を返します。
func (h *TechnicalHandler) GetTechnical(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	if code == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "code is required", Code: api.CodeInvalidRequest})
		return
	}
	res := h.uc.GetTechnicalAnalysis(c.Request.Context(), code, c.Query("timeframe"))
	c.JSON(http.StatusOK, dto.FromResult(res))
}

// GetNews はニュースリスクを返します。
func (h *TechnicalHandler) GetNews(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	if code == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "code is required", Code: api.CodeInvalidRequest})
		return
	}
	c.JSON(http.StatusOK, dto.FromNews(h.uc.GetNewsRisk(c.Request.Context(), code)))
}
