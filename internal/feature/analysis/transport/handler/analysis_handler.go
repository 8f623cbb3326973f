// Package handler はanalysisフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"trade_advisor/internal/api"
	"trade_advisor/internal/feature/analysis/domain/entity"
	"trade_advisor/internal/feature/analysis/usecase"
)

type AnalysisUsecase interface {
	RunCycle(ctx context.Context, ticker string) (entity.AnalysisRecord, error)
	History(ctx context.Context, ticker string, limit int) ([]entity.AnalysisRecord, error)
}

type AnalysisHandler struct {
	uc AnalysisUsecase
}

func NewAnalysisHandler(uc AnalysisUsecase) *AnalysisHandler {
	return &AnalysisHandler{uc: uc}
}

// GetAnalysis は分析サイクルを実行して結果を返します。外部APIが全滅しても合成データで 200 を返します。
func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	rec, err := h.uc.RunCycle(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidTicker) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error(), Code: api.CodeInvalidRequest})
			return
		}
		slog.Error("analysis cycle failed", "ticker", code, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "analysis failed", Code: api.CodeInternal})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GetHistory は分析履歴を新しい順に返します。?ticker= と ?limit= で絞り込めます。
func (h *AnalysisHandler) GetHistory(c *gin.Context) {
	limit := 20
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "limit must be a positive integer", Code: api.CodeInvalidRequest})
			return
		}
		limit = n
	}

	list, err := h.uc.History(c.Request.Context(), c.Query("ticker"), limit)
	if err != nil {
		slog.Error("failed to list analysis history", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load history", Code: api.CodeInternal})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": list, "count": len(list)})
}
