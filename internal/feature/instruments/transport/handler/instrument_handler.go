// Package handler はinstrumentsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"trade_advisor/internal/api"
	"trade_advisor/internal/feature/instruments/domain/entity"
	"trade_advisor/internal/feature/instruments/transport/http/dto"
)

// InstrumentUsecase は銘柄情報に関するユースケースのインターフェースです。
type InstrumentUsecase interface {
	ListActiveInstruments(ctx context.Context) ([]entity.Instrument, error)
}

// InstrumentHandler は銘柄情報に関するHTTPリクエストを処理します。
type InstrumentHandler struct {
	uc InstrumentUsecase
}

// NewInstrumentHandler は InstrumentHandler を生成します。
func NewInstrumentHandler(uc InstrumentUsecase) *InstrumentHandler {
	return &InstrumentHandler{uc: uc}
}

// List は有効な銘柄の一覧を返します。
func (h *InstrumentHandler) List(c *gin.Context) {
	instruments, err := h.uc.ListActiveInstruments(c.Request.Context())
	if err != nil {
		slog.Error("failed to list instruments", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list instruments", Code: api.CodeInternal})
		return
	}
	out := make([]dto.InstrumentItem, 0, len(instruments))
	for _, i := range instruments {
		out = append(out, dto.InstrumentItem{
			Code:       i.Code,
			Name:       i.Name,
			AssetClass: string(i.AssetClass),
			PipSize:    i.PipSize,
		})
	}
	c.JSON(http.StatusOK, out)
}
