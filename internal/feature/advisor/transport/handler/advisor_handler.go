// Package handler はadvisorフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"trade_advisor/internal/api"
	"trade_advisor/internal/feature/advisor/domain/entity"
	"trade_advisor/internal/feature/advisor/transport/http/dto"
	"trade_advisor/internal/feature/advisor/usecase"
	chat "trade_advisor/internal/feature/chathistory/domain/entity"
)

// AdvisorUsecase はチャットアドバイザーのユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type AdvisorUsecase interface {
	SendMessage(ctx context.Context, ticker, text string, images []chat.Image) (entity.Reply, error)
	ResendTextOnly(ctx context.Context, ticker, text string, images []chat.Image) (entity.Reply, error)
}

// AdvisorHandler はチャットのHTTPリクエストを処理します。
type AdvisorHandler struct {
	uc AdvisorUsecase
}

// NewAdvisorHandler はAdvisorHandlerの新しいインスタンスを生成します。
func NewAdvisorHandler(uc AdvisorUsecase) *AdvisorHandler {
	return &AdvisorHandler{uc: uc}
}

// Send はメッセージをアドバイザーに送ります。
//
// エンドポイント: POST /v1/chat/:code
// Content-Type: application/json（images は base64）または multipart/form-data（message と images ファイル）
func (h *AdvisorHandler) Send(c *gin.Context) {
	h.handle(c, h.uc.SendMessage)
}

// SendTextOnly は画像を外して再送します。画像非対応（422）を受けたダッシュボードが呼びます。
//
// エンドポイント: POST /v1/chat/:code/text-only
func (h *AdvisorHandler) SendTextOnly(c *gin.Context) {
	h.handle(c, h.uc.ResendTextOnly)
}

type sendFunc func(ctx context.Context, ticker, text string, images []chat.Image) (entity.Reply, error)

func (h *AdvisorHandler) handle(c *gin.Context, send sendFunc) {
	req, err := bindRequest(c)
	if err != nil {
		slog.Warn("チャットリクエストの読み取りに失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid chat request", Code: api.CodeInvalidRequest})
		return
	}

	reply, err := send(c.Request.Context(), c.Param("code"), req.Message, req.Images)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error(), Code: api.CodeInvalidRequest})
		case errors.Is(err, usecase.ErrCredentialRequired):
			c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "LLM API key is missing or invalid", Code: api.CodeCredentialRequired})
		case errors.Is(err, usecase.ErrImagesUnsupported):
			c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: "the selected model cannot read images; resend as text only", Code: api.CodeImagesUnsupported})
		default:
			c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: usecase.ErrAdvisorUnavailable.Error(), Code: api.CodeUpstream})
		}
		return
	}
	c.JSON(http.StatusOK, reply)
}

func bindRequest(c *gin.Context) (dto.ChatRequest, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var req dto.ChatRequest
		err := c.ShouldBindJSON(&req)
		return req, err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return dto.ChatRequest{}, err
	}
	req := dto.ChatRequest{Message: c.PostForm("message")}
	for _, fh := range form.File["images"] {
		img, err := readImage(fh)
		if err != nil {
			return dto.ChatRequest{}, err
		}
		req.Images = append(req.Images, img)
	}
	return req, nil
}

func readImage(fh *multipart.FileHeader) (chat.Image, error) {
	if fh.Size > usecase.MaxImageSize {
		return chat.Image{}, errors.New("image too large")
	}
	f, err := fh.Open()
	if err != nil {
		return chat.Image{}, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("画像ファイルのクローズに失敗", "error", err)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(f, usecase.MaxImageSize+1))
	if err != nil {
		return chat.Image{}, err
	}
	mime := fh.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}
	return chat.Image{MimeType: mime, Data: base64.StdEncoding.EncodeToString(data)}, nil
}
