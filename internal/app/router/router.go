package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	advisorhandler "trade_advisor/internal/feature/advisor/transport/handler"
	analysishandler "trade_advisor/internal/feature/analysis/transport/handler"
	authhandler "trade_advisor/internal/feature/auth/transport/handler"
	candleshandler "trade_advisor/internal/feature/candles/transport/handler"
	chathandler "trade_advisor/internal/feature/chathistory/transport/handler"
	instrumenthandler "trade_advisor/internal/feature/instruments/transport/handler"
	quotehandler "trade_advisor/internal/feature/quotes/transport/handler"
	settingshandler "trade_advisor/internal/feature/settings/transport/handler"
	technicalhandler "trade_advisor/internal/feature/technical/transport/handler"
	platformhandler "trade_advisor/internal/platform/http/handler"
	jwtmw "trade_advisor/internal/platform/jwt"
)

// Handlers はルーティング対象のハンドラー一式です。
type Handlers struct {
	Health      *platformhandler.HealthHandler
	Auth        *authhandler.AuthHandler
	Instruments *instrumenthandler.InstrumentHandler
	Quotes      *quotehandler.QuoteHandler
	Technical   *technicalhandler.TechnicalHandler
	Candles     *candleshandler.CandlesHandler
	Analysis    *analysishandler.AnalysisHandler
	ChatHistory *chathandler.ChatHistoryHandler
	Advisor     *advisorhandler.AdvisorHandler
	Settings    *settingshandler.SettingsHandler
	// Stream はWebSocketでの分析配信です（ws.Hub.Serve）。
	Stream gin.HandlerFunc
}

// Options はミドルウェアの設定です。
type Options struct {
	JWTSecret   string
	Sessions    jwtmw.SessionValidator
	CORSOrigins []string
}

func NewRouter(h Handlers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// ブラウザのダッシュボードから呼ばれるためCORSを許可する
	corsConfig := cors.DefaultConfig()
	if len(opts.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = opts.CORSOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsConfig.ExposeHeaders = []string{"Content-Length", "Content-Disposition"}
	r.Use(cors.New(corsConfig))

	// 認証不要
	// 導通確認用
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)
	// ログイン（JWT 発行）
	r.POST("/v1/token", h.Auth.Login)

	// 認証必須のルート
	// WebSocketはヘッダーを付けられないため ?access_token= でも受け付ける
	auth := r.Group("/v1")
	auth.Use(jwtmw.AuthRequired(opts.JWTSecret, opts.Sessions))
	{
		auth.DELETE("/token", h.Auth.Logout)

		auth.GET("/instruments", h.Instruments.List)
		auth.GET("/quotes/:code", h.Quotes.GetQuote)
		auth.GET("/technical/:code", h.Technical.GetTechnical)
		auth.GET("/news/:code", h.Technical.GetNews)
		auth.GET("/candles/:code", h.Candles.GetCandlesHandler)

		auth.GET("/analysis/history", h.Analysis.GetHistory)
		auth.GET("/analysis/:code", h.Analysis.GetAnalysis)
		auth.GET("/ws/analysis", h.Stream)

		chat := auth.Group("/chat")
		{
			chat.GET("/search", h.ChatHistory.Search)
			chat.GET("/export", h.ChatHistory.Export)
			chat.POST("/import", h.ChatHistory.Import)
			chat.DELETE("/history", h.ChatHistory.ClearAll)
			chat.POST("/:code", h.Advisor.Send)
			chat.POST("/:code/text-only", h.Advisor.SendTextOnly)
			chat.GET("/:code/history", h.ChatHistory.GetHistory)
			chat.DELETE("/:code/history", h.ChatHistory.ClearHistory)
		}

		auth.GET("/settings/llm-credential", h.Settings.GetCredential)
		auth.PUT("/settings/llm-credential", h.Settings.PutCredential)
		auth.DELETE("/settings/llm-credential", h.Settings.DeleteCredential)
	}

	return r
}
