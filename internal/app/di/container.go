// Package di は設定からアプリケーションのコンポーネントを組み立てます。
// グローバル変数は使わず、すべての依存を明示的に渡します。
package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	advisoruc "trade_advisor/internal/feature/advisor/usecase"
	analysisadapters "trade_advisor/internal/feature/analysis/adapters"
	analysisuc "trade_advisor/internal/feature/analysis/usecase"
	authadapters "trade_advisor/internal/feature/auth/adapters"
	authhandler "trade_advisor/internal/feature/auth/transport/handler"
	authuc "trade_advisor/internal/feature/auth/usecase"
	candleadapters "trade_advisor/internal/feature/candles/adapters"
	candleshandler "trade_advisor/internal/feature/candles/transport/handler"
	candleuc "trade_advisor/internal/feature/candles/usecase"
	chatadapters "trade_advisor/internal/feature/chathistory/adapters"
	chatuc "trade_advisor/internal/feature/chathistory/usecase"
	induc "trade_advisor/internal/feature/indicators/usecase"
	instadapters "trade_advisor/internal/feature/instruments/adapters"
	instentity "trade_advisor/internal/feature/instruments/domain/entity"
	instuc "trade_advisor/internal/feature/instruments/usecase"
	orderflowuc "trade_advisor/internal/feature/orderflow/usecase"
	quoteuc "trade_advisor/internal/feature/quotes/usecase"
	recuc "trade_advisor/internal/feature/recommendation/usecase"
	settingsadapters "trade_advisor/internal/feature/settings/adapters"
	settingsuc "trade_advisor/internal/feature/settings/usecase"
	strategyuc "trade_advisor/internal/feature/strategy/usecase"
	"trade_advisor/internal/feature/technical/adapters/proxy"
	techuc "trade_advisor/internal/feature/technical/usecase"
	"trade_advisor/internal/platform/cache"
	"trade_advisor/internal/platform/config"
	platformdb "trade_advisor/internal/platform/db"
	httpc "trade_advisor/internal/platform/http"
	platformhandler "trade_advisor/internal/platform/http/handler"
	jwtmw "trade_advisor/internal/platform/jwt"
	platformredis "trade_advisor/internal/platform/redis"
	"trade_advisor/internal/platform/secret"
	"trade_advisor/internal/platform/ws"
	"trade_advisor/internal/shared/synthetic"
)

// AuthService はルーターとスケジューラーが使う認証操作です。
type AuthService interface {
	authhandler.AuthUsecase
	jwtmw.SessionValidator
	PurgeExpired(ctx context.Context) error
}

// Container は組み立て済みのコンポーネントを保持します。
type Container struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	Hub    *ws.Hub

	Instruments *instuc.InstrumentUsecase
	Quotes      *quoteuc.QuoteUsecase
	Technical   *techuc.TechnicalUsecase
	Candles     candleshandler.CandlesUsecase
	Ingest      *candleuc.IngestUsecase
	Strategy    *strategyuc.StrategyUsecase
	Analysis    *analysisuc.AnalysisUsecase
	ChatHistory *chatuc.ChatHistoryUsecase
	Settings    *settingsuc.SettingsUsecase
	Advisor     *advisoruc.AdvisorUsecase
	Auth        AuthService

	proxy   *proxy.Client
	missing map[Capability]string
	closers []func() error
}

// Models はAutoMigrate対象のモデル一覧です。
func Models() []any {
	return []any{
		&instentity.Instrument{},
		&candleadapters.CandleModel{},
		&authadapters.SessionModel{},
		&analysisadapters.AnalysisRecordModel{},
		&chatadapters.ChatThreadModel{},
		&settingsadapters.SettingModel{},
	}
}

// Build は設定からすべてのコンポーネントを生成します。
// DBに接続できない場合のみエラーを返します。その他の欠落は Require で検出します。
func Build(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg, missing: make(map[Capability]string)}

	migrate := cfg.Database.RunMigrations || cfg.Database.Driver == platformdb.DriverSQLite
	db, err := platformdb.OpenDB(platformdb.Config{
		Driver:     cfg.Database.Driver,
		SQLitePath: cfg.Database.SQLitePath,
		Host:       cfg.Database.Host,
		Port:       cfg.Database.Port,
		User:       cfg.Database.User,
		Password:   cfg.Database.Password,
		Name:       cfg.Database.Name,
		SSLMode:    cfg.Database.SSLMode,
	}, migrate, Models()...)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	c.DB = db
	c.closers = append(c.closers, func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	if cfg.RedisConfigured() {
		rdb, err := platformredis.NewRedisClient(ctx, cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password)
		if err != nil {
			slog.Warn("redis unavailable; running without cache", "error", err)
		} else {
			c.Redis = rdb
			c.closers = append(c.closers, rdb.Close)
		}
	}

	httpClient := httpc.NewHTTPClient(cfg.HTTPTimeout)
	synth := synthetic.New(cfg.Synthetic.Seed)

	// instruments
	c.Instruments = instuc.NewInstrumentUsecase(instadapters.NewInstrumentRepository(db))
	if err := c.Instruments.SeedDefaults(ctx); err != nil {
		slog.Warn("failed to seed instruments", "error", err)
	}

	// candles
	market := NewMarket(cfg, httpClient)
	candleRepo := cache.NewCachingCandleRepository(c.Redis, 0, candleadapters.NewCandleRepository(db), "candles")
	c.Candles = candleuc.NewCandlesUsecase(candleRepo, market)
	c.Ingest = candleuc.NewIngestUsecase(market, candleRepo, nil)

	// quotes / technical / indicators
	primary, secondary := NewQuoteProviders(cfg, httpClient)
	c.Quotes = quoteuc.NewQuoteUsecase(primary, secondary, c.Instruments, synth, cfg.HTTPTimeout)

	c.proxy = proxy.NewClient(proxy.Config{BaseURL: cfg.Proxy.BaseURL, Timeout: cfg.HTTPTimeout}, httpClient)
	c.Technical = techuc.NewTechnicalUsecase(c.proxy, synth, cfg.Proxy.HealthTimeout, cfg.HTTPTimeout)

	var remote induc.RemoteIndicators
	if cfg.Indicators.APIKey != "" {
		remote = market
	} else {
		slog.Warn("indicator api key not set; indicators are computed from stored candles")
	}
	indicators := induc.NewIndicatorUsecase(remote, cfg.HTTPTimeout)

	// strategy / analysis
	c.Strategy = strategyuc.NewStrategyUsecase(c.Quotes, c.Technical, indicators, c.Candles, strategyuc.Config{
		Timeframe: cfg.Analysis.Timeframe,
	})
	c.Hub = ws.NewHub(cfg.Server.CORSOrigins)
	c.Analysis = analysisuc.NewAnalysisUsecase(
		c.Strategy,
		c.Candles,
		c.Technical,
		orderflowuc.NewAnalyzer(),
		recuc.NewRecommender(),
		c.Instruments,
		analysisadapters.NewRecordRepository(db, cfg.Analysis.HistoryCap),
		c.Hub,
		analysisuc.Config{
			OrderFlowInterval: cfg.Analysis.CandleInterval,
			OrderFlowCandles:  cfg.Analysis.CandleCount,
		},
	)

	// chat history / settings / advisor
	c.ChatHistory = chatuc.NewChatHistoryUsecase(chatadapters.NewThreadRepository(db), chatuc.Limits{
		MaxMessages: cfg.Chat.MaxMessagesPerTicker,
		MaxTickers:  cfg.Chat.MaxTickers,
	})

	var sealer settingsuc.Sealer
	if s, err := secret.NewSealer(cfg.Secret.Key); err != nil {
		c.missing[CapCredentialSealer] = err.Error()
	} else {
		sealer = s
	}
	c.Settings = settingsuc.NewSettingsUsecase(settingsadapters.NewSettingRepository(db), sealer, cfg.LLM.APIKey)

	completer, err := NewChatCompleter(cfg)
	if err != nil {
		c.missing[CapLLM] = err.Error()
	}
	describer, closeDescriber := NewImageDescriber(ctx, cfg)
	if closeDescriber != nil {
		c.closers = append(c.closers, closeDescriber)
	}
	if describer == nil {
		c.missing[CapVision] = "vision disabled or unavailable"
	}
	if completer != nil {
		c.Advisor = advisoruc.NewAdvisorUsecase(completer, describer, c.Settings, c.ChatHistory, c.Analysis, advisoruc.Config{
			HistoryTurns: cfg.LLM.HistoryTurns,
		})
	}

	// auth
	if cfg.Auth.JWTSecret == "" {
		c.missing[CapTokenSigning] = "auth.jwt_secret is empty"
	}
	if cfg.Auth.OperatorPasswordHash == "" {
		c.missing[CapOperatorAuth] = "auth.operator_password_hash is empty"
	}
	sessions := NewSessionRepository(c.Redis, db)
	c.Auth = authuc.NewAuthUsecase(cfg.Auth.OperatorPasswordHash, sessions, jwtmw.NewGenerator(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL))

	return c, nil
}

// HealthChecks は /healthz で報告する依存コンポーネントの疎通確認です。
func (c *Container) HealthChecks() map[string]platformhandler.Check {
	checks := map[string]platformhandler.Check{
		"database": func(ctx context.Context) error {
			sqlDB, err := c.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"ta_proxy": c.proxy.Healthy,
	}
	if c.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return c.Redis.Ping(ctx).Err()
		}
	}
	return checks
}

// Close は保持している接続を閉じます。
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
