// Package config はアプリケーション設定をYAMLファイルと環境変数から読み込みます。
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath は CONFIG_PATH が未設定の場合の設定ファイルパスです。
const DefaultPath = "configs/config.yaml"

// Config はアプリケーション全体の設定を保持します。
type Config struct {
	Server struct {
		Addr        string   `yaml:"addr"`
		CORSOrigins []string `yaml:"cors_origins"`
		LogLevel    string   `yaml:"log_level"`
	} `yaml:"server"`
	Auth struct {
		JWTSecret            string        `yaml:"jwt_secret"`
		OperatorPasswordHash string        `yaml:"operator_password_hash"`
		TokenTTL             time.Duration `yaml:"token_ttl"`
	} `yaml:"auth"`
	Database struct {
		Driver        string `yaml:"driver"` // "sqlite" or "postgres"
		SQLitePath    string `yaml:"sqlite_path"`
		Host          string `yaml:"host"`
		Port          string `yaml:"port"`
		User          string `yaml:"user"`
		Password      string `yaml:"password"`
		Name          string `yaml:"name"`
		SSLMode       string `yaml:"sslmode"`
		RunMigrations bool   `yaml:"run_migrations"`
	} `yaml:"database"`
	Redis struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		Password string `yaml:"password"`
	} `yaml:"redis"`
	Broker struct {
		BaseURL   string `yaml:"base_url"`
		AccountID string `yaml:"account_id"`
		Token     string `yaml:"token"`
	} `yaml:"broker"`
	QuoteAPI struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"quote_api"`
	Indicators struct {
		BaseURL            string `yaml:"base_url"`
		APIKey             string `yaml:"api_key"`
		RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
	} `yaml:"indicators"`
	Proxy struct {
		BaseURL       string        `yaml:"base_url"`
		HealthTimeout time.Duration `yaml:"health_timeout"`
	} `yaml:"proxy"`
	LLM struct {
		Provider     string  `yaml:"provider"` // "openai" or "gemini"
		BaseURL      string  `yaml:"base_url"`
		APIKey       string  `yaml:"api_key"`
		Model        string  `yaml:"model"`
		MaxTokens    int     `yaml:"max_tokens"`
		Temperature  float32 `yaml:"temperature"`
		TopP         float32 `yaml:"top_p"`
		HistoryTurns int     `yaml:"history_turns"`
	} `yaml:"llm"`
	Vision struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"vision"`
	Chat struct {
		MaxMessagesPerTicker int `yaml:"max_messages_per_ticker"`
		MaxTickers           int `yaml:"max_tickers"`
	} `yaml:"chat"`
	Analysis struct {
		Watchlist      []string `yaml:"watchlist"`
		Timeframe      string   `yaml:"timeframe"`
		CandleInterval string   `yaml:"candle_interval"`
		CandleCount    int      `yaml:"candle_count"`
		HistoryCap     int      `yaml:"history_cap"`
		CycleCron      string   `yaml:"cycle_cron"`
		IngestCron     string   `yaml:"ingest_cron"`
	} `yaml:"analysis"`
	Synthetic struct {
		Seed int64 `yaml:"seed"`
	} `yaml:"synthetic"`
	Secret struct {
		Key string `yaml:"key"`
	} `yaml:"secret"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
}

// Load は .env、YAMLファイル、環境変数の順に設定を読み込み、デフォルト値を補完します。
func Load(path string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}
	if path == "" {
		path = DefaultPath
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			path = v
		}
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// applyEnv は環境変数による上書きを適用します。
func (c *Config) applyEnv() {
	setString(&c.Server.Addr, "SERVER_ADDR")
	setString(&c.Server.LogLevel, "LOG_LEVEL")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Auth.OperatorPasswordHash, "OPERATOR_PASSWORD_HASH")
	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.SQLitePath, "SQLITE_PATH")
	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.Port, "DB_PORT")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Name, "DB_NAME")
	if os.Getenv("RUN_MIGRATIONS") == "true" {
		c.Database.RunMigrations = true
	}
	setString(&c.Redis.Host, "REDIS_HOST")
	setString(&c.Redis.Port, "REDIS_PORT")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Broker.BaseURL, "OANDA_BASE_URL")
	setString(&c.Broker.AccountID, "OANDA_ACCOUNT_ID")
	setString(&c.Broker.Token, "OANDA_TOKEN")
	setString(&c.QuoteAPI.BaseURL, "ALPHA_VANTAGE_BASE_URL")
	setString(&c.QuoteAPI.APIKey, "ALPHA_VANTAGE_API_KEY")
	setString(&c.Indicators.BaseURL, "TWELVE_DATA_BASE_URL")
	setString(&c.Indicators.APIKey, "TWELVE_DATA_API_KEY")
	setString(&c.Proxy.BaseURL, "TA_PROXY_BASE_URL")
	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")
	setString(&c.LLM.APIKey, "LLM_API_KEY")
	setString(&c.LLM.Model, "LLM_MODEL")
	if os.Getenv("VISION_ENABLED") == "true" {
		c.Vision.Enabled = true
	}
	setString(&c.Secret.Key, "SECRET_KEY")
	if v := os.Getenv("SYNTHETIC_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Synthetic.Seed = seed
		}
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		c.Analysis.Watchlist = splitList(v)
	}
}

// applyDefaults は未設定項目にデフォルト値を設定します。
func (c *Config) applyDefaults() {
	setDefault(&c.Server.Addr, ":8080")
	setDefault(&c.Server.LogLevel, "info")
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 12 * time.Hour
	}
	setDefault(&c.Database.Driver, "sqlite")
	setDefault(&c.Database.SQLitePath, "data/trade_advisor.db")
	setDefault(&c.Database.SSLMode, "disable")
	setDefault(&c.Broker.BaseURL, "https://api-fxpractice.oanda.com")
	setDefault(&c.QuoteAPI.BaseURL, "https://www.alphavantage.co")
	setDefault(&c.Indicators.BaseURL, "https://api.twelvedata.com")
	if c.Indicators.RateLimitPerMinute == 0 {
		c.Indicators.RateLimitPerMinute = 8
	}
	setDefault(&c.Proxy.BaseURL, "http://localhost:3001")
	if c.Proxy.HealthTimeout <= 0 {
		c.Proxy.HealthTimeout = 2 * time.Second
	}
	setDefault(&c.LLM.Provider, "openai")
	// gemini はSDKの既定エンドポイントとモデルを使う
	if c.LLM.Provider == "openai" {
		setDefault(&c.LLM.BaseURL, "https://api.openai.com/v1")
		setDefault(&c.LLM.Model, "gpt-4o-mini")
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 1024
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.7
	}
	if c.LLM.TopP == 0 {
		c.LLM.TopP = 0.9
	}
	if c.LLM.HistoryTurns == 0 {
		c.LLM.HistoryTurns = 10
	}
	if c.Chat.MaxMessagesPerTicker == 0 {
		c.Chat.MaxMessagesPerTicker = 50
	}
	if c.Chat.MaxTickers == 0 {
		c.Chat.MaxTickers = 20
	}
	if len(c.Analysis.Watchlist) == 0 {
		c.Analysis.Watchlist = []string{"XAUUSD", "EURUSD"}
	}
	setDefault(&c.Analysis.Timeframe, "1h")
	setDefault(&c.Analysis.CandleInterval, "1h")
	if c.Analysis.CandleCount == 0 {
		c.Analysis.CandleCount = 100
	}
	if c.Analysis.HistoryCap == 0 {
		c.Analysis.HistoryCap = 100
	}
	setDefault(&c.Analysis.CycleCron, "0 */15 * * * *")
	setDefault(&c.Analysis.IngestCron, "0 0 6 * * *")
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 10 * time.Second
	}
}

// Validate は必須項目が設定されているかを確認します。
// 問題はすべてまとめて返します。
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	if c.Secret.Key == "" {
		errs = append(errs, errors.New("secret.key is required"))
	}
	switch c.Database.Driver {
	case "sqlite":
	case "postgres":
		if c.Database.Host == "" || c.Database.Name == "" {
			errs = append(errs, errors.New("database.host and database.name are required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not supported", c.Database.Driver))
	}
	switch c.LLM.Provider {
	case "openai", "gemini":
	default:
		errs = append(errs, fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider))
	}
	if c.Chat.MaxMessagesPerTicker < 1 || c.Chat.MaxTickers < 1 {
		errs = append(errs, errors.New("chat caps must be positive"))
	}
	return errors.Join(errs...)
}

// RedisConfigured はRedis接続先が設定されているかを返します。
func (c *Config) RedisConfigured() bool {
	return c.Redis.Host != ""
}

// SlogLevel は LogLevel を slog.Level に変換します。
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Server.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setDefault(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
