package db

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// TestBuildDSN_Postgres はPostgres用のDSN文字列が正しく生成されることを検証します。
func TestBuildDSN_Postgres(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Driver:   DriverPostgres,
		User:     "testuser",
		Password: "testpass",
		Name:     "testdb",
		Host:     "localhost",
		Port:     "5433",
		SSLMode:  "require",
	}

	dsn := BuildDSN(cfg)

	expected := "host=localhost user=testuser password=testpass dbname=testdb port=5433 sslmode=require TimeZone=UTC"
	if dsn != expected {
		t.Errorf("expected DSN %q, got %q", expected, dsn)
	}
}

// TestBuildDSN_PostgresDefaults はポートとsslmodeのデフォルト値を検証します。
func TestBuildDSN_PostgresDefaults(t *testing.T) {
	t.Parallel()

	dsn := BuildDSN(Config{Driver: DriverPostgres, Host: "db", User: "u", Password: "p", Name: "n"})

	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC", dsn)
}

// TestBuildDSN_SQLite はSQLiteではファイルパス、未指定時はインメモリDBになることを検証します。
func TestBuildDSN_SQLite(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "data/app.db", BuildDSN(Config{Driver: DriverSQLite, SQLitePath: "data/app.db"}))
	assert.Equal(t, "file::memory:?cache=shared", BuildDSN(Config{Driver: DriverSQLite}))
}

func TestOpenerFor_UnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := OpenerFor("mysql")
	require.Error(t, err)
}

// TestConnectWithRetry_SuccessOnFirstTry は初回接続成功時にリトライせずDBを返すことを検証します。
func TestConnectWithRetry_SuccessOnFirstTry(t *testing.T) {
	t.Parallel()

	mockDB := &gorm.DB{}
	opener := func(dsn string) (*gorm.DB, error) {
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", 5*time.Second, opener)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db != mockDB {
		t.Error("expected mock DB to be returned")
	}
}

// TestConnectWithRetry_RetriesOnFailure は接続失敗時にリトライして最終的に成功することを検証します。
func TestConnectWithRetry_RetriesOnFailure(t *testing.T) {
	// リトライ待機があるため並列実行しない
	mockDB := &gorm.DB{}
	attemptCount := 0

	opener := func(dsn string) (*gorm.DB, error) {
		attemptCount++
		if attemptCount < 3 {
			return nil, errors.New("connection refused")
		}
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", 10*time.Second, opener)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db != mockDB {
		t.Error("expected mock DB to be returned")
	}
	if attemptCount != 3 {
		t.Errorf("expected 3 attempts, got %d", attemptCount)
	}
}

// TestConnectWithRetry_TimeoutAfterRetries はタイムアウト後にエラーが返されることを検証します。
func TestConnectWithRetry_TimeoutAfterRetries(t *testing.T) {
	t.Parallel()

	attemptCount := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attemptCount++
		return nil, errors.New("connection refused")
	}

	_, err := ConnectWithRetry("test-dsn", 100*time.Millisecond, opener)

	if err == nil {
		t.Fatal("expected error after timeout, got nil")
	}
	if attemptCount == 0 {
		t.Error("expected at least one connection attempt")
	}
}

type migrationProbe struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

// TestOpenDB_SQLiteMigrates はSQLiteファイルDBを開いてマイグレーションできることを検証します。
func TestOpenDB_SQLiteMigrates(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "test.db")
	db, err := OpenDB(Config{Driver: DriverSQLite, SQLitePath: path}, true, &migrationProbe{})
	require.NoError(t, err)

	require.NoError(t, db.Create(&migrationProbe{Name: "probe"}).Error)
	var count int64
	require.NoError(t, db.Model(&migrationProbe{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// TestLoadConfigFromEnv は環境変数からデータベース設定が正しく読み込まれることを検証します。
func TestLoadConfigFromEnv(t *testing.T) {
	// 環境変数を変更するため並列実行しない
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_USER", "envuser")
	t.Setenv("DB_PASSWORD", "envpass")
	t.Setenv("DB_NAME", "envdb")
	t.Setenv("DB_HOST", "envhost")
	t.Setenv("DB_PORT", "5433")

	cfg := LoadConfigFromEnv()

	assert.Equal(t, DriverPostgres, cfg.Driver)
	assert.Equal(t, "envuser", cfg.User)
	assert.Equal(t, "envpass", cfg.Password)
	assert.Equal(t, "envdb", cfg.Name)
	assert.Equal(t, "envhost", cfg.Host)
	assert.Equal(t, "5433", cfg.Port)
}

func TestLoadConfigFromEnv_DefaultsToSQLite(t *testing.T) {
	t.Setenv("DB_DRIVER", "")

	cfg := LoadConfigFromEnv()

	assert.Equal(t, DriverSQLite, cfg.Driver)
}
