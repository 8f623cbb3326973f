package jwtmw

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key"

// TestMain はテスト実行前にGinをテストモードに設定します。
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stubSessions struct {
	active bool
	err    error
}

func (s stubSessions) IsActive(ctx context.Context, sessionID string) (bool, error) {
	return s.active, s.err
}

func run(t *testing.T, mw gin.HandlerFunc, target, authHeader string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	if authHeader != "" {
		c.Request.Header.Set("Authorization", authHeader)
	}
	mw(c)
	return w, c
}

// TestAuthRequired_MissingBearerToken はBearerトークンがない場合やプレフィックスが不正な場合に401が返されることを検証します。
func TestAuthRequired_MissingBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		authHeader string
	}{
		{"no header", ""},
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"bearer lowercase", "bearer token123"},
		{"no space after Bearer", "Bearertoken123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w, c := run(t, AuthRequired(testSecret, nil), "/", tt.authHeader)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
			}
			if !c.IsAborted() {
				t.Error("expected request to be aborted")
			}
		})
	}
}

// TestAuthRequired_MissingJWTSecret は署名鍵が未設定の場合に500が返されることを検証します。
func TestAuthRequired_MissingJWTSecret(t *testing.T) {
	t.Parallel()

	w, _ := run(t, AuthRequired("", nil), "/", "Bearer sometoken")

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
}

// TestAuthRequired_InvalidToken は不正なトークン（改ざん・期限切れ等）で401が返されることを検証します。
func TestAuthRequired_InvalidToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token string
	}{
		{"malformed token", "not.a.valid.token"},
		{"random string", "randomstring"},
		{"wrong secret", createTokenWithSecret("wrong-secret", "sid", time.Hour)},
		{"expired token", createTokenWithSecret(testSecret, "sid", -time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w, _ := run(t, AuthRequired(testSecret, nil), "/", "Bearer "+tt.token)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
			}
		})
	}
}

// TestAuthRequired_ValidToken は有効なトークンで通過し、コンテキストに subject が設定されることを検証します。
func TestAuthRequired_ValidToken(t *testing.T) {
	t.Parallel()

	token := createTokenWithSecret(testSecret, "sess-9", time.Hour)
	w, c := run(t, AuthRequired(testSecret, stubSessions{active: true}), "/", "Bearer "+token)

	if c.IsAborted() {
		t.Fatalf("expected request not to be aborted, response: %s", w.Body.String())
	}
	if got := c.GetString(ContextSubject); got != "operator" {
		t.Errorf("expected subject operator, got %q", got)
	}
	if got := c.GetString(ContextSessionID); got != "sess-9" {
		t.Errorf("expected session sess-9, got %q", got)
	}
}

// TestAuthRequired_QueryToken はWebSocket用のクエリパラメータでも認証できることを検証します。
func TestAuthRequired_QueryToken(t *testing.T) {
	t.Parallel()

	token := createTokenWithSecret(testSecret, "sess-1", time.Hour)
	_, c := run(t, AuthRequired(testSecret, nil), "/ws?access_token="+token, "")

	if c.IsAborted() {
		t.Fatal("expected query token to be accepted")
	}
}

func TestAuthRequired_RevokedSession(t *testing.T) {
	t.Parallel()

	token := createTokenWithSecret(testSecret, "sess-1", time.Hour)

	w, _ := run(t, AuthRequired(testSecret, stubSessions{active: false}), "/", "Bearer "+token)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for revoked session, got %d", w.Code)
	}

	w, _ = run(t, AuthRequired(testSecret, stubSessions{err: errors.New("redis down")}), "/", "Bearer "+token)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 on lookup failure, got %d", w.Code)
	}
}

// TestAuthRequired_InvalidSigningMethod はnoneアルゴリズム（未署名）のトークンが拒否されることを検証します。
func TestAuthRequired_InvalidSigningMethod(t *testing.T) {
	t.Parallel()

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "operator",
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	})
	tokenStr, _ := token.SignedString(jwt.UnsafeAllowNoneSignatureType)

	w, _ := run(t, AuthRequired(testSecret, nil), "/", "Bearer "+tokenStr)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

// createTokenWithSecret はテスト用に指定されたシークレットで署名済みJWTトークンを生成します。
func createTokenWithSecret(secret, sid string, expiration time.Duration) string {
	claims := jwt.MapClaims{
		"sub": "operator",
		"sid": sid,
		"exp": time.Now().Add(expiration).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, _ := token.SignedString([]byte(secret))
	return signed
}
