package jwtmw

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ContextSubject   = "subject"
	ContextSessionID = "sessionID"

	// queryTokenKey はWebSocketアップグレード時のようにヘッダーを付けられないクライアント用です。
	queryTokenKey = "access_token"
)

// SessionValidator はセッションが失効していないかを確認します。nil の場合は確認しません。
type SessionValidator interface {
	IsActive(ctx context.Context, sessionID string) (bool, error)
}

// AuthRequired はJWTを検証し、認証済みリクエストのみを通過させるGinミドルウェアを返します。
func AuthRequired(secret string, sessions SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Authorization ヘッダー、なければクエリからトークンを取得
		tokenStr, ok := extractToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		if secret == "" {
			// 設定不備（JWT_SECRET 未設定）
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server misconfigured"})
			return
		}

		// 2. 署名を検証（HMAC のみ許可）
		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		// 3. クレームを取り出す
		claims, _ := token.Claims.(jwt.MapClaims)
		sub, _ := claims["sub"].(string)
		sid, _ := claims["sid"].(string)

		// 4. セッション失効の確認
		if sessions != nil && sid != "" {
			active, err := sessions.IsActive(c.Request.Context(), sid)
			if err != nil {
				slog.Error("session lookup failed", "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session lookup failed"})
				return
			}
			if !active {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session revoked"})
				return
			}
		}

		c.Set(ContextSubject, sub)
		c.Set(ContextSessionID, sid)
		c.Next()
	}
}

func extractToken(c *gin.Context) (string, bool) {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		tok := strings.TrimPrefix(auth, "Bearer ")
		return tok, tok != ""
	}
	if auth != "" {
		return "", false
	}
	if tok := c.Query(queryTokenKey); tok != "" {
		return tok, true
	}
	return "", false
}
