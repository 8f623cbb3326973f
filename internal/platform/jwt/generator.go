package jwtmw

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Generator はJWTトークン生成のインターフェースです。
type Generator interface {
	// GenerateToken は subject とセッションIDを含む署名済みトークンを生成します。
	GenerateToken(subject, sessionID string) (string, time.Time, error)
}

type generator struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewGenerator は署名鍵と有効期間を指定して Generator を生成します。
func NewGenerator(secret string, expiration time.Duration) *generator {
	return &generator{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// GenerateToken は HS256 で署名したトークンと有効期限を返します。
func (g *generator) GenerateToken(subject, sessionID string) (string, time.Time, error) {
	now := g.now()
	exp := now.Add(g.expiration)
	claims := jwt.MapClaims{
		"sub": subject,
		"sid": sessionID,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, exp, nil
}
