// Package fallback は外部プロバイダー呼び出しの結果を「実データ」と「合成データ」に区別して運ぶ型を提供します。
package fallback

import (
	"context"
	"errors"
	"fmt"
)

// 外部呼び出しの失敗分類です。アダプターはこれらを %w でラップして返します。
var (
	// ErrTransport はネットワーク・接続レベルの失敗を表します。
	ErrTransport = errors.New("transport failure")
	// ErrAuth は認証情報の欠落・期限切れを表します。
	ErrAuth = errors.New("authentication failure")
	// ErrMalformed は想定外のレスポンス形式を表します。
	ErrMalformed = errors.New("malformed response")
	// ErrInsufficientData は計算に必要な入力が不足していることを表します。
	ErrInsufficientData = errors.New("insufficient input data")
	// ErrRateLimited はプロバイダーがレート制限・クォータ超過を報告したことを表します。
	ErrRateLimited = errors.New("rate limited")
)

// Kind は失敗分類の文字列表現です。JSONレスポンスやログに使用します。
type Kind string

const (
	KindNone         Kind = ""
	KindTransport    Kind = "transport"
	KindAuth         Kind = "auth"
	KindMalformed    Kind = "malformed"
	KindInsufficient Kind = "insufficient_data"
	KindRateLimited  Kind = "rate_limited"
	KindUnknown      Kind = "unknown"
)

// Classify はエラーを失敗分類に変換します。nil の場合は KindNone を返します。
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrAuth):
		return KindAuth
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrMalformed):
		return KindMalformed
	case errors.Is(err, ErrInsufficientData):
		return KindInsufficient
	case errors.Is(err, ErrTransport),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return KindTransport
	default:
		return KindUnknown
	}
}

// Result は常に利用可能な値と、その値が合成データかどうかを保持します。
// Fallback が true の場合、Reason に元の失敗理由が入ります。
type Result[T any] struct {
	Value    T
	Fallback bool
	Reason   error
}

// Live は実データの Result を生成します。
func Live[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Synthetic は合成データの Result を生成します。reason が nil の場合は ErrInsufficientData を設定します。
func Synthetic[T any](v T, reason error) Result[T] {
	if reason == nil {
		reason = ErrInsufficientData
	}
	return Result[T]{Value: v, Fallback: true, Reason: reason}
}

// IsReal は値が実データかどうかを返します。
func (r Result[T]) IsReal() bool {
	return !r.Fallback
}

// Kind は Reason の失敗分類を返します。
func (r Result[T]) Kind() Kind {
	return Classify(r.Reason)
}

// ReasonText はログ・レスポンス用の理由文字列を返します。
func (r Result[T]) ReasonText() string {
	if r.Reason == nil {
		return ""
	}
	return r.Reason.Error()
}

// Wrap はプロバイダー名付きで失敗分類をラップします。
//
//	return fallback.Wrap("oanda", fallback.ErrAuth, "missing token")
func Wrap(provider string, kind error, detail string) error {
	if detail == "" {
		return fmt.Errorf("%s: %w", provider, kind)
	}
	return fmt.Errorf("%s: %w: %s", provider, kind, detail)
}

// FromStatus はHTTPステータスコードを失敗分類に変換します。
func FromStatus(provider string, status int) error {
	switch {
	case status == 401 || status == 403:
		return Wrap(provider, ErrAuth, fmt.Sprintf("http %d", status))
	case status == 429:
		return Wrap(provider, ErrRateLimited, fmt.Sprintf("http %d", status))
	case status >= 500:
		return Wrap(provider, ErrTransport, fmt.Sprintf("http %d", status))
	default:
		return Wrap(provider, ErrMalformed, fmt.Sprintf("http %d", status))
	}
}
