package entity

import "time"

// Session はオペレーターのログインセッションです。
// JWT の sid クレームに ID が入り、ログアウト時に RevokedAt が設定されます。
type Session struct {
	ID        string     // UUID
	Subject   string     // 常に "operator"
	UserAgent string     // クライアントの User-Agent
	IPAddress string     // クライアントのIPアドレス
	CreatedAt time.Time  // 作成時刻
	ExpiresAt time.Time  // 失効時刻（トークンの exp と同じ）
	RevokedAt *time.Time // 無効化時刻（有効な間は nil）
}

// IsExpired は now の時点でセッションが期限切れかを返します。
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// IsRevoked はセッションが無効化されているかを返します。
func (s *Session) IsRevoked() bool {
	return s.RevokedAt != nil
}

// IsValid は期限切れでも無効化済みでもない場合に true を返します。
func (s *Session) IsValid(now time.Time) bool {
	return !s.IsExpired(now) && !s.IsRevoked()
}
