package adapters

import (
	"time"

	"trade_advisor/internal/feature/auth/domain/entity"
)

// SessionModel は sessions テーブルのGORMモデルです。
type SessionModel struct {
	ID        string     `gorm:"primaryKey;size:36"`
	Subject   string     `gorm:"size:64;not null"`
	UserAgent string     `gorm:"size:512"`
	IPAddress string     `gorm:"size:45"` // IPv6 の最大長
	CreatedAt time.Time  `gorm:"not null"`
	ExpiresAt time.Time  `gorm:"index;not null"`
	RevokedAt *time.Time `gorm:"index"`
}

// TableName はGORMのテーブル名を返します。
func (SessionModel) TableName() string {
	return "sessions"
}

// ToEntity はGORMモデルをドメインエンティティに変換します。
func (m *SessionModel) ToEntity() *entity.Session {
	return &entity.Session{
		ID:        m.ID,
		Subject:   m.Subject,
		UserAgent: m.UserAgent,
		IPAddress: m.IPAddress,
		CreatedAt: m.CreatedAt,
		ExpiresAt: m.ExpiresAt,
		RevokedAt: m.RevokedAt,
	}
}

// SessionModelFromEntity はドメインエンティティをGORMモデルに変換します。
func SessionModelFromEntity(s *entity.Session) *SessionModel {
	return &SessionModel{
		ID:        s.ID,
		Subject:   s.Subject,
		UserAgent: s.UserAgent,
		IPAddress: s.IPAddress,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
		RevokedAt: s.RevokedAt,
	}
}
