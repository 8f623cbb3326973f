// Package adapters はchathistoryフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trade_advisor/internal/feature/chathistory/domain/entity"
	"trade_advisor/internal/feature/chathistory/usecase"
)

// ChatThreadModel は chat_threads テーブルの行です。メッセージ列はJSONで保存します。
type ChatThreadModel struct {
	Ticker       string               `gorm:"primaryKey;size:20"`
	Messages     []entity.ChatMessage `gorm:"serializer:json;not null"`
	LastActivity time.Time            `gorm:"index;not null"`
}

func (ChatThreadModel) TableName() string { return "chat_threads" }

// threadGorm は ThreadRepository のGORM実装です。
type threadGorm struct {
	db *gorm.DB
}

var _ usecase.ThreadRepository = (*threadGorm)(nil)

// NewThreadRepository は threadGorm を生成します。
func NewThreadRepository(db *gorm.DB) *threadGorm {
	return &threadGorm{db: db}
}

func (r *threadGorm) Get(ctx context.Context, ticker string) (entity.Thread, error) {
	var m ChatThreadModel
	if err := r.db.WithContext(ctx).Where("ticker = ?", ticker).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity.Thread{}, usecase.ErrThreadNotFound
		}
		return entity.Thread{}, err
	}
	return toEntity(m), nil
}

// Save は銘柄の履歴を丸ごと置き換えます。
func (r *threadGorm) Save(ctx context.Context, t entity.Thread) error {
	m := ChatThreadModel{Ticker: t.Ticker, Messages: t.Messages, LastActivity: t.LastActivity}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ticker"}},
			DoUpdates: clause.AssignmentColumns([]string{"messages", "last_activity"}),
		}).
		Create(&m).Error
}

func (r *threadGorm) Delete(ctx context.Context, ticker string) error {
	return r.db.WithContext(ctx).Where("ticker = ?", ticker).Delete(&ChatThreadModel{}).Error
}

func (r *threadGorm) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&ChatThreadModel{}).Error
}

// List は最終更新が新しい順にすべての履歴を返します。
func (r *threadGorm) List(ctx context.Context) ([]entity.Thread, error) {
	var rows []ChatThreadModel
	if err := r.db.WithContext(ctx).Order("last_activity DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Thread, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}

func toEntity(m ChatThreadModel) entity.Thread {
	msgs := m.Messages
	if msgs == nil {
		msgs = []entity.ChatMessage{}
	}
	return entity.Thread{Ticker: m.Ticker, Messages: msgs, LastActivity: m.LastActivity.UTC()}
}
