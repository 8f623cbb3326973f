// Package adapters はanalysisフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"trade_advisor/internal/feature/analysis/domain/entity"
	"trade_advisor/internal/feature/analysis/usecase"
)

// DefaultHistoryCap は保持する分析履歴の上限です。
const DefaultHistoryCap = 100

// AnalysisRecordModel は analysis_records テーブルの行です。本体はJSONで保存します。
type AnalysisRecordModel struct {
	ID        string                `gorm:"primaryKey;size:36"`
	Ticker    string                `gorm:"size:20;not null;index"`
	Record    entity.AnalysisRecord `gorm:"serializer:json;not null"`
	CreatedAt time.Time             `gorm:"not null;index"`
}

func (AnalysisRecordModel) TableName() string { return "analysis_records" }

type recordGorm struct {
	db  *gorm.DB
	cap int
}

var _ usecase.RecordRepository = (*recordGorm)(nil)

// NewRecordRepository は recordGorm を生成します。limit が0以下なら DefaultHistoryCap です。
func NewRecordRepository(db *gorm.DB, limit int) *recordGorm {
	if limit <= 0 {
		limit = DefaultHistoryCap
	}
	return &recordGorm{db: db, cap: limit}
}

// Save は履歴を追加し、上限を超えた古い行を削除します。
func (r *recordGorm) Save(ctx context.Context, rec entity.AnalysisRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := AnalysisRecordModel{ID: rec.ID, Ticker: rec.Ticker, Record: rec, CreatedAt: rec.CreatedAt}
		if err := tx.Create(&m).Error; err != nil {
			return err
		}

		var stale []string
		if err := tx.Model(&AnalysisRecordModel{}).
			Order("created_at DESC").
			Offset(r.cap).
			Limit(1 << 20).
			Pluck("id", &stale).Error; err != nil {
			return err
		}
		if len(stale) == 0 {
			return nil
		}
		return tx.Where("id IN ?", stale).Delete(&AnalysisRecordModel{}).Error
	})
}

// Latest は銘柄の最新の履歴を返します。存在しない場合は usecase.ErrRecordNotFound です。
func (r *recordGorm) Latest(ctx context.Context, ticker string) (entity.AnalysisRecord, error) {
	var m AnalysisRecordModel
	err := r.db.WithContext(ctx).
		Where("ticker = ?", ticker).
		Order("created_at DESC").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.AnalysisRecord{}, usecase.ErrRecordNotFound
	}
	if err != nil {
		return entity.AnalysisRecord{}, err
	}
	return m.Record, nil
}

// List は新しい順に履歴を返します。ticker が空なら全銘柄です。
func (r *recordGorm) List(ctx context.Context, ticker string, limit int) ([]entity.AnalysisRecord, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if ticker != "" {
		q = q.Where("ticker = ?", ticker)
	}
	var models []AnalysisRecordModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]entity.AnalysisRecord, len(models))
	for i, m := range models {
		out[i] = m.Record
	}
	return out, nil
}
