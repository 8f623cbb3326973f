// Package adapters はsettingsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trade_advisor/internal/feature/settings/usecase"
)

// SettingModel は settings テーブルの行です。
type SettingModel struct {
	Name      string    `gorm:"primaryKey;size:64"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (SettingModel) TableName() string { return "settings" }

type settingGorm struct {
	db *gorm.DB
}

var _ usecase.SettingRepository = (*settingGorm)(nil)

// NewSettingRepository は settingGorm を生成します。
func NewSettingRepository(db *gorm.DB) *settingGorm {
	return &settingGorm{db: db}
}

func (r *settingGorm) Get(ctx context.Context, key string) (string, error) {
	var m SettingModel
	if err := r.db.WithContext(ctx).Where("name = ?", key).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", usecase.ErrSettingNotFound
		}
		return "", err
	}
	return m.Value, nil
}

func (r *settingGorm) Put(ctx context.Context, key, value string) error {
	m := SettingModel{Name: key, Value: value}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&m).Error
}

func (r *settingGorm) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("name = ?", key).Delete(&SettingModel{}).Error
}
