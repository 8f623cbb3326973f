// Package usecase は銘柄情報のビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"log/slog"

	"trade_advisor/internal/feature/instruments/domain/entity"
)

// ErrInstrumentNotFound は銘柄がストアに存在しない場合に返されます。
var ErrInstrumentNotFound = errors.New("instrument not found")

// InstrumentRepository は銘柄データの永続化層を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type InstrumentRepository interface {
	ListActive(ctx context.Context) ([]entity.Instrument, error)
	ListActiveCodes(ctx context.Context) ([]string, error)
	FindByCode(ctx context.Context, code string) (*entity.Instrument, error)
	Seed(ctx context.Context, instruments []entity.Instrument) error
}

// InstrumentUsecase は銘柄の一覧と解決を提供します。
type InstrumentUsecase struct {
	repo InstrumentRepository
}

// NewInstrumentUsecase は InstrumentUsecase を生成します。
func NewInstrumentUsecase(r InstrumentRepository) *InstrumentUsecase {
	return &InstrumentUsecase{repo: r}
}

// SeedDefaults は組み込みの銘柄表をストアへ投入します。
func (u *InstrumentUsecase) SeedDefaults(ctx context.Context) error {
	return u.repo.Seed(ctx, entity.Defaults())
}

// ListActiveInstruments はアクティブな銘柄をすべて返します。
func (u *InstrumentUsecase) ListActiveInstruments(ctx context.Context) ([]entity.Instrument, error) {
	return u.repo.ListActive(ctx)
}

// ListActiveCodes はアクティブな銘柄コードを返します。ingest の対象一覧に使います。
func (u *InstrumentUsecase) ListActiveCodes(ctx context.Context) ([]string, error) {
	return u.repo.ListActiveCodes(ctx)
}

// Resolve は code に対応する銘柄を返します。
// ストア、組み込み表、推定の順に探すため、常に利用可能な値を返します。
func (u *InstrumentUsecase) Resolve(ctx context.Context, code string) entity.Instrument {
	code = entity.Normalize(code)
	inst, err := u.repo.FindByCode(ctx, code)
	if err == nil {
		return *inst
	}
	if !errors.Is(err, ErrInstrumentNotFound) {
		slog.Warn("instrument lookup failed, using built-in table", "code", code, "error", err)
	}
	def, _ := entity.Lookup(code)
	return def
}
