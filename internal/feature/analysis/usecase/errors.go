package usecase

import "errors"

var (
	// ErrRecordNotFound は分析履歴が存在しないことを表します。
	ErrRecordNotFound = errors.New("analysis record not found")
	// ErrInvalidTicker はティッカーが空であることを表します。
	ErrInvalidTicker = errors.New("ticker is required")
)
