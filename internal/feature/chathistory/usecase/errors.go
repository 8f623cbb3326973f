package usecase

import "errors"

var (
	// ErrThreadNotFound は銘柄の履歴が存在しない場合にリポジトリが返します。
	ErrThreadNotFound = errors.New("chat thread not found")
	// ErrInvalidTicker は銘柄コードが空の場合に返されます。
	ErrInvalidTicker = errors.New("ticker is required")
	// ErrInvalidMessage はロールや本文が不正なメッセージに返されます。
	ErrInvalidMessage = errors.New("invalid chat message")
	// ErrUnsupportedExport は未知のバージョンのエクスポートを取り込もうとした場合に返されます。
	ErrUnsupportedExport = errors.New("unsupported export version")
)
