package usecase

import "errors"

// ErrNoProviders はプロバイダーが1つも設定されていない場合に返されます。
var ErrNoProviders = errors.New("no quote providers configured")
