// Package domain はauthフィーチャーのドメインエラーを定義します。
package domain

import "errors"

var (
	// ErrInvalidCredentials はパスワードが一致しない場合に返されます。
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionNotFound はセッションが存在しない場合に返されます。
	ErrSessionNotFound = errors.New("session not found")

	// ErrNotConfigured はオペレーターのパスワードハッシュが未設定の場合に返されます。
	ErrNotConfigured = errors.New("operator password is not configured")
)
