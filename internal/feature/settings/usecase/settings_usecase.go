// Package usecase はアプリケーション設定（LLMの認証情報など）の保存と取得を実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// KeyLLMCredential は封緘したLLM APIキーの設定キーです。封緘時の関連データにも使います。
const KeyLLMCredential = "llm_api_key"

var (
	// ErrSettingNotFound は設定が保存されていない場合にリポジトリが返します。
	ErrSettingNotFound = errors.New("setting not found")
	// ErrCredentialNotSet は保存値も設定ファイルの値もない場合に返されます。
	ErrCredentialNotSet = errors.New("llm credential is not configured")
	// ErrInvalidCredential は空のキーを保存しようとした場合に返されます。
	ErrInvalidCredential = errors.New("llm credential must not be empty")
)

// SettingRepository は設定値の永続化層を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type SettingRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Sealer は保存値の暗号化を行います。
type Sealer interface {
	Seal(plaintext, aad string) (string, error)
	Open(sealed, aad string) (string, error)
}

// CredentialSource は現在有効な認証情報の出所です。
type CredentialSource string

const (
	SourceStored CredentialSource = "stored"
	SourceConfig CredentialSource = "config"
	SourceNone   CredentialSource = "none"
)

// CredentialStatus は認証情報の設定状況です。キー本体は含めません。
type CredentialStatus struct {
	Configured bool             `json:"configured"`
	Source     CredentialSource `json:"source"`
	Hint       string           `json:"hint,omitempty"`
}

type SettingsUsecase struct {
	repo      SettingRepository
	sealer    Sealer
	configKey string
}

// NewSettingsUsecase は SettingsUsecase を生成します。
// configKey は保存値がない場合に使う設定ファイル由来のAPIキーです。
func NewSettingsUsecase(repo SettingRepository, sealer Sealer, configKey string) *SettingsUsecase {
	return &SettingsUsecase{repo: repo, sealer: sealer, configKey: strings.TrimSpace(configKey)}
}

// SetLLMCredential はAPIキーを封緘して保存します。次回のチャットから有効になります。
func (u *SettingsUsecase) SetLLMCredential(ctx context.Context, apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return ErrInvalidCredential
	}
	sealed, err := u.sealer.Seal(apiKey, KeyLLMCredential)
	if err != nil {
		return fmt.Errorf("seal llm credential: %w", err)
	}
	if err := u.repo.Put(ctx, KeyLLMCredential, sealed); err != nil {
		return fmt.Errorf("store llm credential: %w", err)
	}
	slog.Info("llm credential updated", "hint", mask(apiKey))
	return nil
}

// ClearLLMCredential は保存されたAPIキーを削除します。設定ファイルの値は残ります。
func (u *SettingsUsecase) ClearLLMCredential(ctx context.Context) error {
	return u.repo.Delete(ctx, KeyLLMCredential)
}

// LLMCredential は有効なAPIキーを返します。保存値、設定ファイルの値の順に探します。
// 保存値が復号できない場合（鍵の変更など）は警告を出して設定ファイルの値を使います。
func (u *SettingsUsecase) LLMCredential(ctx context.Context) (string, error) {
	key, _, err := u.resolve(ctx)
	return key, err
}

// Status は認証情報の設定状況を返します。
func (u *SettingsUsecase) Status(ctx context.Context) (CredentialStatus, error) {
	key, src, err := u.resolve(ctx)
	if errors.Is(err, ErrCredentialNotSet) {
		return CredentialStatus{Source: SourceNone}, nil
	}
	if err != nil {
		return CredentialStatus{}, err
	}
	return CredentialStatus{Configured: true, Source: src, Hint: mask(key)}, nil
}

func (u *SettingsUsecase) resolve(ctx context.Context) (string, CredentialSource, error) {
	sealed, err := u.repo.Get(ctx, KeyLLMCredential)
	switch {
	case err == nil:
		key, openErr := u.sealer.Open(sealed, KeyLLMCredential)
		if openErr == nil {
			return key, SourceStored, nil
		}
		slog.Warn("stored llm credential cannot be opened, falling back to config", "error", openErr)
	case !errors.Is(err, ErrSettingNotFound):
		return "", SourceNone, fmt.Errorf("load llm credential: %w", err)
	}
	if u.configKey != "" {
		return u.configKey, SourceConfig, nil
	}
	return "", SourceNone, ErrCredentialNotSet
}

// mask はキーの末尾4文字だけを残します。
func mask(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
