// Package dto はsettingsフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

// CredentialRequest は PUT /v1/settings/llm-credential のリクエストボディです。
type CredentialRequest struct {
	APIKey string `json:"apiKey" binding:"required"`
}
