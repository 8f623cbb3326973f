// Package api はHTTPレスポンスで共通に使う型を定義します。
package api

// ErrorResponse はエラーレスポンスの共通形式です。
// Code は機械判定用の分類（例: "credential_required", "not_found"）です。
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// MessageResponse は本文のない成功レスポンスです。
type MessageResponse struct {
	Message string `json:"message"`
}

// エラーコード
const (
	CodeInvalidRequest     = "invalid_request"
	CodeUnauthorized       = "unauthorized"
	CodeNotFound           = "not_found"
	CodeCredentialRequired = "credential_required"
	CodeImagesUnsupported  = "images_unsupported"
	CodeUpstream           = "upstream_error"
	CodeInternal           = "internal_error"
)
