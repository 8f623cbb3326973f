// Package dto はinstruments HTTP APIのデータ転送オブジェクトを定義します。
package dto

// InstrumentItem はAPIレスポンスの銘柄です。
type InstrumentItem struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	AssetClass string  `json:"assetClass"`
	PipSize    float64 `json:"pipSize"`
}
