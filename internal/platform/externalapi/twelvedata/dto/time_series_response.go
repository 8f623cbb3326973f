// Package dto defines data transfer objects for the Twelve Data API responses.
package dto

// TimeSeriesResponse represents the JSON response from the Twelve Data time_series endpoint.
type TimeSeriesResponse struct {
	Status   string `json:"status"`
	Code     int    `json:"code,omitempty"`
	Message  string `json:"message,omitempty"`
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	Values   []struct {
		Datetime string `json:"datetime"`
		Open     string `json:"open"`
		High     string `json:"high"`
		Low      string `json:"low"`
		Close    string `json:"close"`
		Volume   string `json:"volume"` // FXペアでは省略される
	} `json:"values"`
}

// IndicatorResponse は /sma, /rsi, /vwap などのテクニカル指標エンドポイントのレスポンスです。
// 値のキーは指標名（"sma", "rsi", "vwap"）になります。
type IndicatorResponse struct {
	Status  string              `json:"status"`
	Code    int                 `json:"code,omitempty"`
	Message string              `json:"message,omitempty"`
	Values  []map[string]string `json:"values"`
}
