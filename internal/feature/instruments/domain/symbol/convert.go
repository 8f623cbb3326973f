// Package symbol は銘柄コードを各プロバイダーのシンボル形式に変換します。
package symbol

import (
	"errors"

	"trade_advisor/internal/feature/instruments/domain/entity"
)

// ErrUnsupported はプロバイダーがその銘柄を扱わない場合に返されます。
var ErrUnsupported = errors.New("instrument not supported by provider")

// oandaIndices はOANDAのCFD銘柄名です。
var oandaIndices = map[string]string{
	"SPX500": "SPX500_USD",
	"NAS100": "NAS100_USD",
	"US30":   "US30_USD",
}

// twelveDataIndices はTwelve Dataの指数シンボルです。
var twelveDataIndices = map[string]string{
	"SPX500": "SPX",
	"NAS100": "NDX",
	"US30":   "DJI",
}

// alphaVantageIndices はAlpha Vantageで取得可能なETF代替シンボルです。
var alphaVantageIndices = map[string]string{
	"SPX500": "SPY",
	"NAS100": "QQQ",
	"US30":   "DIA",
}

// Oanda は "XAUUSD" を "XAU_USD" に変換します。株式は扱いません。
func Oanda(code string) (string, error) {
	code = entity.Normalize(code)
	if s, ok := oandaIndices[code]; ok {
		return s, nil
	}
	if entity.IsCurrencyPair(code) {
		return code[:3] + "_" + code[3:], nil
	}
	return "", ErrUnsupported
}

// AlphaVantage はAlpha Vantage GLOBAL_QUOTE 用のシンボルを返します。
// 通貨ペアと株式はそのまま、指数はETFに置き換えます。
func AlphaVantage(code string) string {
	code = entity.Normalize(code)
	if s, ok := alphaVantageIndices[code]; ok {
		return s
	}
	return code
}

// TwelveData は "XAUUSD" を "XAU/USD" に変換します。株式はそのままです。
func TwelveData(code string) string {
	code = entity.Normalize(code)
	if s, ok := twelveDataIndices[code]; ok {
		return s
	}
	if entity.IsCurrencyPair(code) {
		return code[:3] + "/" + code[3:]
	}
	return code
}

// Proxy はテクニカル分析プロキシ用のシンボル（大文字のコード）を返します。
func Proxy(code string) string {
	return entity.Normalize(code)
}
