// Package entity はinstrumentsフィーチャーのドメインモデルを定義します。
package entity

import (
	"strings"
	"time"
)

// AssetClass は銘柄の資産クラスです。ATRの代替値や表示桁数の決定に使います。
type AssetClass string

const (
	AssetForex  AssetClass = "forex"
	AssetMetal  AssetClass = "metal"
	AssetCrypto AssetClass = "crypto"
	AssetIndex  AssetClass = "index"
	AssetStock  AssetClass = "stock"
)

// UnknownBasePrice は基準価格表に無い銘柄の合成価格の基準です。
const UnknownBasePrice = 100.0

// Instrument は取引対象の銘柄です。
type Instrument struct {
	ID         uint       `gorm:"primaryKey"`
	Code       string     `gorm:"size:20;not null;uniqueIndex"`
	Name       string     `gorm:"size:255;not null"`
	AssetClass AssetClass `gorm:"size:16;not null"`
	BasePrice  float64    `gorm:"not null"` // 合成フォールバック価格の基準
	PipSize    float64    `gorm:"not null"` // スプレッドをpipsに換算する単位
	IsActive   bool       `gorm:"not null;default:true"`
	SortKey    int        `gorm:"not null;default:0"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime"`
}

// Decimals は価格の丸め桁数を pip サイズから求めます（pip の1桁下まで）。
func (i Instrument) Decimals() int32 {
	switch {
	case i.PipSize <= 0:
		return 2
	case i.PipSize <= 0.0001:
		return 5
	case i.PipSize <= 0.001:
		return 4
	case i.PipSize <= 0.01:
		return 3
	case i.PipSize <= 0.1:
		return 2
	default:
		return 2
	}
}

// SpreadPips は bid/ask の差を pips に換算します。
func (i Instrument) SpreadPips(bid, ask float64) float64 {
	if i.PipSize <= 0 {
		return ask - bid
	}
	return (ask - bid) / i.PipSize
}

// defaults は組み込みの銘柄表です。DBへの初期投入と、DB未登録銘柄の補完に使います。
var defaults = []Instrument{
	{Code: "XAUUSD", Name: "Gold / US Dollar", AssetClass: AssetMetal, BasePrice: 2650, PipSize: 0.1, SortKey: 10},
	{Code: "XAGUSD", Name: "Silver / US Dollar", AssetClass: AssetMetal, BasePrice: 31, PipSize: 0.01, SortKey: 20},
	{Code: "EURUSD", Name: "Euro / US Dollar", AssetClass: AssetForex, BasePrice: 1.085, PipSize: 0.0001, SortKey: 30},
	{Code: "GBPUSD", Name: "British Pound / US Dollar", AssetClass: AssetForex, BasePrice: 1.27, PipSize: 0.0001, SortKey: 40},
	{Code: "USDJPY", Name: "US Dollar / Japanese Yen", AssetClass: AssetForex, BasePrice: 150, PipSize: 0.01, SortKey: 50},
	{Code: "AUDUSD", Name: "Australian Dollar / US Dollar", AssetClass: AssetForex, BasePrice: 0.66, PipSize: 0.0001, SortKey: 60},
	{Code: "USDCHF", Name: "US Dollar / Swiss Franc", AssetClass: AssetForex, BasePrice: 0.88, PipSize: 0.0001, SortKey: 70},
	{Code: "USDCAD", Name: "US Dollar / Canadian Dollar", AssetClass: AssetForex, BasePrice: 1.36, PipSize: 0.0001, SortKey: 80},
	{Code: "BTCUSD", Name: "Bitcoin / US Dollar", AssetClass: AssetCrypto, BasePrice: 65000, PipSize: 1, SortKey: 90},
	{Code: "ETHUSD", Name: "Ethereum / US Dollar", AssetClass: AssetCrypto, BasePrice: 3200, PipSize: 0.1, SortKey: 100},
	{Code: "SPX500", Name: "S&P 500", AssetClass: AssetIndex, BasePrice: 5800, PipSize: 0.1, SortKey: 110},
	{Code: "NAS100", Name: "Nasdaq 100", AssetClass: AssetIndex, BasePrice: 20000, PipSize: 0.1, SortKey: 120},
	{Code: "US30", Name: "Dow Jones 30", AssetClass: AssetIndex, BasePrice: 42000, PipSize: 1, SortKey: 130},
	{Code: "AAPL", Name: "Apple Inc.", AssetClass: AssetStock, BasePrice: 190, PipSize: 0.01, SortKey: 140},
	{Code: "TSLA", Name: "Tesla Inc.", AssetClass: AssetStock, BasePrice: 240, PipSize: 0.01, SortKey: 150},
}

// Defaults は組み込みの銘柄表のコピーを返します。
func Defaults() []Instrument {
	out := make([]Instrument, len(defaults))
	for i, d := range defaults {
		d.IsActive = true
		out[i] = d
	}
	return out
}

// Lookup は組み込みの銘柄表から code を探します。見つからない場合は推定した銘柄を返し、ok は false です。
func Lookup(code string) (Instrument, bool) {
	code = Normalize(code)
	for _, d := range defaults {
		if d.Code == code {
			d.IsActive = true
			return d, true
		}
	}
	return Guess(code), false
}

// Guess は未知のコードから資産クラスを推定した銘柄を作ります。基準価格は UnknownBasePrice です。
func Guess(code string) Instrument {
	code = Normalize(code)
	class := AssetStock
	pip := 0.01
	if isCurrencyPair(code) {
		class, pip = AssetForex, 0.0001
		if strings.HasSuffix(code, "JPY") {
			pip = 0.01
		}
	}
	return Instrument{Code: code, Name: code, AssetClass: class, BasePrice: UnknownBasePrice, PipSize: pip, IsActive: true}
}

// Normalize はコードを大文字化し、区切り文字を取り除きます（"xau/usd" -> "XAUUSD"）。
func Normalize(code string) string {
	r := strings.NewReplacer("/", "", "_", "", "-", "", " ", "")
	return strings.ToUpper(r.Replace(strings.TrimSpace(code)))
}

// knownCurrencies は3文字通貨コードです。6文字コードが通貨ペアかの判定に使います。
var knownCurrencies = map[string]struct{}{
	"USD": {}, "EUR": {}, "GBP": {}, "JPY": {}, "AUD": {}, "NZD": {}, "CAD": {}, "CHF": {},
	"CNH": {}, "HKD": {}, "SGD": {}, "SEK": {}, "NOK": {}, "MXN": {}, "ZAR": {}, "TRY": {},
	"XAU": {}, "XAG": {}, "XPT": {}, "XPD": {}, "BTC": {}, "ETH": {},
}

func isCurrencyPair(code string) bool {
	if len(code) != 6 {
		return false
	}
	_, a := knownCurrencies[code[:3]]
	_, b := knownCurrencies[code[3:]]
	return a && b
}

// IsCurrencyPair は code が3文字+3文字の通貨ペアかを返します。
func IsCurrencyPair(code string) bool {
	return isCurrencyPair(Normalize(code))
}
