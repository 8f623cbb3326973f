package entity

import (
	"strings"
	"time"
)

// RiskLevel はニュースリスクの段階です。
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// ParseRiskLevel は大文字小文字を区別せずにリスク段階を解釈します。不明な値は false です。
func ParseRiskLevel(s string) (RiskLevel, bool) {
	switch RiskLevel(strings.ToUpper(strings.TrimSpace(s))) {
	case RiskLow:
		return RiskLow, true
	case RiskMedium:
		return RiskMedium, true
	case RiskHigh:
		return RiskHigh, true
	}
	return "", false
}

// LevelForScore はスコア（0〜100）からリスク段階を決めます。
func LevelForScore(score float64) RiskLevel {
	switch {
	case score >= 65:
		return RiskHigh
	case score >= 35:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Headline はニュース見出しです。
type Headline struct {
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"publishedAt"`
	Impact      RiskLevel `json:"impact"`
}

// NewsRisk は銘柄に関するニュースリスクの評価です。
type NewsRisk struct {
	Ticker    string     `json:"ticker"`
	Level     RiskLevel  `json:"level"`
	Score     float64    `json:"score"`
	Headlines []Headline `json:"headlines"`
	IsReal    bool       `json:"isReal"`
	Timestamp time.Time  `json:"timestamp"`
}
