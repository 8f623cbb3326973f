package cache

import "time"

// DefaultTTL は時間足が不明な場合のキャッシュTTLです。
const DefaultTTL = 5 * time.Minute

// intradayTTL は日中足ごとのキャッシュTTLです。足の確定間隔より十分短くします。
var intradayTTL = map[string]time.Duration{
	"1min":  30 * time.Second,
	"5min":  time.Minute,
	"15min": 3 * time.Minute,
	"30min": 5 * time.Minute,
	"45min": 5 * time.Minute,
	"1h":    10 * time.Minute,
	"2h":    15 * time.Minute,
	"4h":    30 * time.Minute,
}

// IntervalTTL は時間足に応じたTTLを返します。
// 日足以上は次回の定時取り込み（UTC の ingestHour 時）までを有効期限とします。
func IntervalTTL(interval string, now time.Time, ingestHour int) time.Duration {
	if ttl, ok := intradayTTL[interval]; ok {
		return ttl
	}
	switch interval {
	case "1day", "1week", "1month":
		ttl := TimeUntilNextHour(now, ingestHour, time.UTC)
		if ttl < time.Minute {
			return time.Minute
		}
		return ttl
	}
	return DefaultTTL
}

// TimeUntilNextHour は loc における次の hour 時 00 分までの期間を返します。
func TimeUntilNextHour(now time.Time, hour int, loc *time.Location) time.Duration {
	now = now.In(loc)
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, loc)

	// 今日の該当時刻が既に過ぎている場合は翌日
	if !now.Before(next) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
