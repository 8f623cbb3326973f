package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"trade_advisor/internal/shared/fallback"
)

// maxBodyBytes は外部APIレスポンスの読み取り上限です。
const maxBodyBytes = 4 << 20

// GetJSON は url に GET リクエストを送り、2xx のレスポンスを out にデコードします。
// 失敗時のエラーは fallback の分類（transport / auth / malformed / rate_limited）でラップされます。
func GetJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fallback.Wrap(provider, fallback.ErrMalformed, err.Error())
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fallback.Wrap(provider, fallback.ErrTransport, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// 本文は診断用に少しだけ読む
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("%w (%s)", fallback.FromStatus(provider, resp.StatusCode), string(snippet))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fallback.Wrap(provider, fallback.ErrMalformed, "decode: "+err.Error())
	}
	return nil
}
