// Package ws は分析結果をWebSocket購読者へ配信するハブを提供します。
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = 30 * time.Second
	sendBuffer   = 64
	maxReadBytes = 512
)

// Envelope は配信メッセージの共通形式です。
type Envelope struct {
	Type   string `json:"type"`
	Ticker string `json:"ticker,omitempty"`
	Data   any    `json:"data"`
}

type message struct {
	ticker string
	data   []byte
}

type client struct {
	conn   *websocket.Conn
	send   chan []byte
	ticker string // 空の場合は全銘柄を購読
}

// Hub は接続中のクライアントを管理し、メッセージをブロードキャストします。
type Hub struct {
	upgrader   websocket.Upgrader
	clients    map[*client]struct{}
	broadcast  chan message
	register   chan *client
	unregister chan *client
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub は Hub を生成します。allowedOrigins が空の場合はすべてのOriginを許可します。
func NewHub(allowedOrigins []string) *Hub {
	h := &Hub{
		clients:    make(map[*client]struct{}),
		broadcast:  make(chan message, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[strings.TrimRight(o, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[strings.TrimRight(origin, "/")]
		return ok
	}
}

// Run は ctx がキャンセルされるまでハブのイベントループを実行します。
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case m := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				if c.ticker != "" && !strings.EqualFold(c.ticker, m.ticker) {
					continue
				}
				select {
				case c.send <- m.data:
				default:
					// 送信バッファが溢れたクライアントは切断する
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish はメッセージをJSONにして配信キューに積みます。キューが満杯の場合は破棄します。
func (h *Hub) Publish(msgType, ticker string, data any) {
	b, err := json.Marshal(Envelope{Type: msgType, Ticker: ticker, Data: data})
	if err != nil {
		slog.Error("failed to marshal ws message", "error", err, "type", msgType)
		return
	}
	select {
	case h.broadcast <- message{ticker: ticker, data: b}:
	default:
		slog.Warn("ws broadcast queue full, dropping message", "type", msgType, "ticker", ticker)
	}
}

// ClientCount は接続中のクライアント数を返します。
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve はHTTP接続をWebSocketにアップグレードします。?ticker= で購読銘柄を絞れます。
func (h *Hub) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "error", err, "remote_addr", c.ClientIP())
		return
	}
	cl := &client{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		ticker: strings.ToUpper(c.Query("ticker")),
	}
	select {
	case h.register <- cl:
	case <-h.done:
		conn.Close()
		return
	}

	go cl.writePump()
	go cl.readPump(h)
}

// readPump は切断検知とpong処理のためだけに読み込みを続けます。
func (c *client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxReadBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.Debug("ws write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
