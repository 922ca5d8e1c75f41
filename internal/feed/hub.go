// Package feed は公開フィードの変更を WebSocket クライアントへ配信する。
package feed

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sharewall/backend/internal/model"
)

const (
	defaultBuffer = 64
	writeWait     = 10 * time.Second
)

// Hub fans feed events out to connected wall clients.
// Notify never blocks; events are dropped when the buffer is full, and every
// client is then closed with CloseTryAgainLater so it refetches the feed.
type Hub struct {
	upgrader websocket.Upgrader
	events   chan model.FeedEvent
	dropped  atomic.Bool

	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
}

// NewHub creates a Hub. allowedOrigins restricts browser origins;
// "*" allows any. Requests without an Origin header (non-browser) are accepted.
func NewHub(allowedOrigins []string) *Hub {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
		events:  make(chan model.FeedEvent, defaultBuffer),
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Notify queues ev for broadcast.
func (h *Hub) Notify(ev model.FeedEvent) {
	select {
	case h.events <- ev:
	default:
		h.dropped.Store(true)
		slog.Warn("feed event dropped", "type", ev.Type, "share_id", ev.ShareID)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run broadcasts queued events until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll(websocket.CloseGoingAway, "server shutting down")
			return
		case ev := <-h.events:
			h.broadcast(ev)
			// 取りこぼしがあると購読側の状態が保存値とずれるので再取得させる
			if h.dropped.Swap(false) {
				h.closeAll(websocket.CloseTryAgainLater, "feed events dropped, refetch")
			}
		}
	}
}

func (h *Hub) broadcast(ev model.FeedEvent) {
	// range 中に delete しないようスナップショットを取ってからロックを外す
	h.mu.RLock()
	snapshot := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		snapshot = append(snapshot, c)
	}
	h.mu.RUnlock()

	for _, c := range snapshot {
		_ = c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteJSON(ev); err != nil {
			slog.Debug("feed client write failed", "error", err)
			h.remove(c)
		}
	}
}

// ServeWS handles GET /shares/stream.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade は失敗時に自身でエラーレスポンスを書く
		slog.Warn("feed upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()
	slog.Info("feed client connected", "clients", total)

	// クライアントからの受信は切断検知のためだけに読む
	for {
		if _, _, err := conn.NextReader(); err != nil {
			break
		}
	}
	h.remove(conn)
}

func (h *Hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	remaining := len(h.clients)
	h.mu.Unlock()

	if ok {
		_ = c.Close()
		slog.Info("feed client disconnected", "clients", remaining)
	}
}

func (h *Hub) closeAll(code int, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		_ = c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(code, reason),
			time.Now().Add(time.Second))
		_ = c.Close()
		delete(h.clients, c)
	}
}
