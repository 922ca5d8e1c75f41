package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sharewall/backend/internal/model"
)

func startHub(t *testing.T, origins []string) (*Hub, string) {
	t.Helper()
	hub := NewHub(origins)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, hub.ClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHub_BroadcastsToAllClients(t *testing.T) {
	hub, url := startHub(t, nil)

	var conns []*websocket.Conn
	for i := 0; i < 2; i++ {
		c, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		defer c.Close()
		conns = append(conns, c)
	}
	waitForClients(t, hub, 2)

	hub.Notify(model.FeedEvent{
		Type:    model.FeedEventPublished,
		ShareID: 3,
		Share:   &model.Share{ID: 3, Name: "Dana", Message: "Hello", Published: true},
	})

	for i, c := range conns {
		_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
		var got model.FeedEvent
		if err := c.ReadJSON(&got); err != nil {
			t.Fatalf("client %d read: %v", i, err)
		}
		if got.Type != model.FeedEventPublished || got.ShareID != 3 || got.Share == nil || got.Share.Name != "Dana" {
			t.Errorf("client %d: unexpected event %+v", i, got)
		}
	}
}

func TestHub_RemovesDisconnectedClient(t *testing.T) {
	hub, url := startHub(t, nil)

	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	waitForClients(t, hub, 1)

	c.Close()
	waitForClients(t, hub, 0)
}

func TestHub_RejectsUnknownOrigin(t *testing.T) {
	_, url := startHub(t, []string{"https://wall.example"})

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		t.Fatal("expected handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %v", resp)
	}

	header.Set("Origin", "https://wall.example")
	c, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("allowed origin rejected: %v", err)
	}
	c.Close()
}

func TestHub_NotifyDoesNotBlockWhenFull(t *testing.T) {
	hub := NewHub(nil) // Run is not started

	done := make(chan struct{})
	go func() {
		for i := 0; i < defaultBuffer*2; i++ {
			hub.Notify(model.FeedEvent{Type: model.FeedEventDeleted, ShareID: int64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked with a full buffer")
	}
}

func TestHub_DroppedEventsCloseClientsForRefetch(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()
	waitForClients(t, hub, 1)

	// Overflow before Run starts: the last unpublish is lost.
	for i := 0; i < defaultBuffer; i++ {
		hub.Notify(model.FeedEvent{Type: model.FeedEventPublished, ShareID: 1, Share: &model.Share{ID: 1, Published: true}})
	}
	hub.Notify(model.FeedEvent{Type: model.FeedEventUnpublished, ShareID: 1})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var ev model.FeedEvent
		err := c.ReadJSON(&ev)
		if err == nil {
			continue
		}
		if !websocket.IsCloseError(err, websocket.CloseTryAgainLater) {
			t.Fatalf("expected close %d, got %v", websocket.CloseTryAgainLater, err)
		}
		break
	}
	waitForClients(t, hub, 0)
}
