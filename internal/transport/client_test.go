package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"maker_go/internal/infra"
)

// frameRecorder collects the typed frames a fake venue receives. The
// key for subscribe frames includes the channel so the tests can tell
// the index and position subscriptions apart.
type frameRecorder struct {
	mu   sync.Mutex
	keys []string
}

func (r *frameRecorder) record(raw []byte) {
	var f struct {
		Type     string   `json:"type"`
		Channels []string `json:"channels"`
	}
	if err := json.Unmarshal(raw, &f); err != nil {
		return
	}
	key := f.Type
	if f.Type == "subscribe" && len(f.Channels) > 0 {
		key += ":" + f.Channels[0]
	}
	r.mu.Lock()
	r.keys = append(r.keys, key)
	r.mu.Unlock()
}

func (r *frameRecorder) count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, k := range r.keys {
		if k == key {
			n++
		}
	}
	return n
}

func (r *frameRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.keys...)
}

// newFakeVenue runs a websocket server that records every inbound
// frame. When dropAfter is non-empty the server closes the connection
// after receiving a frame of that kind, once, to force a reconnect.
func newFakeVenue(t *testing.T, rec *frameRecorder, dropAfter string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	var dropped sync.Once
	doDrop := dropAfter != ""

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			rec.record(msg)
			if doDrop {
				var f struct {
					Type string `json:"type"`
				}
				_ = json.Unmarshal(msg, &f)
				if f.Type == dropAfter {
					closed := false
					dropped.Do(func() { closed = true })
					if closed {
						return
					}
				}
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testClientConfig(wsBase string) *infra.Config {
	cfg := &infra.Config{
		Symbol:      "BTCUSD.PERP",
		IndexSymbol: ".BTCUSD",
	}
	cfg.Venue.WSURL = "ws" + strings.TrimPrefix(wsBase, "http")
	cfg.Venue.APIKey = "key"
	cfg.Venue.APISecret = "secret"
	cfg.Trading.ReferencePriceType = infra.RefPriceIndex
	return cfg
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestClientSubscribesOnConnect(t *testing.T) {
	rec := &frameRecorder{}
	srv := newFakeVenue(t, rec, "")
	client := NewClient(testClientConfig(srv.URL), nil)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer client.Disconnect()

	// The whole sequence goes out inside the dial path; the caller
	// issues nothing after Connect.
	waitFor(t, "startup sequence", func() bool { return rec.count("whoami") >= 1 })

	got := rec.snapshot()
	want := []string{
		"authenticate",
		"subscribe:index_values",
		"subscribe:position_states",
		"fetch_tradable_symbols",
		"fetch_positions",
		"fetch_open_orders",
		"whoami",
	}
	if len(got) < len(want) {
		t.Fatalf("frames = %v, want at least %v", got, want)
	}
	for i, key := range want {
		if got[i] != key {
			t.Errorf("frame %d = %q, want %q", i, got[i], key)
		}
	}
	if rec.count("subscribe:orderbook_level2") != 0 {
		t.Error("index pricing must not subscribe the orderbook feed")
	}
}

func TestClientSubscribesOrderbookForMidPricing(t *testing.T) {
	rec := &frameRecorder{}
	srv := newFakeVenue(t, rec, "")
	cfg := testClientConfig(srv.URL)
	cfg.Trading.ReferencePriceType = infra.RefPriceMid
	client := NewClient(cfg, nil)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer client.Disconnect()

	waitFor(t, "startup sequence", func() bool { return rec.count("whoami") >= 1 })
	if rec.count("subscribe:orderbook_level2") != 1 {
		t.Errorf("orderbook subscriptions = %d, want 1", rec.count("subscribe:orderbook_level2"))
	}
}

func TestClientResubscribesOnReconnect(t *testing.T) {
	rec := &frameRecorder{}
	// Venue drops the socket right after the first whoami.
	srv := newFakeVenue(t, rec, "whoami")
	client := NewClient(testClientConfig(srv.URL), nil)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer client.Disconnect()

	// After the drop the connection loop re-dials and must replay the
	// full subscription sequence, or the mirror freezes.
	waitFor(t, "resubscription after reconnect", func() bool {
		return rec.count("whoami") >= 2
	})
	if n := rec.count("subscribe:index_values"); n < 2 {
		t.Errorf("index subscriptions = %d, want at least 2", n)
	}
	if n := rec.count("subscribe:position_states"); n < 2 {
		t.Errorf("position subscriptions = %d, want at least 2", n)
	}
	if n := rec.count("fetch_open_orders"); n < 2 {
		t.Errorf("open-order fetches = %d, want at least 2", n)
	}
}

func TestClientDisconnectDuringRead(t *testing.T) {
	rec := &frameRecorder{}
	srv := newFakeVenue(t, rec, "")
	client := NewClient(testClientConfig(srv.URL), nil)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	waitFor(t, "connection", client.IsConnected)

	// The read loop is blocked in ReadMessage; tearing the connection
	// down underneath it must shut down cleanly, not panic.
	client.Disconnect()
	if client.IsConnected() {
		t.Error("IsConnected should be false after Disconnect")
	}
}
