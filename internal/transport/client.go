package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"maker_go/internal/domain"
	"maker_go/internal/infra"
)

// Client is the venue websocket connector. It owns the connection
// lifecycle (dial, auth, ping, reconnect) and forwards every inbound
// frame to the handler; it never interprets payloads itself.
type Client struct {
	wsURL       string
	symbol      string
	indexSymbol string
	bookFeed    bool
	signer      *Signer
	handler     MessageHandler
	metrics     *infra.Metrics
	logger      *slog.Logger

	conn      *websocket.Conn
	mu        sync.RWMutex
	writeMu   sync.Mutex
	connected bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewClient creates a client for the configured venue. handler receives
// every raw inbound frame.
func NewClient(cfg *infra.Config, handler MessageHandler) *Client {
	return &Client{
		wsURL:       cfg.Venue.WSURL,
		symbol:      cfg.Symbol,
		indexSymbol: cfg.IndexSymbol,
		bookFeed:    cfg.Trading.ReferencePriceType == infra.RefPriceMid,
		signer:      NewSigner(cfg.Venue.APIKey, cfg.Venue.APISecret, cfg.Venue.APIPassphrase),
		handler:     handler,
		metrics:     infra.GlobalMetrics,
		logger:      slog.Default().With("module", "transport"),
	}
}

// Connect starts the connection loop. It returns immediately; the loop
// keeps dialing and re-dialing until the context is canceled.
func (c *Client) Connect(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go c.connectionLoop(ctx)
	return nil
}

func (c *Client) connectionLoop(ctx context.Context) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := c.connect(ctx); err != nil {
			c.logger.Warn("venue connection failed", slog.Any("error", err))
			time.Sleep(baseDelay)
		} else {
			c.readLoop(ctx)
			c.metrics.SetConnected(false)
		}
	}
}

func (c *Client) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return domain.NewNetworkError("dial", fmt.Errorf("%w: %v", domain.ErrConnectionFailed, err))
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	// Authentication outcome arrives as an `authenticate` message.
	if err := c.sendJSON(c.signer.AuthRequest()); err != nil {
		c.closeConnection()
		return domain.NewNetworkError("authenticate", err)
	}

	// Subscriptions die with the socket, so every successful dial replays
	// the full sequence; a reconnect must not leave the mirror frozen.
	if err := c.subscribe(); err != nil {
		c.closeConnection()
		return domain.NewNetworkError("subscribe", err)
	}

	go c.pingLoop(ctx)
	c.metrics.SetConnected(true)
	c.logger.Info("venue connected", slog.String("url", c.wsURL))
	return nil
}

// subscribe issues the channel subscriptions and state-snapshot fetches
// for the configured contract. The orderbook feed is only needed when
// quoting off the mid price.
func (c *Client) subscribe() error {
	if err := c.SubscribeIndexPrice([]string{c.indexSymbol}); err != nil {
		return err
	}
	if err := c.SubscribePositionStates(); err != nil {
		return err
	}
	if c.bookFeed {
		if err := c.SubscribeOrderbook(c.symbol); err != nil {
			return err
		}
	}
	if err := c.FetchTradableSymbols(); err != nil {
		return err
	}
	if err := c.FetchPositions(); err != nil {
		return err
	}
	if err := c.FetchOpenOrders(); err != nil {
		return err
	}
	return c.WhoAmI()
}

func (c *Client) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.threadSafeWrite(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) threadSafeWrite(msgType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.conn == nil {
		return domain.NewNetworkError("write", fmt.Errorf("no connection"))
	}
	return c.conn.WriteMessage(msgType, data)
}

func (c *Client) sendJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.threadSafeWrite(websocket.TextMessage, b)
}

func (c *Client) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		// Capture the pointer under the lock: a concurrent Disconnect
		// nils c.conn, and reading through it again would panic.
		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()
		if conn == nil {
			return
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))

		_, msg, err := conn.ReadMessage()
		if err != nil {
			c.logger.Warn("read failed, reconnecting", slog.Any("error", err))
			c.closeConnection()
			return
		}
		if c.handler != nil {
			c.handler(msg)
		}
	}
}

func (c *Client) closeConnection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connected = false
}

// Disconnect stops the connection loop and closes the socket.
func (c *Client) Disconnect() {
	if c.cancel != nil {
		c.cancel()
	}
	c.closeConnection()
	c.wg.Wait()
}

// IsConnected reports whether a socket is currently up.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// SubscribeIndexPrice subscribes to index values for the given symbols.
func (c *Client) SubscribeIndexPrice(symbols []string) error {
	return c.sendJSON(subscribeRequest{Type: "subscribe", Channels: []string{channelIndexValues}, Symbols: symbols})
}

// SubscribePositionStates subscribes to incremental position updates.
func (c *Client) SubscribePositionStates() error {
	return c.sendJSON(subscribeRequest{Type: "subscribe", Channels: []string{channelPositionStates}})
}

// SubscribeOrderbook subscribes to the level-2 book for one symbol.
func (c *Client) SubscribeOrderbook(symbol string) error {
	return c.sendJSON(subscribeRequest{Type: "subscribe", Channels: []string{channelOrderbookL2}, Symbols: []string{symbol}})
}

// FetchTradableSymbols requests the tradable-symbol snapshot.
func (c *Client) FetchTradableSymbols() error {
	return c.sendJSON(fetchRequest{Type: "fetch_tradable_symbols"})
}

// FetchPositions requests the position snapshot.
func (c *Client) FetchPositions() error {
	return c.sendJSON(fetchRequest{Type: "fetch_positions"})
}

// FetchOpenOrders requests the open-order snapshot.
func (c *Client) FetchOpenOrders() error {
	return c.sendJSON(fetchRequest{Type: "fetch_open_orders"})
}

// WhoAmI requests the account identity snapshot.
func (c *Client) WhoAmI() error {
	return c.sendJSON(fetchRequest{Type: "whoami"})
}

// PlaceOrder sends an order creation. Fire-and-forget: the ack arrives
// as an `open` (or `order_rejected`) message.
func (c *Client) PlaceOrder(intent domain.OrderIntent) error {
	c.metrics.RecordOrderPlaced()
	return c.sendJSON(orderRequest{
		Type:           "order",
		Symbol:         intent.Symbol,
		Side:           intent.Side,
		Quantity:       intent.Quantity,
		Price:          intent.PriceTicks,
		Leverage:       intent.Leverage,
		OrderType:      intent.OrderType,
		MarginType:     intent.MarginType,
		SettlementType: intent.SettlementType,
		ExtOrderID:     intent.ExtOrderID,
	})
}

// CancelOrder sends a cancellation. The ack arrives as a `done` message.
func (c *Client) CancelOrder(intent domain.CancelIntent) error {
	c.metrics.RecordOrderCanceled()
	return c.sendJSON(cancelRequest{
		Type:           "cancel_order",
		Symbol:         intent.Symbol,
		OrderID:        intent.OrderID,
		SettlementType: intent.SettlementType,
	})
}
