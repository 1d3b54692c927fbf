package transport

import (
	"time"

	"maker_go/internal/domain"
)

const (
	baseDelay    = 1 * time.Second
	pingInterval = 30 * time.Second
	readTimeout  = 60 * time.Second
)

// Outbound channel names.
const (
	channelIndexValues    = "index_values"
	channelPositionStates = "position_states"
	channelOrderbookL2    = "orderbook_level2"
)

// authRequest is the authentication handshake frame.
type authRequest struct {
	Type       string `json:"type"`
	Token      string `json:"token"`
	Passphrase string `json:"passphrase"`
	Signature  string `json:"signature"`
	Timestamp  string `json:"timestamp"`
}

// subscribeRequest subscribes to one or more channels.
type subscribeRequest struct {
	Type     string   `json:"type"`
	Channels []string `json:"channels"`
	Symbols  []string `json:"symbols,omitempty"`
}

// fetchRequest is a bare typed request with no payload.
type fetchRequest struct {
	Type string `json:"type"`
}

// orderRequest places a limit order, priced in venue-native ticks.
type orderRequest struct {
	Type           string      `json:"type"`
	Symbol         string      `json:"symbol"`
	Side           domain.Side `json:"side"`
	Quantity       int64       `json:"quantity"`
	Price          int64       `json:"price"`
	Leverage       int         `json:"leverage"`
	OrderType      string      `json:"order_type"`
	MarginType     string      `json:"margin_type"`
	SettlementType string      `json:"settlement_type"`
	ExtOrderID     string      `json:"ext_order_id"`
}

// cancelRequest cancels a resting order by venue order id.
type cancelRequest struct {
	Type           string `json:"type"`
	Symbol         string `json:"symbol"`
	OrderID        uint64 `json:"order_id"`
	SettlementType string `json:"settlement_type"`
}
