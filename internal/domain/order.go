package domain

import "github.com/shopspring/decimal"

// Side is the order/position side as the venue names it.
type Side string

const (
	SideBid Side = "Bid"
	SideAsk Side = "Ask"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideBid {
		return SideAsk
	}
	return SideBid
}

// Order field defaults used for every quote this desk places.
const (
	OrderTypeLimit        = "Limit"
	MarginTypeIsolated    = "Isolated"
	SettlementTypeDelayed = "Delayed"
	DefaultLeverage       = 100
)

// OpenOrder is a resting order mirrored from the venue. Price is in
// human decimal units, already descaled by the symbol's PriceDp.
type OpenOrder struct {
	OrderID        uint64          `json:"order_id"`
	ExtOrderID     string          `json:"ext_order_id"` // client-assigned correlation token
	Symbol         string          `json:"symbol"`
	Side           Side            `json:"side"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int64           `json:"quantity"` // contract units
	Filled         int64           `json:"filled"`
	Timestamp      int64           `json:"timestamp"`
	Leverage       decimal.Decimal `json:"leverage"`
	OrderType      string          `json:"order_type"`
	MarginType     string          `json:"margin_type"`
	SettlementType string          `json:"settlement_type"`
}

// Remaining is the unfilled quantity. Filled never exceeds Quantity; an
// order with Remaining zero is closed and removed on its `done` message.
func (o *OpenOrder) Remaining() int64 {
	return o.Quantity - o.Filled
}

// OrderIntent is an outbound order creation, priced in venue-native
// integer ticks. Conversion from decimal happens immediately before
// dispatch, never earlier.
type OrderIntent struct {
	Symbol         string `json:"symbol"`
	Side           Side   `json:"side"`
	Quantity       int64  `json:"quantity"`
	PriceTicks     int64  `json:"price"`
	Leverage       int    `json:"leverage"`
	OrderType      string `json:"order_type"`
	MarginType     string `json:"margin_type"`
	SettlementType string `json:"settlement_type"`
	ExtOrderID     string `json:"ext_order_id"`
}

// CancelIntent is an outbound cancellation of a resting order.
type CancelIntent struct {
	Symbol         string `json:"symbol"`
	OrderID        uint64 `json:"order_id"`
	SettlementType string `json:"settlement_type"`
}
