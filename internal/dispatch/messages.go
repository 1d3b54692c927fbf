package dispatch

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"maker_go/internal/domain"
)

// Inbound message kinds. The venue envelope is {"type": ..., "data": ...};
// type selects the dispatch branch. Unknown kinds are logged and dropped.
const (
	KindAuthenticate      = "authenticate"
	KindIndexValue        = "index_value"
	KindUserPositions     = "user_positions"
	KindPositionState     = "position_state"
	KindOpenOrders        = "open_orders"
	KindOpen              = "open"
	KindDone              = "done"
	KindTradableSymbols   = "tradable_symbols"
	KindOrderbookSnapshot = "orderbook_snapshot"
	KindOrderbookDelta    = "orderbook_delta"
	KindTicker            = "ticker"
	KindFairPrice         = "fair_price"
	KindUserAccounts      = "user_accounts"
	KindWhoAmI            = "whoami"
	KindOrderReceived     = "order_received"
	KindOrderRejected     = "order_rejected"
	KindSuccess           = "success"
	KindError             = "error"
)

// Envelope is the venue's outer message frame.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type authPayload struct {
	Message string `json:"message"`
}

type indexValuePayload struct {
	Symbol string          `json:"symbol"`
	Value  decimal.Decimal `json:"value"`
	Denom  string          `json:"denom"`
}

type positionPayload struct {
	Symbol     string          `json:"symbol"`
	Side       string          `json:"side"`
	Quantity   int64           `json:"quantity"`
	EntryPrice decimal.Decimal `json:"entry_price"`
	Leverage   decimal.Decimal `json:"leverage"`
	LiqPrice   decimal.Decimal `json:"liq_price"`
	Timestamp  string          `json:"timestamp"`
	UPnl       int64           `json:"upnl"`
	RPnl       decimal.Decimal `json:"rpnl"`
}

func (p *positionPayload) toDomain() domain.Position {
	return domain.Position{
		Symbol:     p.Symbol,
		Side:       domain.Side(p.Side),
		Quantity:   p.Quantity,
		EntryPrice: p.EntryPrice,
		Leverage:   p.Leverage,
		LiqPrice:   p.LiqPrice,
		Timestamp:  p.Timestamp,
		UPnl:       p.UPnl,
		RPnl:       p.RPnl,
	}
}

type userPositionsPayload struct {
	Positions map[string]positionPayload `json:"positions"`
}

type openOrderPayload struct {
	OrderID        uint64          `json:"order_id"`
	ExtOrderID     string          `json:"ext_order_id"`
	Symbol         string          `json:"symbol"`
	Side           string          `json:"side"`
	Price          decimal.Decimal `json:"price"` // venue-native integer ticks
	Quantity       int64           `json:"quantity"`
	Filled         int64           `json:"filled"`
	Timestamp      int64           `json:"timestamp"`
	Leverage       decimal.Decimal `json:"leverage"`
	OrderType      string          `json:"order_type"`
	MarginType     string          `json:"margin_type"`
	SettlementType string          `json:"settlement_type"`
}

// toDomain descales the venue integer price by the contract's decimal
// places. priceDp must come from fetched symbol metadata, never a default.
func (p *openOrderPayload) toDomain(priceDp int32) domain.OpenOrder {
	return domain.OpenOrder{
		OrderID:        p.OrderID,
		ExtOrderID:     p.ExtOrderID,
		Symbol:         p.Symbol,
		Side:           domain.Side(p.Side),
		Price:          p.Price.Mul(decimal.New(1, -priceDp)),
		Quantity:       p.Quantity,
		Filled:         p.Filled,
		Timestamp:      p.Timestamp,
		Leverage:       p.Leverage,
		OrderType:      p.OrderType,
		MarginType:     p.MarginType,
		SettlementType: p.SettlementType,
	}
}

type openOrdersPayload struct {
	OpenOrders map[string][]openOrderPayload `json:"open_orders"`
}

type donePayload struct {
	Symbol  string `json:"symbol"`
	OrderID uint64 `json:"order_id"`
}

type tradableSymbolPayload struct {
	Symbol            string          `json:"symbol"`
	UnderlyingSymbol  string          `json:"underlying_symbol"`
	TickSize          decimal.Decimal `json:"tick_size"`
	PriceDp           int32           `json:"price_dp"`
	ContractSize      decimal.Decimal `json:"contract_size"`
	IsInversePriced   bool            `json:"is_inverse_priced"`
	LotSize           int64           `json:"lot_size"`
	MaxLeverage       decimal.Decimal `json:"max_leverage"`
	BaseMargin        decimal.Decimal `json:"base_margin"`
	MaintenanceMargin decimal.Decimal `json:"maintenance_margin"`
	MakerFee          decimal.Decimal `json:"maker_fee"`
	TakerFee          decimal.Decimal `json:"taker_fee"`
	LastPrice         decimal.Decimal `json:"last_price"`
}

func (p *tradableSymbolPayload) toDomain() domain.TradableSymbol {
	return domain.TradableSymbol{
		Symbol:            p.Symbol,
		UnderlyingSymbol:  p.UnderlyingSymbol,
		TickSize:          p.TickSize,
		PriceDp:           p.PriceDp,
		ContractSize:      p.ContractSize,
		IsInversePriced:   p.IsInversePriced,
		LotSize:           p.LotSize,
		MaxLeverage:       p.MaxLeverage,
		BaseMargin:        p.BaseMargin,
		MaintenanceMargin: p.MaintenanceMargin,
		MakerFee:          p.MakerFee,
		TakerFee:          p.TakerFee,
		LastPrice:         p.LastPrice,
	}
}

type tradableSymbolsPayload struct {
	Symbols map[string]tradableSymbolPayload `json:"symbols"`
}

// orderbookPayload carries price levels as a map from stringified integer
// price tick to resting size.
type orderbookPayload struct {
	Symbol string           `json:"symbol"`
	Bids   map[string]int64 `json:"bids"`
	Asks   map[string]int64 `json:"asks"`
}

// levels converts the stringified tick keys of one side. A key that is
// not an integer fails the whole message.
func (p *orderbookPayload) levels(side domain.Side) (map[int64]int64, error) {
	raw := p.Bids
	if side == domain.SideAsk {
		raw = p.Asks
	}
	out := make(map[int64]int64, len(raw))
	for key, size := range raw {
		tick, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad price tick %q", domain.ErrMalformedMessage, key)
		}
		out[tick] = size
	}
	return out, nil
}
