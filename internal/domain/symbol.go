package domain

import "github.com/shopspring/decimal"

// TradableSymbol holds per-contract metadata reported by the venue.
// Price and quantity fields are immutable once fetched for a session.
type TradableSymbol struct {
	Symbol            string          `json:"symbol"`
	UnderlyingSymbol  string          `json:"underlying_symbol"`
	TickSize          decimal.Decimal `json:"tick_size"`
	PriceDp           int32           `json:"price_dp"` // decimal places of venue-native integer prices
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

// PriceScale returns 10^PriceDp, the factor between decimal prices and
// venue-native integer price ticks.
func (s *TradableSymbol) PriceScale() decimal.Decimal {
	return decimal.New(1, s.PriceDp)
}

// IndexValue is the latest index price for a symbol. Last write wins,
// no history is retained.
type IndexValue struct {
	Symbol string          `json:"symbol"`
	Value  decimal.Decimal `json:"value"`
	Denom  string          `json:"denom"`
}
