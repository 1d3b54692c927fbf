package domain

import "github.com/shopspring/decimal"

// Position is the venue-reported position for one symbol. Quantity is
// the unsigned magnitude in contract units; the direction lives in Side.
// A zero-quantity position is never stored, the entry is removed instead.
type Position struct {
	Symbol     string          `json:"symbol"`
	Side       Side            `json:"side"`
	Quantity   int64           `json:"quantity"`
	EntryPrice decimal.Decimal `json:"entry_price"`
	Leverage   decimal.Decimal `json:"leverage"`
	LiqPrice   decimal.Decimal `json:"liq_price"`
	Timestamp  string          `json:"timestamp"`
	UPnl       int64           `json:"upnl"`
	RPnl       decimal.Decimal `json:"rpnl"`
}

// BtcNotional converts the position's contract quantity into BTC using
// the contract's pricing model. Inverse contracts are qty/price; quanto
// and linear contracts are qty*price*contractSize satoshis.
// Returns false when no entry price is known, since dividing by a zero
// entry price is undefined; callers fall back to their configured limit.
func (p *Position) BtcNotional(contract *TradableSymbol) (decimal.Decimal, bool) {
	if p.EntryPrice.IsZero() {
		return decimal.Zero, false
	}
	qty := decimal.NewFromInt(p.Quantity)
	if contract.IsInversePriced {
		return qty.Div(p.EntryPrice), true
	}
	sats := qty.Mul(p.EntryPrice).Mul(contract.ContractSize)
	return sats.Div(satsPerBtc), true
}

// satsPerBtc: quanto/linear contract notional is satoshi-denominated.
var satsPerBtc = decimal.NewFromInt(100_000_000)
