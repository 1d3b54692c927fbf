package refprice

import (
	"github.com/shopspring/decimal"

	"maker_go/internal/state"
)

var two = decimal.NewFromInt(2)

// MidCalculator anchors quotes to the mid of the contract's own book:
// (best bid tick + best ask tick) / 2, descaled to a decimal price.
type MidCalculator struct {
	symbol string
	ready  bool
	price  decimal.Decimal
}

// NewMidCalculator creates a calculator for the contract's book.
func NewMidCalculator(symbol string) *MidCalculator {
	return &MidCalculator{symbol: symbol}
}

// UpdatePrice recomputes the mid. An empty side is an expected transient
// condition during startup: readiness stays false, nothing raises.
func (c *MidCalculator) UpdatePrice(s *state.ExchangeState) (decimal.Decimal, bool) {
	book, ok := s.Book(c.symbol)
	if !ok {
		return c.price, c.ready
	}

	bestBid, haveBid := book.BestBid()
	bestAsk, haveAsk := book.BestAsk()
	if !haveBid || !haveAsk {
		return c.price, c.ready
	}

	contract, ok := s.TradableSymbol(c.symbol)
	if !ok {
		return c.price, c.ready
	}

	midTicks := decimal.NewFromInt(bestBid).Add(decimal.NewFromInt(bestAsk)).Div(two)
	c.price = midTicks.Mul(decimal.New(1, -contract.PriceDp))
	c.ready = true
	return c.price, true
}

func (c *MidCalculator) IsReady() bool {
	return c.ready
}

func (c *MidCalculator) Price() (decimal.Decimal, bool) {
	return c.price, c.ready
}
