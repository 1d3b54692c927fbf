package refprice

import (
	"github.com/shopspring/decimal"

	"maker_go/internal/state"
)

// IndexCalculator anchors quotes to the venue's index price for the
// configured index symbol, verbatim.
type IndexCalculator struct {
	indexSymbol string
	ready       bool
	price       decimal.Decimal
}

// NewIndexCalculator creates a calculator following indexSymbol.
func NewIndexCalculator(indexSymbol string) *IndexCalculator {
	return &IndexCalculator{indexSymbol: indexSymbol}
}

// UpdatePrice picks up the latest index value. Ready as soon as any
// index value has been mirrored.
func (c *IndexCalculator) UpdatePrice(s *state.ExchangeState) (decimal.Decimal, bool) {
	iv, ok := s.IndexValue(c.indexSymbol)
	if !ok {
		return c.price, c.ready
	}
	c.price = iv.Value
	c.ready = true
	return c.price, true
}

func (c *IndexCalculator) IsReady() bool {
	return c.ready
}

func (c *IndexCalculator) Price() (decimal.Decimal, bool) {
	return c.price, c.ready
}
