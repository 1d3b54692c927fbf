package refprice

import (
	"fmt"

	"github.com/shopspring/decimal"

	"maker_go/internal/infra"
	"maker_go/internal/state"
)

// Calculator produces the single scalar anchor price the ladder is
// built around. Implementations are stateful: UpdatePrice recomputes
// from the current mirror and the result is retained for Price.
type Calculator interface {
	// UpdatePrice recomputes the reference price from state. The second
	// return value is false while the calculator has no usable price.
	UpdatePrice(s *state.ExchangeState) (decimal.Decimal, bool)

	// IsReady reports whether the price is considered stable. Relevant
	// for pricing models that need multiple observations to settle.
	IsReady() bool

	// Price returns the last calculated price, absent until ready.
	Price() (decimal.Decimal, bool)
}

// New builds the calculator named by the configuration. An unrecognized
// name is a startup error; it must fail before any connection is made.
func New(kind, symbol, indexSymbol string) (Calculator, error) {
	switch kind {
	case infra.RefPriceIndex:
		return NewIndexCalculator(indexSymbol), nil
	case infra.RefPriceMid:
		return NewMidCalculator(symbol), nil
	default:
		return nil, fmt.Errorf("unknown reference price strategy: %q", kind)
	}
}
