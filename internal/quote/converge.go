package quote

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"maker_go/internal/domain"
)

// Intents is the disjoint output of one convergence pass. Amend entries
// carry the desired price/quantity under the existing order's id.
type Intents struct {
	Amend  []domain.OpenOrder
	Create []domain.OpenOrder
	Cancel []domain.OpenOrder
}

// Empty reports whether the pass converged with nothing to do.
func (in *Intents) Empty() bool {
	return len(in.Amend) == 0 && len(in.Create) == 0 && len(in.Cancel) == 0
}

// Converge diffs the desired ladder against the currently resting orders
// and emits the minimal amend/create/cancel sets. Matching is greedy and
// order-preserving: existing bids are walked lowest price first, asks
// highest first, paired against the ladder lists which carry the same
// outermost-first ordering, so normal incremental drift pairs each
// resting order with the level it was quoting. An existing order whose
// remaining quantity matches and whose price is within relistTolerance
// produces no intent at all; re-running convergence against a converged
// book yields empty output.
func Converge(desired Ladder, existing []domain.OpenOrder, relistTolerance decimal.Decimal) Intents {
	var bids, asks []domain.OpenOrder
	for i := range existing {
		switch existing[i].Side {
		case domain.SideBid:
			bids = append(bids, existing[i])
		case domain.SideAsk:
			asks = append(asks, existing[i])
		}
	}
	sort.SliceStable(bids, func(i, j int) bool { return bids[i].Price.LessThan(bids[j].Price) })
	sort.SliceStable(asks, func(i, j int) bool { return asks[i].Price.GreaterThan(asks[j].Price) })
	ordered := append(bids, asks...)

	var out Intents
	now := time.Now().Unix()
	buysMatched, sellsMatched := 0, 0

	for i := range ordered {
		order := &ordered[i]

		var want *domain.OpenOrder
		if order.Side == domain.SideBid {
			if buysMatched < len(desired.Bids) {
				want = &desired.Bids[buysMatched]
				buysMatched++
			}
		} else {
			if sellsMatched < len(desired.Asks) {
				want = &desired.Asks[sellsMatched]
				sellsMatched++
			}
		}

		// No desired level left on this side: the order is stale.
		if want == nil {
			out.Cancel = append(out.Cancel, *order)
			continue
		}

		if want.Quantity != order.Remaining() || priceDrifted(want.Price, order.Price, relistTolerance) {
			out.Amend = append(out.Amend, domain.OpenOrder{
				OrderID:        order.OrderID,
				Symbol:         order.Symbol,
				Side:           order.Side,
				Price:          want.Price,
				Quantity:       want.Quantity,
				Timestamp:      now,
				SettlementType: domain.SettlementTypeDelayed,
			})
		}
	}

	out.Create = append(out.Create, desired.Bids[buysMatched:]...)
	out.Create = append(out.Create, desired.Asks[sellsMatched:]...)
	return out
}

// priceDrifted reports whether the desired price differs from the
// resting price by more than the relist tolerance fraction. Equal prices
// never drift; a zero resting price always does.
func priceDrifted(want, have, tolerance decimal.Decimal) bool {
	if want.Equal(have) {
		return false
	}
	if have.IsZero() {
		return true
	}
	return want.Div(have).Sub(one).Abs().GreaterThan(tolerance)
}
