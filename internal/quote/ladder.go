package quote

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"maker_go/internal/domain"
	"maker_go/internal/infra"
	"maker_go/internal/state"
	"maker_go/pkg/ticks"
)

var (
	one = decimal.NewFromInt(1)
	two = decimal.NewFromInt(2)
)

// ComputeAnchors derives the bid/ask starting prices from the reference
// price. If the configured offset leaves the spread under minSpread, both
// anchors are widened symmetrically by minSpread/2, which keeps
// bidAnchor < askAnchor for any non-degenerate configuration.
func ComputeAnchors(ref, offsetPct, minSpread decimal.Decimal) (bidAnchor, askAnchor decimal.Decimal) {
	bidAnchor = ref.Mul(one.Sub(offsetPct))
	askAnchor = ref.Mul(one.Add(offsetPct))

	if bidAnchor.Mul(one.Add(minSpread)).GreaterThan(askAnchor) {
		half := minSpread.Div(two)
		bidAnchor = bidAnchor.Mul(one.Sub(half))
		askAnchor = askAnchor.Mul(one.Add(half))
	}
	return bidAnchor, askAnchor
}

// PriceForLevel prices one rung of the stack. Level 1 sits on the anchor
// for its side; further levels branch outward by stackPct per level. If a
// spread-floor correction pushed an anchor across the other side's
// anchor, the start switches sides so the ladder never inverts.
func PriceForLevel(level int, side domain.Side, bidAnchor, askAnchor, stackPct, tickSize decimal.Decimal) decimal.Decimal {
	signed := int64(level - 1)
	start := askAnchor
	if side == domain.SideBid {
		signed = -signed
		start = bidAnchor
	}

	if signed > 0 && start.LessThan(bidAnchor) {
		start = askAnchor
	}
	if signed < 0 && start.GreaterThan(askAnchor) {
		start = bidAnchor
	}

	price := start.Add(decimal.NewFromInt(signed).Mul(start).Mul(stackPct))
	return ticks.RoundDecimalToTick(price, tickSize)
}

// RoomRemaining is the unsigned BTC capacity left on a quoting side
// before the configured position limit is hit. A position on the
// opposite side frees room; one on the same side consumes it. With
// limit checking disabled, or without a usable entry price, room is the
// configured maximum.
func RoomRemaining(side domain.Side, pos *domain.Position, contract *domain.TradableSymbol, params *infra.TradingParams) decimal.Decimal {
	max := params.MaxLongPosBtc
	if side == domain.SideAsk {
		max = params.MaxShortPosBtc
	}
	if !params.CheckPositionLimits || pos == nil {
		return max
	}
	notional, ok := pos.BtcNotional(contract)
	if !ok {
		return max
	}
	if pos.Side == side {
		return max.Sub(notional)
	}
	return max.Add(notional)
}

// Ladder is the full set of desired quotes, both sides ordered outermost
// first so the innermost level is placed last.
type Ladder struct {
	Bids []domain.OpenOrder
	Asks []domain.OpenOrder
}

// Generator turns a reference price plus trading parameters into a
// desired quote ladder for one contract.
type Generator struct {
	symbol string
	params *infra.TradingParams
	rng    *rand.Rand
	now    func() int64
}

// NewGenerator creates a ladder generator for symbol.
func NewGenerator(symbol string, params *infra.TradingParams) *Generator {
	return NewGeneratorWithRand(symbol, params, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewGeneratorWithRand creates a generator drawing random order sizes
// from rng. Tests pass a fixed source to pin the draws.
func NewGeneratorWithRand(symbol string, params *infra.TradingParams, rng *rand.Rand) *Generator {
	return &Generator{
		symbol: symbol,
		params: params,
		rng:    rng,
		now:    func() int64 { return time.Now().Unix() },
	}
}

// QuantityForLevel sizes one rung: either a uniform random draw in
// [minSize, maxSize] or the deterministic arithmetic ladder
// startSize + stepSize*(level-1).
func (g *Generator) QuantityForLevel(level int) int64 {
	p := g.params
	if p.IsRandomOrderSize {
		return p.MinOrderSize + g.rng.Int63n(p.MaxOrderSize-p.MinOrderSize+1)
	}
	return p.StartOrderSize + p.OrderStepSize*int64(level-1)
}

// Build computes the desired ladder from the reference price and the
// current mirror. Returns false when the contract's metadata has not
// been fetched yet; the caller skips the pass.
func (g *Generator) Build(s *state.ExchangeState, ref decimal.Decimal) (Ladder, bool) {
	contract, ok := s.TradableSymbol(g.symbol)
	if !ok {
		return Ladder{}, false
	}

	var pos *domain.Position
	if p, ok := s.Position(g.symbol); ok {
		pos = &p
	}

	p := g.params
	bidAnchor, askAnchor := ComputeAnchors(ref, p.OffsetPct, p.MinSpread)
	longRoom := RoomRemaining(domain.SideBid, pos, &contract, p)
	shortRoom := RoomRemaining(domain.SideAsk, pos, &contract, p)

	var ladder Ladder
	for level := 1; level <= p.NumLevels; level++ {
		if longRoom.IsPositive() {
			if qty := g.QuantityForLevel(level); qty > 0 {
				price := PriceForLevel(level, domain.SideBid, bidAnchor, askAnchor, p.StackPct, contract.TickSize)
				ladder.Bids = append(ladder.Bids, g.newOrder(domain.SideBid, price, qty))
			}
		}
		if shortRoom.IsPositive() {
			if qty := g.QuantityForLevel(level); qty > 0 {
				price := PriceForLevel(level, domain.SideAsk, bidAnchor, askAnchor, p.StackPct, contract.TickSize)
				ladder.Asks = append(ladder.Asks, g.newOrder(domain.SideAsk, price, qty))
			}
		}
	}

	reverse(ladder.Bids)
	reverse(ladder.Asks)
	return ladder, true
}

func (g *Generator) newOrder(side domain.Side, price decimal.Decimal, qty int64) domain.OpenOrder {
	return domain.OpenOrder{
		ExtOrderID:     uuid.NewString(),
		Symbol:         g.symbol,
		Side:           side,
		Price:          price,
		Quantity:       qty,
		Timestamp:      g.now(),
		Leverage:       decimal.NewFromInt(domain.DefaultLeverage),
		OrderType:      domain.OrderTypeLimit,
		MarginType:     domain.MarginTypeIsolated,
		SettlementType: domain.SettlementTypeDelayed,
	}
}

func reverse(orders []domain.OpenOrder) {
	for i, j := 0, len(orders)-1; i < j; i, j = i+1, j-1 {
		orders[i], orders[j] = orders[j], orders[i]
	}
}
