package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"maker_go/internal/domain"
	"maker_go/internal/infra"
	"maker_go/internal/quote"
	"maker_go/internal/refprice"
	"maker_go/internal/state"
	"maker_go/internal/transport"
)

// Quoter is the fixed-cadence reconciliation loop. Each pass reads a
// consistent state snapshot, computes the desired ladder, converges it
// against resting orders and hands the intents to the transport. Passes
// run sequentially in one goroutine, so a slow pass absorbs pending
// ticks instead of overlapping with the next one.
type Quoter struct {
	cfg     *infra.Config
	store   *state.Store
	calc    refprice.Calculator
	gen     *quote.Generator
	tr      transport.Transport
	metrics *infra.Metrics
	logger  *slog.Logger
}

// NewQuoter wires the reconciliation loop.
func NewQuoter(cfg *infra.Config, store *state.Store, calc refprice.Calculator, tr transport.Transport) *Quoter {
	return &Quoter{
		cfg:     cfg,
		store:   store,
		calc:    calc,
		gen:     quote.NewGenerator(cfg.Symbol, &cfg.Trading),
		tr:      tr,
		metrics: infra.GlobalMetrics,
		logger:  slog.Default().With("module", "quoter"),
	}
}

// Run drives the quoting cadence until the context is canceled.
func (q *Quoter) Run(ctx context.Context) {
	interval := time.Duration(q.cfg.QuoteIntervalMS) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	q.logger.Info("quoter started",
		slog.String("symbol", q.cfg.Symbol),
		slog.Duration("interval", interval),
		slog.Bool("dry_run", q.cfg.EnableDryRun))

	for {
		select {
		case <-ctx.Done():
			q.logger.Info("quoter stopping")
			return
		case <-ticker.C:
			q.RunOnce()
		}
	}
}

// RunOnce performs a single reconciliation pass. Safe to call directly
// from tests.
func (q *Quoter) RunOnce() {
	var (
		intents quote.Intents
		ladder  quote.Ladder
		scale   decimal.Decimal
		ready   bool
	)

	q.store.Read(func(s *state.ExchangeState) {
		price, ok := q.calc.UpdatePrice(s)
		if !ok {
			q.logger.Debug("reference price not ready")
			return
		}

		contract, ok := s.TradableSymbol(q.cfg.Symbol)
		if !ok {
			q.logger.Debug("tradable symbol metadata not fetched yet")
			return
		}
		scale = contract.PriceScale()

		ladder, ok = q.gen.Build(s, price)
		if !ok {
			return
		}

		if !q.cfg.EnableDryRun {
			intents = quote.Converge(ladder, s.OpenOrders(q.cfg.Symbol), q.cfg.Trading.RelistTolerance)
		}
		ready = true
	})

	if !ready {
		q.metrics.RecordSkippedPass()
		return
	}
	q.metrics.RecordQuotePass()

	if q.cfg.EnableDryRun {
		q.reportDryRun(ladder)
		return
	}
	q.sendIntents(intents, scale)
}

// sendIntents pushes amends, then creates, then cancels. The venue has
// no amend primitive, so an amend becomes cancel-then-place under the
// existing order id. Creates and cancels go out innermost level first.
func (q *Quoter) sendIntents(intents quote.Intents, scale decimal.Decimal) {
	for _, o := range intents.Amend {
		if err := q.tr.CancelOrder(toCancelIntent(o)); err != nil {
			q.metrics.RecordError()
			q.logger.Error("amend cancel failed", slog.Uint64("order_id", o.OrderID), slog.Any("error", err))
			continue
		}
		if err := q.tr.PlaceOrder(toOrderIntent(o, scale)); err != nil {
			q.metrics.RecordError()
			q.logger.Error("amend place failed", slog.Uint64("order_id", o.OrderID), slog.Any("error", err))
			continue
		}
		q.metrics.RecordOrderAmended()
	}

	for i := len(intents.Create) - 1; i >= 0; i-- {
		o := intents.Create[i]
		if err := q.tr.PlaceOrder(toOrderIntent(o, scale)); err != nil {
			q.metrics.RecordError()
			q.logger.Error("place failed", slog.String("ext_order_id", o.ExtOrderID), slog.Any("error", err))
		}
	}

	for i := len(intents.Cancel) - 1; i >= 0; i-- {
		o := intents.Cancel[i]
		if err := q.tr.CancelOrder(toCancelIntent(o)); err != nil {
			q.metrics.RecordError()
			q.logger.Error("cancel failed", slog.Uint64("order_id", o.OrderID), slog.Any("error", err))
		}
	}
}

// reportDryRun prints the ladder instead of trading: asks outermost
// first, then bids innermost first, so the output reads like a book.
func (q *Quoter) reportDryRun(ladder quote.Ladder) {
	if len(ladder.Bids) == 0 && len(ladder.Asks) == 0 {
		return
	}
	fmt.Println("Dry run. Would place the following orders:")
	for _, o := range ladder.Asks {
		fmt.Printf("%s %d @ price %s\n", o.Side, o.Quantity, o.Price)
	}
	for i := len(ladder.Bids) - 1; i >= 0; i-- {
		o := ladder.Bids[i]
		fmt.Printf("%s %d @ price %s\n", o.Side, o.Quantity, o.Price)
	}
}

// toOrderIntent converts the human-decimal price back to venue-integer
// price ticks immediately before dispatch.
func toOrderIntent(o domain.OpenOrder, scale decimal.Decimal) domain.OrderIntent {
	return domain.OrderIntent{
		Symbol:         o.Symbol,
		Side:           o.Side,
		Quantity:       o.Quantity,
		PriceTicks:     o.Price.Mul(scale).Round(0).IntPart(),
		Leverage:       domain.DefaultLeverage,
		OrderType:      domain.OrderTypeLimit,
		MarginType:     domain.MarginTypeIsolated,
		SettlementType: domain.SettlementTypeDelayed,
		ExtOrderID:     o.ExtOrderID,
	}
}

func toCancelIntent(o domain.OpenOrder) domain.CancelIntent {
	return domain.CancelIntent{
		Symbol:         o.Symbol,
		OrderID:        o.OrderID,
		SettlementType: domain.SettlementTypeDelayed,
	}
}
