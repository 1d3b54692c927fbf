package dispatch

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"maker_go/internal/domain"
	"maker_go/internal/infra"
	"maker_go/internal/state"
)

// Dispatcher applies inbound venue messages to the exchange state
// mirror, exactly one message per invocation. Each branch parses its
// payload fully before mutating, so a malformed message fails without
// corrupting previously applied state.
type Dispatcher struct {
	store   *state.Store
	metrics *infra.Metrics
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher writing into store.
func NewDispatcher(store *state.Store, metrics *infra.Metrics) *Dispatcher {
	return &Dispatcher{
		store:   store,
		metrics: metrics,
		logger:  slog.Default().With("module", "dispatch"),
	}
}

// HandleMessage is the transport's inbound callback. Errors are logged
// and counted, never propagated back into the read loop.
func (d *Dispatcher) HandleMessage(raw []byte) {
	if err := d.Dispatch(raw); err != nil {
		d.metrics.RecordError()
		d.logger.Error("message dispatch failed", slog.Any("error", err))
	}
}

// Dispatch decodes one envelope and applies its state transition.
func (d *Dispatcher) Dispatch(raw []byte) error {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedMessage, err)
	}
	d.metrics.RecordMessage()

	switch env.Type {
	case KindAuthenticate:
		return d.onAuthenticate(env.Data)
	case KindIndexValue:
		return d.onIndexValue(env.Data)
	case KindUserPositions:
		return d.onUserPositions(env.Data)
	case KindPositionState:
		return d.onPositionState(env.Data)
	case KindOpenOrders:
		return d.onOpenOrders(env.Data)
	case KindOpen:
		return d.onOpen(env.Data)
	case KindDone:
		return d.onDone(env.Data)
	case KindTradableSymbols:
		return d.onTradableSymbols(env.Data)
	case KindOrderbookSnapshot:
		return d.onOrderbookSnapshot(env.Data)
	case KindOrderbookDelta:
		return d.onOrderbookDelta(env.Data)
	case KindWhoAmI:
		return d.onWhoAmI(env.Data)
	case KindError:
		d.logger.Error("venue reported error", slog.String("data", string(env.Data)))
		return nil
	case KindOrderRejected:
		d.logger.Warn("order rejected", slog.String("data", string(env.Data)))
		return nil
	case KindTicker, KindFairPrice, KindUserAccounts, KindOrderReceived, KindSuccess:
		// Diagnostic-only kinds; no state transition.
		d.logger.Debug("ignored message", slog.String("type", env.Type))
		return nil
	default:
		d.metrics.RecordUnknownMessage()
		d.logger.Warn("unknown message type", slog.String("type", env.Type))
		return nil
	}
}

func (d *Dispatcher) onAuthenticate(data json.RawMessage) error {
	var p authPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: authenticate: %v", domain.ErrMalformedMessage, err)
	}
	ok := p.Message == "success"
	if ok {
		d.logger.Info("authenticated with venue")
	} else {
		d.logger.Warn("authentication refused", slog.String("message", p.Message))
	}
	return d.store.Apply(func(s *state.ExchangeState) error {
		s.SetAuthenticated(ok)
		return nil
	})
}

func (d *Dispatcher) onIndexValue(data json.RawMessage) error {
	var p indexValuePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: index_value: %v", domain.ErrMalformedMessage, err)
	}
	return d.store.Apply(func(s *state.ExchangeState) error {
		s.SetIndexValue(domain.IndexValue{
			Symbol: s.IndexSymbol,
			Value:  p.Value,
			Denom:  p.Denom,
		})
		return nil
	})
}

func (d *Dispatcher) onUserPositions(data json.RawMessage) error {
	var p userPositionsPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: user_positions: %v", domain.ErrMalformedMessage, err)
	}
	positions := make(map[string]domain.Position, len(p.Positions))
	for _, pos := range p.Positions {
		parsed := pos.toDomain()
		positions[parsed.Symbol] = parsed
	}
	return d.store.Apply(func(s *state.ExchangeState) error {
		s.ReplacePositions(positions)
		return nil
	})
}

func (d *Dispatcher) onPositionState(data json.RawMessage) error {
	var p positionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: position_state: %v", domain.ErrMalformedMessage, err)
	}
	return d.store.Apply(func(s *state.ExchangeState) error {
		if p.Quantity != 0 {
			s.UpsertPosition(p.toDomain())
		} else {
			s.RemovePosition(p.Symbol)
		}
		return nil
	})
}

func (d *Dispatcher) onOpenOrders(data json.RawMessage) error {
	var p openOrdersPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: open_orders: %v", domain.ErrMalformedMessage, err)
	}
	return d.store.Apply(func(s *state.ExchangeState) error {
		// Parse everything before touching the mirror so a missing
		// symbol fails the whole message.
		parsed := make(map[string][]domain.OpenOrder, len(p.OpenOrders))
		for symbol, orders := range p.OpenOrders {
			contract, ok := s.TradableSymbol(symbol)
			if !ok {
				return fmt.Errorf("open_orders for %s: %w", symbol, domain.ErrUnknownSymbol)
			}
			list := make([]domain.OpenOrder, 0, len(orders))
			for i := range orders {
				list = append(list, orders[i].toDomain(contract.PriceDp))
			}
			parsed[symbol] = list
		}
		for symbol, list := range parsed {
			s.ReplaceOpenOrders(symbol, list)
		}
		return nil
	})
}

func (d *Dispatcher) onOpen(data json.RawMessage) error {
	var p openOrderPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: open: %v", domain.ErrMalformedMessage, err)
	}
	return d.store.Apply(func(s *state.ExchangeState) error {
		contract, ok := s.TradableSymbol(p.Symbol)
		if !ok {
			return fmt.Errorf("open for %s: %w", p.Symbol, domain.ErrUnknownSymbol)
		}
		s.AppendOpenOrder(p.toDomain(contract.PriceDp))
		return nil
	})
}

func (d *Dispatcher) onDone(data json.RawMessage) error {
	var p donePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: done: %v", domain.ErrMalformedMessage, err)
	}
	return d.store.Apply(func(s *state.ExchangeState) error {
		symbol := p.Symbol
		if symbol == "" {
			symbol = s.Symbol
		}
		if !s.RemoveOpenOrder(symbol, p.OrderID) {
			d.logger.Debug("done for unmirrored order",
				slog.String("symbol", symbol),
				slog.Uint64("order_id", p.OrderID))
		}
		return nil
	})
}

func (d *Dispatcher) onTradableSymbols(data json.RawMessage) error {
	var p tradableSymbolsPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: tradable_symbols: %v", domain.ErrMalformedMessage, err)
	}
	symbols := make(map[string]domain.TradableSymbol, len(p.Symbols))
	for _, sym := range p.Symbols {
		parsed := sym.toDomain()
		symbols[parsed.Symbol] = parsed
	}
	return d.store.Apply(func(s *state.ExchangeState) error {
		s.SetTradableSymbols(symbols)
		return nil
	})
}

func (d *Dispatcher) onOrderbookSnapshot(data json.RawMessage) error {
	var p orderbookPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: orderbook_snapshot: %v", domain.ErrMalformedMessage, err)
	}
	bids, err := p.levels(domain.SideBid)
	if err != nil {
		return err
	}
	asks, err := p.levels(domain.SideAsk)
	if err != nil {
		return err
	}
	book := domain.NewOrderbook(p.Symbol)
	for tick, size := range bids {
		book.Upsert(domain.SideBid, tick, size)
	}
	for tick, size := range asks {
		book.Upsert(domain.SideAsk, tick, size)
	}
	return d.store.Apply(func(s *state.ExchangeState) error {
		// A snapshot fully replaces prior book contents for the symbol.
		s.SetBook(book)
		return nil
	})
}

func (d *Dispatcher) onOrderbookDelta(data json.RawMessage) error {
	var p orderbookPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: orderbook_delta: %v", domain.ErrMalformedMessage, err)
	}
	bids, err := p.levels(domain.SideBid)
	if err != nil {
		return err
	}
	asks, err := p.levels(domain.SideAsk)
	if err != nil {
		return err
	}
	return d.store.Apply(func(s *state.ExchangeState) error {
		book, ok := s.Book(p.Symbol)
		if !ok {
			// Benign race: the delta stream can outrun the snapshot.
			d.logger.Debug("delta before snapshot, dropped", slog.String("symbol", p.Symbol))
			return nil
		}
		d.applyDeltas(book, domain.SideBid, bids)
		d.applyDeltas(book, domain.SideAsk, asks)
		return nil
	})
}

func (d *Dispatcher) applyDeltas(book *domain.Orderbook, side domain.Side, levels map[int64]int64) {
	for tick, size := range levels {
		if size == 0 {
			if !book.Delete(side, tick) {
				d.logger.Debug("delete of untracked book level",
					slog.String("symbol", book.Symbol),
					slog.String("side", string(side)),
					slog.Int64("price_tick", tick))
			}
			continue
		}
		book.Upsert(side, tick, size)
	}
}

func (d *Dispatcher) onWhoAmI(data json.RawMessage) error {
	d.logger.Info("received account identity")
	return d.store.Apply(func(s *state.ExchangeState) error {
		s.SetIdentity(append(json.RawMessage(nil), data...))
		return nil
	})
}
