package state

import (
	"encoding/json"

	"maker_go/internal/domain"
)

// ExchangeState is the local mirror of venue-reported facts. It is a
// plain aggregate with no locking of its own; Store arbitrates access.
// The message dispatcher is the only writer. Entities live and die by
// messages: created on snapshot/open/state, removed on done/zero-qty.
type ExchangeState struct {
	VenueName   string
	Symbol      string // target contract
	IndexSymbol string

	authenticated bool
	identity      json.RawMessage // whoami snapshot, opaque

	symbols     map[string]domain.TradableSymbol
	indexValues map[string]domain.IndexValue
	positions   map[string]domain.Position
	openOrders  map[string][]domain.OpenOrder
	books       map[string]*domain.Orderbook
}

func newExchangeState(venue, symbol, indexSymbol string) ExchangeState {
	return ExchangeState{
		VenueName:   venue,
		Symbol:      symbol,
		IndexSymbol: indexSymbol,
		symbols:     make(map[string]domain.TradableSymbol),
		indexValues: make(map[string]domain.IndexValue),
		positions:   make(map[string]domain.Position),
		openOrders:  make(map[string][]domain.OpenOrder),
		books:       make(map[string]*domain.Orderbook),
	}
}

// TradableSymbol returns contract metadata. The second return value is
// the explicit absence signal; callers must never treat a zero-valued
// entity as real data.
func (s *ExchangeState) TradableSymbol(symbol string) (domain.TradableSymbol, bool) {
	ts, ok := s.symbols[symbol]
	return ts, ok
}

// SetTradableSymbols replaces the whole symbol map (snapshot semantics).
func (s *ExchangeState) SetTradableSymbols(symbols map[string]domain.TradableSymbol) {
	s.symbols = symbols
}

// IndexValue returns the latest index price for a symbol.
func (s *ExchangeState) IndexValue(symbol string) (domain.IndexValue, bool) {
	iv, ok := s.indexValues[symbol]
	return iv, ok
}

// SetIndexValue upserts an index price. Last write wins.
func (s *ExchangeState) SetIndexValue(iv domain.IndexValue) {
	s.indexValues[iv.Symbol] = iv
}

// Position returns the position for a symbol.
func (s *ExchangeState) Position(symbol string) (domain.Position, bool) {
	p, ok := s.positions[symbol]
	return p, ok
}

// ReplacePositions replaces the whole position map (snapshot semantics).
func (s *ExchangeState) ReplacePositions(positions map[string]domain.Position) {
	s.positions = positions
}

// UpsertPosition stores or overwrites one position.
func (s *ExchangeState) UpsertPosition(p domain.Position) {
	s.positions[p.Symbol] = p
}

// RemovePosition deletes a position entry. A closed position is removed,
// never kept as a zero row.
func (s *ExchangeState) RemovePosition(symbol string) {
	delete(s.positions, symbol)
}

// OpenOrders returns a copy of the open-order list for a symbol, so
// readers cannot alias the dispatcher's backing slice.
func (s *ExchangeState) OpenOrders(symbol string) []domain.OpenOrder {
	orders := s.openOrders[symbol]
	if len(orders) == 0 {
		return nil
	}
	out := make([]domain.OpenOrder, len(orders))
	copy(out, orders)
	return out
}

// ReplaceOpenOrders replaces the open-order list for one symbol.
func (s *ExchangeState) ReplaceOpenOrders(symbol string, orders []domain.OpenOrder) {
	s.openOrders[symbol] = orders
}

// AppendOpenOrder appends one order, creating the list if absent.
func (s *ExchangeState) AppendOpenOrder(o domain.OpenOrder) {
	s.openOrders[o.Symbol] = append(s.openOrders[o.Symbol], o)
}

// RemoveOpenOrder removes the order with the given id from a symbol's
// list. Returns false if no such order was mirrored.
func (s *ExchangeState) RemoveOpenOrder(symbol string, orderID uint64) bool {
	orders := s.openOrders[symbol]
	for i := range orders {
		if orders[i].OrderID == orderID {
			s.openOrders[symbol] = append(orders[:i], orders[i+1:]...)
			return true
		}
	}
	return false
}

// Book returns the level-2 book for a symbol.
func (s *ExchangeState) Book(symbol string) (*domain.Orderbook, bool) {
	b, ok := s.books[symbol]
	return b, ok
}

// SetBook installs (or replaces) the book for a symbol.
func (s *ExchangeState) SetBook(b *domain.Orderbook) {
	s.books[b.Symbol] = b
}

// SetAuthenticated records the outcome of the auth handshake.
func (s *ExchangeState) SetAuthenticated(ok bool) {
	s.authenticated = ok
}

// IsAuthenticated reports whether the venue accepted our credentials.
func (s *ExchangeState) IsAuthenticated() bool {
	return s.authenticated
}

// SetIdentity stores the whoami account snapshot verbatim.
func (s *ExchangeState) SetIdentity(raw json.RawMessage) {
	s.identity = raw
}

// Identity returns the stored whoami snapshot, nil if never received.
func (s *ExchangeState) Identity() json.RawMessage {
	return s.identity
}
