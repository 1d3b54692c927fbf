package transport

import (
	"context"
	"sync"

	"maker_go/internal/domain"
)

// MockTransport is a recording fake for engine tests. Every call is
// captured; nothing touches the network.
type MockTransport struct {
	mu sync.Mutex

	connected bool

	SubscribedIndexSymbols []string
	SubscribedPositions    bool
	SubscribedBooks        []string
	Fetches                []string

	PlacedOrders    []domain.OrderIntent
	CanceledOrders  []domain.CancelIntent
	FailNextPlace   error
	FailNextCancel  error
}

// NewMockTransport creates an empty recording transport.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

func (m *MockTransport) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = true
	return nil
}

func (m *MockTransport) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
}

func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *MockTransport) SubscribeIndexPrice(symbols []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SubscribedIndexSymbols = append(m.SubscribedIndexSymbols, symbols...)
	return nil
}

func (m *MockTransport) SubscribePositionStates() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SubscribedPositions = true
	return nil
}

func (m *MockTransport) SubscribeOrderbook(symbol string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SubscribedBooks = append(m.SubscribedBooks, symbol)
	return nil
}

func (m *MockTransport) FetchTradableSymbols() error {
	return m.recordFetch("tradable_symbols")
}

func (m *MockTransport) FetchPositions() error {
	return m.recordFetch("positions")
}

func (m *MockTransport) FetchOpenOrders() error {
	return m.recordFetch("open_orders")
}

func (m *MockTransport) WhoAmI() error {
	return m.recordFetch("whoami")
}

func (m *MockTransport) recordFetch(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fetches = append(m.Fetches, name)
	return nil
}

func (m *MockTransport) PlaceOrder(intent domain.OrderIntent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailNextPlace; err != nil {
		m.FailNextPlace = nil
		return err
	}
	m.PlacedOrders = append(m.PlacedOrders, intent)
	return nil
}

func (m *MockTransport) CancelOrder(intent domain.CancelIntent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailNextCancel; err != nil {
		m.FailNextCancel = nil
		return err
	}
	m.CanceledOrders = append(m.CanceledOrders, intent)
	return nil
}

// Reset clears all recordings.
func (m *MockTransport) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SubscribedIndexSymbols = nil
	m.SubscribedPositions = false
	m.SubscribedBooks = nil
	m.Fetches = nil
	m.PlacedOrders = nil
	m.CanceledOrders = nil
}

var _ Transport = (*MockTransport)(nil)
