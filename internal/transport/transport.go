package transport

import (
	"context"

	"maker_go/internal/domain"
)

// Transport is the venue capability surface the engine composes with.
// All calls are fire-and-forget: success or failure of an operation
// surfaces later as an inbound message (`open`, `order_rejected`,
// `done`), never as a synchronous result. A fake implementation stands
// in for the venue in tests.
type Transport interface {
	Connect(ctx context.Context) error
	Disconnect()
	IsConnected() bool

	SubscribeIndexPrice(symbols []string) error
	SubscribePositionStates() error
	SubscribeOrderbook(symbol string) error

	FetchTradableSymbols() error
	FetchPositions() error
	FetchOpenOrders() error
	WhoAmI() error

	PlaceOrder(intent domain.OrderIntent) error
	CancelOrder(intent domain.CancelIntent) error
}

// MessageHandler receives every raw inbound frame from the venue.
type MessageHandler func(raw []byte)
