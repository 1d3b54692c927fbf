package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	messagesProcessed atomic.Uint64
	unknownMessages   atomic.Uint64
	ordersPlaced      atomic.Uint64
	ordersCanceled    atomic.Uint64
	ordersAmended     atomic.Uint64
	quotePasses       atomic.Uint64
	skippedPasses     atomic.Uint64
	errorsTotal       atomic.Uint64

	// Gauges
	connected atomic.Int32 // 1 = connected, 0 = not
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordMessage records one processed inbound message.
func (m *Metrics) RecordMessage() {
	m.messagesProcessed.Add(1)
}

// RecordUnknownMessage records an inbound message of an unknown kind.
func (m *Metrics) RecordUnknownMessage() {
	m.unknownMessages.Add(1)
}

// RecordError records an error occurrence.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// RecordOrderPlaced records one outbound order creation.
func (m *Metrics) RecordOrderPlaced() {
	m.ordersPlaced.Add(1)
}

// RecordOrderCanceled records one outbound cancellation.
func (m *Metrics) RecordOrderCanceled() {
	m.ordersCanceled.Add(1)
}

// RecordOrderAmended records one amend (cancel + re-place pair).
func (m *Metrics) RecordOrderAmended() {
	m.ordersAmended.Add(1)
}

// RecordQuotePass records one completed reconciliation pass.
func (m *Metrics) RecordQuotePass() {
	m.quotePasses.Add(1)
}

// RecordSkippedPass records a pass skipped because the reference price
// or contract metadata was not ready.
func (m *Metrics) RecordSkippedPass() {
	m.skippedPasses.Add(1)
}

// SetConnected sets the transport connection gauge.
func (m *Metrics) SetConnected(up bool) {
	if up {
		m.connected.Store(1)
	} else {
		m.connected.Store(0)
	}
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	MessagesProcessed uint64
	UnknownMessages   uint64
	OrdersPlaced      uint64
	OrdersCanceled    uint64
	OrdersAmended     uint64
	QuotePasses       uint64
	SkippedPasses     uint64
	ErrorsTotal       uint64
	Connected         bool
	Timestamp         time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		MessagesProcessed: m.messagesProcessed.Load(),
		UnknownMessages:   m.unknownMessages.Load(),
		OrdersPlaced:      m.ordersPlaced.Load(),
		OrdersCanceled:    m.ordersCanceled.Load(),
		OrdersAmended:     m.ordersAmended.Load(),
		QuotePasses:       m.quotePasses.Load(),
		SkippedPasses:     m.skippedPasses.Load(),
		ErrorsTotal:       m.errorsTotal.Load(),
		Connected:         m.connected.Load() == 1,
		Timestamp:         time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.messagesProcessed.Store(0)
	m.unknownMessages.Store(0)
	m.ordersPlaced.Store(0)
	m.ordersCanceled.Store(0)
	m.ordersAmended.Store(0)
	m.quotePasses.Store(0)
	m.skippedPasses.Store(0)
	m.errorsTotal.Store(0)
	m.connected.Store(0)
}
