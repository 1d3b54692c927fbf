package domain

import "github.com/google/btree"

// bookLevel is one resting price level. Keys are exchange-native integer
// price ticks, not decimal prices.
type bookLevel struct {
	priceTicks int64
	size       int64
}

func (l *bookLevel) Less(other btree.Item) bool {
	return l.priceTicks < other.(*bookLevel).priceTicks
}

const bookDegree = 16

// Orderbook is the per-symbol level-2 mirror: ordered maps from integer
// price tick to resting size, one per side. Zero-size entries are
// deletions and are never stored.
type Orderbook struct {
	Symbol string
	bids   *btree.BTree
	asks   *btree.BTree
}

// NewOrderbook creates an empty book for a symbol.
func NewOrderbook(symbol string) *Orderbook {
	return &Orderbook{
		Symbol: symbol,
		bids:   btree.New(bookDegree),
		asks:   btree.New(bookDegree),
	}
}

func (b *Orderbook) tree(side Side) *btree.BTree {
	if side == SideBid {
		return b.bids
	}
	return b.asks
}

// Upsert sets the size at a price level. A non-positive size deletes the
// level instead, so callers can feed deltas through unconditionally.
func (b *Orderbook) Upsert(side Side, priceTicks, size int64) {
	if size <= 0 {
		b.Delete(side, priceTicks)
		return
	}
	b.tree(side).ReplaceOrInsert(&bookLevel{priceTicks: priceTicks, size: size})
}

// Delete removes a price level. Deleting an absent key is a no-op and
// returns false; snapshot/delta races make this an expected condition.
func (b *Orderbook) Delete(side Side, priceTicks int64) bool {
	return b.tree(side).Delete(&bookLevel{priceTicks: priceTicks}) != nil
}

// Size returns the resting size at a price level.
func (b *Orderbook) Size(side Side, priceTicks int64) (int64, bool) {
	item := b.tree(side).Get(&bookLevel{priceTicks: priceTicks})
	if item == nil {
		return 0, false
	}
	return item.(*bookLevel).size, true
}

// BestBid returns the highest bid price tick.
func (b *Orderbook) BestBid() (int64, bool) {
	item := b.bids.Max()
	if item == nil {
		return 0, false
	}
	return item.(*bookLevel).priceTicks, true
}

// BestAsk returns the lowest ask price tick.
func (b *Orderbook) BestAsk() (int64, bool) {
	item := b.asks.Min()
	if item == nil {
		return 0, false
	}
	return item.(*bookLevel).priceTicks, true
}

// Depth returns the number of levels on a side.
func (b *Orderbook) Depth(side Side) int {
	return b.tree(side).Len()
}
