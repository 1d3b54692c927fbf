package domain

import "testing"

func TestOrderbook_BestPrices(t *testing.T) {
	ob := NewOrderbook("BTCUSD.PERP")

	ob.Upsert(SideBid, 989_500, 10)
	ob.Upsert(SideBid, 990_000, 5)
	ob.Upsert(SideAsk, 990_500, 7)
	ob.Upsert(SideAsk, 991_000, 3)

	if best, ok := ob.BestBid(); !ok || best != 990_000 {
		t.Errorf("BestBid = %d, %v; want 990000, true", best, ok)
	}
	if best, ok := ob.BestAsk(); !ok || best != 990_500 {
		t.Errorf("BestAsk = %d, %v; want 990500, true", best, ok)
	}
}

func TestOrderbook_EmptySides(t *testing.T) {
	ob := NewOrderbook("BTCUSD.PERP")

	if _, ok := ob.BestBid(); ok {
		t.Error("BestBid on empty book should report absent")
	}
	if _, ok := ob.BestAsk(); ok {
		t.Error("BestAsk on empty book should report absent")
	}
}

func TestOrderbook_ZeroSizeDeletes(t *testing.T) {
	ob := NewOrderbook("BTCUSD.PERP")

	ob.Upsert(SideBid, 990_000, 5)
	ob.Upsert(SideBid, 990_000, 0)

	if _, ok := ob.Size(SideBid, 990_000); ok {
		t.Error("zero-size upsert should remove the level, not store zero")
	}
	if ob.Depth(SideBid) != 0 {
		t.Errorf("Depth = %d, want 0", ob.Depth(SideBid))
	}
}

func TestOrderbook_DeleteAbsentIsNoop(t *testing.T) {
	ob := NewOrderbook("BTCUSD.PERP")

	if ob.Delete(SideAsk, 12345) {
		t.Error("deleting an untracked level should return false")
	}
	if ob.Depth(SideAsk) != 0 {
		t.Error("deleting an untracked level must not create an entry")
	}
}

func TestOrderbook_UpsertOverwrites(t *testing.T) {
	ob := NewOrderbook("BTCUSD.PERP")

	ob.Upsert(SideAsk, 991_000, 3)
	ob.Upsert(SideAsk, 991_000, 9)

	size, ok := ob.Size(SideAsk, 991_000)
	if !ok || size != 9 {
		t.Errorf("Size = %d, %v; want 9, true", size, ok)
	}
	if ob.Depth(SideAsk) != 1 {
		t.Errorf("Depth = %d, want 1", ob.Depth(SideAsk))
	}
}
