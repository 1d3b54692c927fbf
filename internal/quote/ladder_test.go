package quote

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"

	"maker_go/internal/domain"
	"maker_go/internal/infra"
	"maker_go/internal/state"
)

// stubSource feeds predetermined values to rand.Rand so random sizing
// is deterministic under test. Values must be below the draw range so
// Int63n passes them through unchanged.
type stubSource struct {
	vals []int64
	i    int
}

func (s *stubSource) Int63() int64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func (s *stubSource) Seed(int64) {}

const testSymbol = "BTCUSD.PERP"

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testParams() *infra.TradingParams {
	return &infra.TradingParams{
		OffsetPct:      dec("0.01"),
		MinSpread:      dec("0.001"),
		StackPct:       dec("0.002"),
		NumLevels:      2,
		StartOrderSize: 10,
		OrderStepSize:  5,
		MaxLongPosBtc:  dec("1"),
		MaxShortPosBtc: dec("1"),
	}
}

func testContract() domain.TradableSymbol {
	return domain.TradableSymbol{
		Symbol:          testSymbol,
		TickSize:        dec("0.5"),
		PriceDp:         1,
		ContractSize:    decimal.NewFromInt(1),
		IsInversePriced: true,
	}
}

func newLadderStore(t *testing.T, mutate func(*state.ExchangeState)) *state.Store {
	t.Helper()
	st := state.NewStore("kollider", testSymbol, ".BTCUSD")
	if err := st.Apply(func(s *state.ExchangeState) error {
		s.SetTradableSymbols(map[string]domain.TradableSymbol{testSymbol: testContract()})
		if mutate != nil {
			mutate(s)
		}
		return nil
	}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	return st
}

func TestComputeAnchors(t *testing.T) {
	t.Run("wide offset needs no correction", func(t *testing.T) {
		bid, ask := ComputeAnchors(dec("100"), dec("0.01"), dec("0.001"))
		if !bid.Equal(dec("99")) || !ask.Equal(dec("101")) {
			t.Errorf("anchors = %s, %s; want 99, 101", bid, ask)
		}
	})

	t.Run("spread floor widens symmetrically", func(t *testing.T) {
		bid, ask := ComputeAnchors(dec("100"), decimal.Zero, dec("0.002"))
		// bid = 100*(1-0.001) = 99.9, ask = 100*(1+0.001) = 100.1
		if !bid.Equal(dec("99.9")) || !ask.Equal(dec("100.1")) {
			t.Errorf("anchors = %s, %s; want 99.9, 100.1", bid, ask)
		}
	})

	t.Run("bid anchor stays below ask anchor", func(t *testing.T) {
		refs := []string{"0.5", "1", "100", "20123.5", "65000"}
		offsets := []string{"0", "0.0001", "0.01", "0.05"}
		spreads := []string{"0.0001", "0.001", "0.01"}
		for _, r := range refs {
			for _, o := range offsets {
				for _, s := range spreads {
					bid, ask := ComputeAnchors(dec(r), dec(o), dec(s))
					if !bid.LessThan(ask) {
						t.Errorf("ref=%s offset=%s spread=%s: bid %s >= ask %s", r, o, s, bid, ask)
					}
				}
			}
		}
	})
}

func TestPriceForLevel_IndexScenario(t *testing.T) {
	// Index 100, offset 1%, stack 0.2%, tick 0.5.
	bid, ask := ComputeAnchors(dec("100"), dec("0.01"), dec("0.001"))
	tick := dec("0.5")
	stack := dec("0.002")

	cases := []struct {
		level int
		side  domain.Side
		want  string
	}{
		{1, domain.SideBid, "99"},
		{2, domain.SideBid, "99"}, // 98.802 rounds to 99.0, half away from zero
		{1, domain.SideAsk, "101"},
		{2, domain.SideAsk, "101"}, // 101.202 rounds to 101.0
	}
	for _, c := range cases {
		got := PriceForLevel(c.level, c.side, bid, ask, stack, tick)
		if !got.Equal(dec(c.want)) {
			t.Errorf("PriceForLevel(%d, %s) = %s, want %s", c.level, c.side, got, c.want)
		}
	}
}

func TestPriceForLevel_NeverCrosses(t *testing.T) {
	tick := dec("0.5")
	stack := dec("0.002")
	refs := []string{"1", "100", "20123.5"}
	for _, r := range refs {
		// Zero offset forces the spread-floor correction path.
		bidAnchor, askAnchor := ComputeAnchors(dec(r), decimal.Zero, dec("0.001"))
		for level := 1; level <= 5; level++ {
			b := PriceForLevel(level, domain.SideBid, bidAnchor, askAnchor, stack, tick)
			a := PriceForLevel(level, domain.SideAsk, bidAnchor, askAnchor, stack, tick)
			if b.GreaterThan(a) {
				t.Errorf("ref=%s level=%d: bid %s above ask %s", r, level, b, a)
			}
		}
	}
}

func TestQuantityForLevel(t *testing.T) {
	t.Run("arithmetic ladder", func(t *testing.T) {
		g := NewGenerator(testSymbol, testParams())
		for level, want := range map[int]int64{1: 10, 2: 15, 3: 20} {
			if got := g.QuantityForLevel(level); got != want {
				t.Errorf("QuantityForLevel(%d) = %d, want %d", level, got, want)
			}
		}
	})

	t.Run("random draw stays in bounds", func(t *testing.T) {
		p := testParams()
		p.IsRandomOrderSize = true
		p.MinOrderSize = 3
		p.MaxOrderSize = 7
		g := NewGenerator(testSymbol, p)
		for i := 0; i < 200; i++ {
			q := g.QuantityForLevel(1)
			if q < 3 || q > 7 {
				t.Fatalf("QuantityForLevel = %d, want within [3,7]", q)
			}
		}
	})

	t.Run("random draw follows the injected source", func(t *testing.T) {
		p := testParams()
		p.IsRandomOrderSize = true
		p.MinOrderSize = 3
		p.MaxOrderSize = 7
		g := NewGeneratorWithRand(testSymbol, p, rand.New(&stubSource{vals: []int64{0, 4, 2}}))
		// Draws are minSize + source value: 3+0, 3+4, 3+2.
		for _, want := range []int64{3, 7, 5} {
			if got := g.QuantityForLevel(1); got != want {
				t.Errorf("QuantityForLevel = %d, want %d", got, want)
			}
		}
	})
}

func TestRoomRemaining(t *testing.T) {
	contract := testContract()
	params := testParams()
	params.CheckPositionLimits = true

	pos := &domain.Position{
		Symbol:     testSymbol,
		Side:       domain.SideBid,
		Quantity:   100,
		EntryPrice: decimal.NewFromInt(200),
	}
	// inverse: 100/200 = 0.5 BTC long

	t.Run("same side consumes room", func(t *testing.T) {
		got := RoomRemaining(domain.SideBid, pos, &contract, params)
		if !got.Equal(dec("0.5")) {
			t.Errorf("long room = %s, want 0.5", got)
		}
	})

	t.Run("opposite side frees room", func(t *testing.T) {
		got := RoomRemaining(domain.SideAsk, pos, &contract, params)
		if !got.Equal(dec("1.5")) {
			t.Errorf("short room = %s, want 1.5", got)
		}
	})

	t.Run("limits disabled yields configured max", func(t *testing.T) {
		p := testParams()
		got := RoomRemaining(domain.SideBid, pos, &contract, p)
		if !got.Equal(dec("1")) {
			t.Errorf("room = %s, want 1", got)
		}
	})

	t.Run("no position yields configured max", func(t *testing.T) {
		got := RoomRemaining(domain.SideAsk, nil, &contract, params)
		if !got.Equal(dec("1")) {
			t.Errorf("room = %s, want 1", got)
		}
	})

	t.Run("zero entry price falls back to configured max", func(t *testing.T) {
		flat := &domain.Position{Symbol: testSymbol, Side: domain.SideBid, Quantity: 100}
		got := RoomRemaining(domain.SideBid, flat, &contract, params)
		if !got.Equal(dec("1")) {
			t.Errorf("room = %s, want 1", got)
		}
	})
}

func TestGenerator_Build(t *testing.T) {
	t.Run("two level ladder from the index scenario", func(t *testing.T) {
		st := newLadderStore(t, nil)
		g := NewGenerator(testSymbol, testParams())

		var ladder Ladder
		var ok bool
		st.Read(func(s *state.ExchangeState) {
			ladder, ok = g.Build(s, dec("100"))
		})
		if !ok {
			t.Fatal("Build should succeed with contract metadata present")
		}
		if len(ladder.Bids) != 2 || len(ladder.Asks) != 2 {
			t.Fatalf("ladder sizes = %d bids, %d asks; want 2, 2", len(ladder.Bids), len(ladder.Asks))
		}

		// Outermost first: level 2 leads, level 1 (innermost) is last.
		if ladder.Bids[0].Quantity != 15 || ladder.Bids[1].Quantity != 10 {
			t.Errorf("bid quantities = %d, %d; want 15, 10", ladder.Bids[0].Quantity, ladder.Bids[1].Quantity)
		}
		if !ladder.Bids[1].Price.Equal(dec("99")) {
			t.Errorf("innermost bid price = %s, want 99", ladder.Bids[1].Price)
		}
		if !ladder.Asks[1].Price.Equal(dec("101")) {
			t.Errorf("innermost ask price = %s, want 101", ladder.Asks[1].Price)
		}

		for _, b := range ladder.Bids {
			for _, a := range ladder.Asks {
				if !b.Price.LessThan(a.Price) {
					t.Errorf("crossed ladder: bid %s >= ask %s", b.Price, a.Price)
				}
			}
			if b.ExtOrderID == "" {
				t.Error("orders must carry a client-assigned external id")
			}
		}
	})

	t.Run("missing contract metadata skips the build", func(t *testing.T) {
		st := state.NewStore("kollider", testSymbol, ".BTCUSD")
		g := NewGenerator(testSymbol, testParams())
		st.Read(func(s *state.ExchangeState) {
			if _, ok := g.Build(s, dec("100")); ok {
				t.Error("Build must report failure without contract metadata")
			}
		})
	})

	t.Run("exhausted side emits no orders", func(t *testing.T) {
		params := testParams()
		params.CheckPositionLimits = true
		params.MaxLongPosBtc = dec("0.4")
		st := newLadderStore(t, func(s *state.ExchangeState) {
			s.UpsertPosition(domain.Position{
				Symbol:     testSymbol,
				Side:       domain.SideBid,
				Quantity:   100,
				EntryPrice: decimal.NewFromInt(200), // 0.5 BTC long, over the 0.4 limit
			})
		})
		g := NewGenerator(testSymbol, params)

		st.Read(func(s *state.ExchangeState) {
			ladder, ok := g.Build(s, dec("100"))
			if !ok {
				t.Fatal("Build should succeed")
			}
			if len(ladder.Bids) != 0 {
				t.Errorf("bids = %d, want 0 with long room exhausted", len(ladder.Bids))
			}
			if len(ladder.Asks) != 2 {
				t.Errorf("asks = %d, want 2", len(ladder.Asks))
			}
		})
	})

	t.Run("zero quantities are dropped", func(t *testing.T) {
		params := testParams()
		params.StartOrderSize = 0
		params.OrderStepSize = 0
		st := newLadderStore(t, nil)
		g := NewGenerator(testSymbol, params)

		st.Read(func(s *state.ExchangeState) {
			ladder, ok := g.Build(s, dec("100"))
			if !ok {
				t.Fatal("Build should succeed")
			}
			if len(ladder.Bids) != 0 || len(ladder.Asks) != 0 {
				t.Errorf("ladder = %d bids, %d asks; want empty", len(ladder.Bids), len(ladder.Asks))
			}
		})
	})
}
