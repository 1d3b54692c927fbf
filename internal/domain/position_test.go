package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPosition_BtcNotional(t *testing.T) {
	t.Run("inverse contract divides by entry price", func(t *testing.T) {
		contract := &TradableSymbol{Symbol: "BTCUSD.PERP", IsInversePriced: true}
		pos := &Position{
			Symbol:     "BTCUSD.PERP",
			Side:       SideBid,
			Quantity:   100,
			EntryPrice: decimal.NewFromInt(20000),
		}

		got, ok := pos.BtcNotional(contract)
		if !ok {
			t.Fatal("expected a notional")
		}
		want := decimal.RequireFromString("0.005")
		if !got.Equal(want) {
			t.Errorf("BtcNotional = %s, want %s", got, want)
		}
	})

	t.Run("quanto contract is satoshi denominated", func(t *testing.T) {
		contract := &TradableSymbol{
			Symbol:       "ETHUSD.PERP",
			ContractSize: decimal.NewFromInt(10),
		}
		pos := &Position{
			Symbol:     "ETHUSD.PERP",
			Side:       SideAsk,
			Quantity:   50,
			EntryPrice: decimal.NewFromInt(2000),
		}

		// 50 * 2000 * 10 = 1_000_000 sats = 0.01 BTC
		got, ok := pos.BtcNotional(contract)
		if !ok {
			t.Fatal("expected a notional")
		}
		want := decimal.RequireFromString("0.01")
		if !got.Equal(want) {
			t.Errorf("BtcNotional = %s, want %s", got, want)
		}
	})

	t.Run("zero entry price reports no notional", func(t *testing.T) {
		contract := &TradableSymbol{Symbol: "BTCUSD.PERP", IsInversePriced: true}
		pos := &Position{Symbol: "BTCUSD.PERP", Quantity: 100}

		if _, ok := pos.BtcNotional(contract); ok {
			t.Error("zero entry price must not produce a notional")
		}
	})
}
