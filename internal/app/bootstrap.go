package app

import (
	"log/slog"

	"maker_go/internal/infra"
	"maker_go/internal/refprice"
	"maker_go/internal/state"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config   *infra.Config
	Store    *state.Store
	RefPrice refprice.Calculator
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads configuration and builds the core components. Any
// misconfiguration fails here, before a single connection is made.
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping market maker...")

	// 1. Load Config
	cfg, err := infra.LoadConfig("configs/config.yaml")
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Exchange state mirror
	b.Store = state.NewStore(cfg.Venue.Name, cfg.Symbol, cfg.IndexSymbol)
	slog.Info("✅ State mirror ready",
		slog.String("symbol", cfg.Symbol),
		slog.String("index_symbol", cfg.IndexSymbol))

	// 4. Reference price strategy
	calc, err := refprice.New(cfg.Trading.ReferencePriceType, cfg.Symbol, cfg.IndexSymbol)
	if err != nil {
		return err
	}
	b.RefPrice = calc
	slog.Info("✅ Reference price strategy ready",
		slog.String("type", cfg.Trading.ReferencePriceType))

	return nil
}
