package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"maker_go/internal/app"
	"maker_go/internal/dispatch"
	"maker_go/internal/engine"
	"maker_go/internal/infra"
	"maker_go/internal/transport"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := bootstrap.Config

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Venue Connection (single websocket, dispatcher consumes every
	// frame). The client replays subscriptions and snapshot fetches on
	// every successful dial, so a mid-session reconnect cannot leave the
	// mirror frozen. The responses arrive asynchronously; the quoter
	// skips passes until the mirror is ready.
	dispatcher := dispatch.NewDispatcher(bootstrap.Store, infra.GlobalMetrics)
	client := transport.NewClient(cfg, dispatcher.HandleMessage)
	if err := client.Connect(ctx); err != nil {
		slog.Error("❌ Venue connection failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer client.Disconnect()

	// 5. Quoting Loop (The Hotpath)
	quoter := engine.NewQuoter(cfg, bootstrap.Store, bootstrap.RefPrice, client)
	go quoter.Run(ctx)
	slog.InfoContext(ctx, "✅ Quoter started", slog.String("symbol", cfg.Symbol))

	slog.InfoContext(ctx, "✨ Market maker fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	slog.InfoContext(ctx, "👋 Shutting down gracefully...")
}
