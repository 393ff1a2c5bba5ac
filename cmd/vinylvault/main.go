package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "modernc.org/sqlite"

	"github.com/waxworks/vinylvault/internal/account"
	"github.com/waxworks/vinylvault/internal/cli"
	"github.com/waxworks/vinylvault/internal/config"
	"github.com/waxworks/vinylvault/internal/events"
	"github.com/waxworks/vinylvault/internal/keeper"
	"github.com/waxworks/vinylvault/internal/kvstore"
	"github.com/waxworks/vinylvault/internal/kvstore/sqlite"
	"github.com/waxworks/vinylvault/internal/ledger"
	"github.com/waxworks/vinylvault/internal/logging"
	"github.com/waxworks/vinylvault/internal/mailer"
	"github.com/waxworks/vinylvault/internal/validation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	log := logging.NewDefault(cfg.LogLevel)

	// Prefer the durable backend; fall back to in-memory so the app stays
	// usable (though nothing survives the process) when the database cannot
	// be opened.
	var store kvstore.Store
	dbStore, err := sqlite.Open(ctx, cfg.DatabasePath)
	if err != nil {
		log.Warn(ctx, "falling back to in-memory storage", "path", cfg.DatabasePath, "error", err)
		store = kvstore.NewMemory()
	} else {
		defer dbStore.Close()
		store = dbStore
	}

	hub := events.NewHub()
	k := keeper.New(store, hub, log, keeper.WithSessionTTL(cfg.SessionTTL))
	if !k.Initialize(ctx) {
		log.Warn(ctx, "storage unavailable, continuing without persistence")
		store = kvstore.NewMemory()
		k = keeper.New(store, hub, log, keeper.WithSessionTTL(cfg.SessionTTL))
		k.Initialize(ctx)
	}

	accounts := account.New(
		k,
		validation.New(),
		validation.NewRateLimiter(store),
		mailer.NewLogSender(log),
		store,
		log,
	)

	app := cli.NewApp(cfg, accounts, k, ledger.New(store), log)
	app.Run(ctx)
}
