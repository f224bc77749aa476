package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gorilla/mux"
	"github.com/jessevdk/go-flags"

	"github.com/Ssnowzx/Wallet-0201N/internal/api"
	"github.com/Ssnowzx/Wallet-0201N/internal/storage"
	"github.com/Ssnowzx/Wallet-0201N/internal/tangle"
	"github.com/Ssnowzx/Wallet-0201N/internal/wallet"
	"github.com/Ssnowzx/Wallet-0201N/pkg/logger"
)

type config struct {
	Listen            string        `long:"listen" default:":8080" description:"Address to listen for HTTP requests on"`
	DataDir           string        `long:"datadir" default:"/tmp/tangle-wallet" description:"Directory for the Badger database"`
	InMemory          bool          `long:"inmem" description:"Keep the database in memory (no persistence)"`
	TipWindow         int           `long:"tipwindow" default:"200" description:"How many recent transactions tip selection samples"`
	PoolTarget        int           `long:"pooltarget" default:"100" description:"Pending pool size replenishment maintains"`
	ReplenishInterval time.Duration `long:"replenish" default:"5m" description:"Interval between replenish cycles"`
}

func main() {
	var cfg config
	if _, err := flags.Parse(&cfg); err != nil {
		os.Exit(1)
	}

	log := logger.NewLogger()

	opts := badger.DefaultOptions(cfg.DataDir).WithInMemory(cfg.InMemory)
	if cfg.InMemory {
		opts = opts.WithDir("").WithValueDir("")
	}
	db, err := badger.Open(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open BadgerDB")
	}
	defer db.Close()

	store := storage.NewStore(db, log)
	selector := tangle.NewPrioritySelector(wallet.IsSyntheticAddress)
	svc := wallet.NewService(store, selector, cfg.TipWindow, log)
	replenisher := wallet.NewReplenisher(store, selector, cfg.PoolTarget, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go replenisher.Run(ctx, cfg.ReplenishInterval)

	router := mux.NewRouter()
	api.NewAPI(store, svc, replenisher, log).Register(router)

	log.Info().Str("listen", cfg.Listen).Msg("Starting server")
	if err := http.ListenAndServe(cfg.Listen, router); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}
}
