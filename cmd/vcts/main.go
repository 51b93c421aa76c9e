package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"vcts/config"
	"vcts/internal/ipc"
	"vcts/internal/market"
	"vcts/internal/polling"
	"vcts/internal/scalping"
	"vcts/internal/sell"
	"vcts/internal/shutdown"
	"vcts/logger"
	"vcts/pkg/bitflyer"
	"vcts/pkg/coincheck"
	"vcts/pkg/storage/csvfile"
	"vcts/pkg/storage/postgres"

	"go.uber.org/zap"
)

func main() {
	// viper config
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// zap loggers, one file per worker
	appLog := mustLogger(cfg.Log, "vcts")
	pollLog := mustLogger(cfg.Log, "polling")
	scalpLog := mustLogger(cfg.Log, "scalping")
	sellLog := mustLogger(cfg.Log, "sell")
	defer appLog.Sync()
	defer pollLog.Sync()
	defer scalpLog.Sync()
	defer sellLog.Sync()

	// exchange clients
	var (
		fetcher   market.TickerFetcher
		prober    market.HealthProber
		submitter market.OrderSubmitter
		querier   market.PositionQuerier
	)
	switch cfg.Exchange.Name {
	case config.ExchangeBitflyer:
		rest := bitflyer.NewRESTClient(cfg.Exchange.BaseURL, cfg.Exchange.APIKey, cfg.Exchange.APISecret, cfg.Exchange.Timeout)
		fetcher, prober, submitter, querier = rest, rest, rest, rest

		if cfg.Exchange.UseRealtime {
			rt := bitflyer.NewRealtimeClient(cfg.Exchange.RealtimeURL, cfg.Exchange.Product, pollLog)
			if err := rt.Connect(); err != nil {
				appLog.Fatal("realtime connect failed", zap.Error(err))
			}
			go rt.Listen()
			fetcher = rt
		}
	case config.ExchangeCoincheck:
		// coincheck has no market-health endpoint; prober stays nil.
		rest := coincheck.NewRESTClient(cfg.Exchange.BaseURL, cfg.Exchange.APIKey, cfg.Exchange.APISecret, cfg.Exchange.Timeout)
		fetcher, submitter, querier = rest, rest, rest
	}

	// ticker sinks
	var sinks []polling.Sink
	var warm []market.Ticker
	if cfg.CSV.Dir != "" {
		w, err := csvfile.New(cfg.CSV.Dir, cfg.Exchange.Product)
		if err != nil {
			appLog.Fatal("csv sink init failed", zap.Error(err))
		}
		warm, err = csvfile.ReadTail(w.Path(), cfg.Polling.MaxHistory)
		if err != nil {
			appLog.Warn("csv warm-up read failed", zap.Error(err))
		}
		sinks = append(sinks, w)
	}
	if cfg.Postgres.Enabled {
		client, err := postgres.InitializeAndMigrateTickerRecord(cfg.Postgres, cfg.Environment, true)
		if err != nil {
			appLog.Fatal("postgres sink init failed", zap.Error(err))
		}
		defer client.Close()
		sinks = append(sinks, client)
	}

	// shared worker plumbing
	ch := ipc.NewChannel()
	stop := shutdown.NewFlag()
	snapshots := ipc.NewSnapshotClient(ch, cfg.IPC.ReceiveTimeout)

	poller := polling.New(polling.Config{
		Product:    cfg.Exchange.Product,
		Interval:   cfg.Polling.Interval,
		Count:      cfg.Polling.Count,
		MaxHistory: cfg.Polling.MaxHistory,
	}, fetcher, ch, stop, pollLog, sinks...)
	if len(warm) > 0 {
		poller.Warmup(warm)
	}

	scalper := scalping.New(scalping.Config{
		Product:       cfg.Exchange.Product,
		Interval:      cfg.Scalping.Interval,
		Size:          cfg.Scalping.Size,
		ExpireMinutes: cfg.Scalping.ExpireMinutes,
	}, submitter, prober, snapshots, stop, scalpLog)

	seller := sell.New(sell.Config{
		Product:      cfg.Exchange.Product,
		Interval:     cfg.Sell.Interval,
		Size:         cfg.Sell.Size,
		ProfitBorder: cfg.Sell.ProfitBorder,
		CutBorder:    cfg.Sell.CutBorder,
	}, submitter, querier, snapshots, stop, sellLog)

	ctx := context.Background()
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		poller.Run(ctx)
		// Without the aggregator the workers have nothing to act on.
		stop.Set()
	}()
	go func() {
		defer wg.Done()
		scalper.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		seller.Run(ctx)
	}()
	appLog.Info("workers started",
		zap.String("exchange", cfg.Exchange.Name),
		zap.String("product", cfg.Exchange.Product),
	)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		s := <-sig
		appLog.Info("signal received, stopping workers", zap.String("signal", s.String()))
		stop.Set()
	}()

	wg.Wait()
	appLog.Info("all workers stopped")
}

func mustLogger(opts config.LogConfig, component string) *zap.Logger {
	log, err := logger.New(opts, component)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	return log
}
