// ====================================
// File: cmd/executesale/main.go
// ====================================
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-auctioneer/internal/auctionhouse"
	"github.com/rovshanmuradov/solana-auctioneer/internal/auctionhouse/pda"
	"github.com/rovshanmuradov/solana-auctioneer/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-auctioneer/internal/blockchain/solbc/transaction"
	"github.com/rovshanmuradov/solana-auctioneer/internal/config"
	"github.com/rovshanmuradov/solana-auctioneer/internal/logger"
	"github.com/rovshanmuradov/solana-auctioneer/internal/runner"
	"github.com/rovshanmuradov/solana-auctioneer/internal/task"
	"github.com/rovshanmuradov/solana-auctioneer/internal/wallet"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	ordersPath := flag.String("orders", "configs/orders.yaml", "path to the orders file")
	walletsPath := flag.String("wallets", "configs/wallets.yaml", "path to the wallets file")
	dryRun := flag.Bool("dry-run", false, "prepare every sale without sending a transaction")
	flag.Parse()

	if err := run(*configPath, *ordersPath, *walletsPath, *dryRun); err != nil {
		fmt.Fprintf(os.Stderr, "executesale: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, ordersPath, walletsPath string, dryRun bool) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	shutdown := runner.NewShutdownHandler(log.Logger, 10*time.Second)
	shutdown.AddFunc("logger", log.Sync)
	defer func() {
		if err := shutdown.Shutdown(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting execute sale",
		zap.Strings("rpc", cfg.RPCList),
		zap.String("commitment", cfg.Commitment),
		zap.Bool("dry_run", dryRun))

	programs, err := cfg.ProgramSet()
	if err != nil {
		return err
	}
	priority, err := cfg.PriorityConfig()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.LogError("Metrics server stopped", err)
			}
		}()
		shutdown.AddFunc("metrics", func() error { return srv.Shutdown(context.Background()) })
		log.Info("Serving metrics", zap.String("addr", cfg.MetricsAddr))
	}

	client, err := solbc.NewClient(cfg.RPCList, rpc.CommitmentType(cfg.Commitment), log.Logger)
	if err != nil {
		return err
	}

	deriver := pda.NewDeriver(programs)
	sender := transaction.NewManager(client, log.Logger, cfg.TransactionConfig(), reg)
	service := auctionhouse.NewService(
		deriver,
		auctionhouse.NewLoader(client, deriver, log.Logger),
		auctionhouse.NewSubmitter(client, sender, priority, log.Logger),
		log.Logger,
	)

	wallets, err := wallet.LoadWallets(walletsPath)
	if err != nil {
		return fmt.Errorf("failed to load wallets: %w", err)
	}
	orders, err := task.NewManager(log.Logger).LoadOrders(ordersPath)
	if err != nil {
		return fmt.Errorf("failed to load orders: %w", err)
	}

	var journal runner.Journal
	if cfg.ResultsFile != "" {
		j, err := logger.NewSaleJournal(cfg.ResultsFile, time.Second, log.Logger)
		if err != nil {
			return fmt.Errorf("failed to open results file: %w", err)
		}
		shutdown.Add("journal", j)
		journal = j
	}

	mints := solbc.NewTokenMetadataCache(client, log.Logger)
	executor := runner.NewExecutor(service, mints, wallets, journal, runner.NewMetrics(reg), runner.Options{
		Retries:         cfg.Retries,
		CheckAuctioneer: cfg.CheckAuctioneer,
		DryRun:          dryRun,
	}, log)

	_, err = runner.NewRunner(executor, cfg.Workers, log.Logger).Run(ctx, orders)
	return err
}
