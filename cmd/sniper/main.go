// Package main runs the token sniper: signal intake, validation, buy,
// monitoring, and liquidation of one position at a time, with daily capital
// compounding.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solsniper/internal/capital"
	"solsniper/internal/config"
	"solsniper/internal/fees"
	"solsniper/internal/intake"
	"solsniper/internal/jupiter"
	"solsniper/internal/notify"
	"solsniper/internal/observability"
	"solsniper/internal/oracle"
	"solsniper/internal/position"
	"solsniper/internal/records"
	recjsonl "solsniper/internal/records/jsonl"
	recmem "solsniper/internal/records/memory"
	"solsniper/internal/records/migrations"
	recpg "solsniper/internal/records/postgres"
	"solsniper/internal/solana"
	"solsniper/internal/stream"
	"solsniper/internal/wallet"
)

// stores groups the persistence backends selected at startup.
type stores struct {
	trades    records.TradeRecordStore
	processed records.ProcessedStore
	session   records.SessionStore
	cleanup   func()
}

func main() {
	logger := log.New(os.Stdout, "[sniper] ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Configuration error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := createStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer st.cleanup()

	rpc := solana.NewHTTPClient(cfg.RPCURL)

	var (
		w        *wallet.Wallet
		balances position.BalanceSource
		executor jupiter.Executor
		pubkey   string
		payerPub string
	)
	if cfg.DryRun {
		logger.Println("DRY_RUN enabled: no transactions will be submitted")
		executor = jupiter.NewDryRunExecutor(logger)
		pubkey = "DryRunWa11et1111111111111111111111111111111"
	} else {
		key, err := wallet.ParsePrivateKey(cfg.PrivateKey)
		if err != nil {
			logger.Fatalf("PRIVATE_KEY: %v", err)
		}
		var payer *wallet.ParsedKey
		if cfg.PrivatePayerKey != "" {
			payer, err = wallet.ParsePrivateKey(cfg.PrivatePayerKey)
			if err != nil {
				logger.Fatalf("PRIVATE_PAYER_KEY: %v", err)
			}
		}
		w = wallet.New(key, payer, rpc)
		balances = w
		pubkey = w.PublicKey()
		if w.HasAlternatePayer() {
			payerPub = w.PayerPublicKey()
		}
	}

	builder := jupiter.NewOrderBuilder(jupiter.BuilderOptions{
		WalletPubkey:    pubkey,
		PayerPubkey:     payerPub,
		SlippageBps:     cfg.SlippageBps,
		ReferralFeeBps:  cfg.ReferralFeeBps,
		ReferralAccount: cfg.ReferralAccount,
	})
	if !cfg.DryRun {
		executor = jupiter.NewHTTPExecutor(jupiter.ExecutorOptions{
			OrderURL:   cfg.OrderURL,
			ExecuteURL: cfg.ExecuteURL,
			Signer:     w,
			Builder:    builder,
			Logger:     logger,
		})
	}

	capMgr := capital.NewManager(capital.Options{
		DailyCapitalUsd:  cfg.DailyCapitalUsd,
		MaxCyclesPerDay:  cfg.MaxCyclesPerDay,
		InvestFraction:   cfg.InvestFraction,
		TargetMultiplier: cfg.TargetMultiplier,
		Logger:           logger,
	})
	restoreBalance(ctx, capMgr, st.session, logger)

	manager := position.NewManager(position.Options{
		Oracle:             oracle.NewClient(oracle.Options{Logger: logger}),
		Filter:             oracle.Filter{MaxMcapLiqRatio: cfg.MaxMcapLiqRatio},
		Capital:            capMgr,
		Builder:            builder,
		Executor:           executor,
		Balances:           balances,
		SolPrice:           oracle.NewSolPriceClient("", nil, logger),
		Congestion:         fees.NewLatencyDetector(rpc, 0),
		Records:            st.trades,
		Notifier:           notify.NewLogNotifier(logger),
		BuyFeePercent:      cfg.BuyFeePercent,
		SellFeePercent:     cfg.SellFeePercent,
		CongestionTipSol:   cfg.CongestionTipSol,
		TakeProfitMultiple: cfg.TakeProfitMultiple,
		StopLossMultiple:   cfg.StopLossMultiple,
		PollInterval:       cfg.TradeSleep,
		Logger:             logger,
	})

	queue := intake.NewQueue(intake.Options{
		Processed: st.processed,
		Logger:    logger,
		OnDrop:    observability.RecordIntakeDropped,
	})

	// Shutdown on SIGINT/SIGTERM; a second signal forces exit.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()
		sig = <-sigCh
		logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
		os.Exit(1)
	}()

	go serveMetrics(cfg.MetricsAddr, rpc, logger)

	if cfg.SignalWSURL != "" {
		listener := stream.NewListener(cfg.SignalWSURL, queue, nil, logger)
		go listener.Run(ctx)
	} else {
		logger.Println("SIGNAL_WS_URL not set; intake accepts no candidates")
	}

	runIntakeLoop(ctx, queue, manager, capMgr, st, logger)
	logger.Println("Shutdown complete")
}

// runIntakeLoop consumes candidates in arrival order, one position at a time.
func runIntakeLoop(
	ctx context.Context,
	queue *intake.Queue,
	manager *position.Manager,
	capMgr *capital.Manager,
	st *stores,
	logger *log.Logger,
) {
	for {
		address, err := queue.Next(ctx)
		if err != nil {
			return
		}
		observability.DefaultMetrics.IntakeQueueDepth.Set(float64(queue.Len()))

		pos, err := manager.Handle(ctx, address)
		switch {
		case err == nil:
		case errors.Is(err, position.ErrCapitalExhausted):
			logger.Printf("Skipping %s: %v", address, err)
			if capMgr.TargetReached() {
				logger.Println("Target multiplier reached; waiting for the next UTC day")
			}
		case errors.Is(err, position.ErrPositionActive):
			// Unreachable from this serial loop but harmless.
			logger.Printf("Skipping %s: %v", address, err)
		default:
			logger.Printf("Candidate %s: %v", address, err)
		}

		// A candidate that produced a position, even a failed one, is never
		// traded again.
		if pos != nil {
			queue.MarkProcessed(ctx, address)
		}

		state := capMgr.State()
		observability.UpdateCapital(state.CompoundedBalanceUsd, state.CycleCount)
		if err := st.session.SaveBalance(ctx, state.CompoundedBalanceUsd, state.CycleCount); err != nil {
			logger.Printf("Session save failed: %v", err)
		}
	}
}

// restoreBalance resumes the same-day compounded balance after a restart.
func restoreBalance(ctx context.Context, capMgr *capital.Manager, session records.SessionStore, logger *log.Logger) {
	balance, cycles, err := session.LoadBalance(ctx)
	if err != nil {
		if !errors.Is(err, records.ErrNotFound) {
			logger.Printf("Session restore failed: %v", err)
		}
		return
	}
	capMgr.Restore(balance, cycles, time.Now().UTC())
	logger.Printf("Restored session: balance $%.2f, %d cycles", balance, cycles)
}

func createStores(ctx context.Context, cfg *config.Config, logger *log.Logger) (*stores, error) {
	if cfg.PostgresDSN != "" {
		pool, err := recpg.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Println("Using PostgreSQL persistence")
		return &stores{
			trades:    recpg.NewTradeRecordStore(pool),
			processed: recpg.NewProcessedStore(pool),
			session:   recpg.NewSessionStore(pool),
			cleanup:   pool.Close,
		}, nil
	}

	trades, err := recjsonl.NewStore(cfg.RecordsFile)
	if err != nil {
		return nil, err
	}
	logger.Printf("Using JSONL persistence at %s", cfg.RecordsFile)
	return &stores{
		trades:    trades,
		processed: recmem.NewProcessedStore(),
		session:   recmem.NewSessionStore(),
		cleanup:   func() { trades.Close() },
	}, nil
}

func serveMetrics(addr string, rpc solana.RPCClient, logger *log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if _, err := rpc.GetSlot(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, "rpc unreachable: %v", err)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	logger.Printf("Metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Printf("Metrics server error: %v", err)
	}
}
