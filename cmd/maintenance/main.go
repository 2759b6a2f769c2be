package main

import (
	"context"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"tutorhub/internal/config"
	"tutorhub/internal/database"
	"tutorhub/internal/modules/subscription"
	"tutorhub/internal/modules/wallet"
	"tutorhub/internal/pkg/logger"
	"tutorhub/internal/repository"
)

// maintenance expires lapsed subscriptions and reports wallets whose
// balance no longer matches their ledger. It exits 2 when drift is found.
func main() {
	timeout := flag.Duration("timeout", 5*time.Minute, "overall run timeout")
	skipReconcile := flag.Bool("skip-reconcile", false, "only expire subscriptions")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.AppEnv)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	repos := repository.New(db)

	expired, err := subscription.NewService(repos, log).ExpireOld(ctx)
	if err != nil {
		log.Fatal("expire subscriptions failed", zap.Error(err))
	}
	log.Info("subscriptions expired", zap.Int64("count", expired))

	if *skipReconcile {
		return
	}

	drifted, err := wallet.NewService(repos, log).ReconcileAll(ctx)
	if err != nil {
		log.Fatal("wallet reconcile failed", zap.Error(err))
	}
	log.Info("maintenance completed",
		zap.Int64("subscriptions_expired", expired),
		zap.Int("wallets_drifted", len(drifted)),
	)
	if len(drifted) > 0 {
		_ = log.Sync()
		os.Exit(2)
	}
}
