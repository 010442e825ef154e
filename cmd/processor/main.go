package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/nimasrn/trader-ledger/internal/app"
	"github.com/nimasrn/trader-ledger/internal/config"
	"github.com/nimasrn/trader-ledger/internal/processor"
	"github.com/nimasrn/trader-ledger/pkg/logger"
	"github.com/nimasrn/trader-ledger/pkg/prom"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	err := config.Load(app.EnvPath(os.Args))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}
	logger.Info("starting processor", "version", version, "commit", commit, "date", date)

	a, err := app.New(config.Get())
	if err != nil {
		logger.Error("failed to wire ledger", "error", err)
		return
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	err = prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace)
	if err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}
	go prom.ListenAndServer(config.Get().MetricsAddr, config.Get().MetricsURI)

	sweeper := processor.NewSweeper(a.Service, processor.Config{
		Interval: config.Get().ReconcileInterval,
		Workers:  config.Get().ReconcileWorkers,
		Repair:   config.Get().ReconcileRepair,
	})
	sweeper.Start()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	sweeper.Stop()
}
