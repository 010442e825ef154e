package main

import (
	"os"

	"github.com/nimasrn/trader-ledger/internal/app"
	"github.com/nimasrn/trader-ledger/internal/config"
	"github.com/nimasrn/trader-ledger/internal/handlers"
	xhttp "github.com/nimasrn/trader-ledger/pkg/http"
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
	logger.Info("starting api", "version", version, "commit", commit, "date", date)

	a, err := app.New(config.Get())
	if err != nil {
		logger.Error("failed to wire ledger", "error", err)
		return
	}

	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(config.Get().HttpRequestTimeout))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	g := s.Router.Group("/api/v1")
	handlers.RegisterHealthRoutes(g, handlers.NewHealthHandler(a))
	handlers.RegisterLedgerRoutes(g, handlers.NewLedgerHandler(a.Service))

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	if err = prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace); err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
	}
	go prom.ListenAndServer(config.Get().MetricsAddr, config.Get().MetricsURI)

	s.CloseOnSignal()
	if err := s.ListenAndServe(config.Get().HttpListenAddr); err != nil {
		logger.Error("error in running http-server", "error", err)
	}
}
