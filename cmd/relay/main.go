package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omni/bridge-relay/config"
	"github.com/omni/bridge-relay/db"
	"github.com/omni/bridge-relay/ethclient"
	"github.com/omni/bridge-relay/logging"
	"github.com/omni/bridge-relay/presenter"
	"github.com/omni/bridge-relay/relay"
	"github.com/omni/bridge-relay/repository"
)

func main() {
	logger := logging.New()

	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yml"
	}
	cfg, err := config.ReadConfigFromFile(cfgPath)
	if err != nil {
		logger.WithError(err).Fatal("can't read config")
	}
	logger.SetLevel(cfg.LogLevel)

	dbConn, err := db.ConnectToDBAndMigrate(cfg.DBConfig)
	if err != nil {
		logger.WithError(err).Fatal("can't connect to database and apply migrations")
	}
	defer dbConn.Close()

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		err2 := http.ListenAndServe(":2112", nil)
		if err2 != nil {
			logger.WithError(err2).Fatal("can't start listener for prometheus metrics")
		}
	}()

	repo := repository.NewRepo(dbConn)

	client, err := ethclient.NewClient(cfg.Chain.RPC.Host, cfg.Chain.RPC.Timeout, cfg.Chain.ChainID)
	if err != nil {
		logger.WithError(err).Fatal("can't dial source chain rpc client")
	}

	relayer := relay.NewClient(logger.WithField("service", "relay_client"), cfg.Relay)

	ctx, cancel := context.WithCancel(context.Background())
	orchestrator, err := relay.NewOrchestrator(ctx, logger.WithField("service", "orchestrator"), repo, cfg, client, relayer)
	if err != nil {
		logger.WithError(err).Fatal("can't initialize relay orchestrator")
	}

	if cfg.Presenter != nil {
		pr := presenter.NewPresenter(logger.WithField("service", "presenter"), repo, cfg, orchestrator)
		go func() {
			err2 := pr.Serve(cfg.Presenter.Host)
			if err2 != nil {
				logger.WithError(err2).Fatal("can't serve presenter")
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		orchestrator.Start(ctx)
		close(done)
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Info("caught interrupt signal, draining current relay batch")
	cancel()
	<-done
	logger.Info("shutdown complete")
}
