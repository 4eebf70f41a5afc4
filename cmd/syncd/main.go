package main

import (
	"context"
	"fmt"

	"github.com/alertaid/syncengine/internal/adapter"
	"github.com/alertaid/syncengine/internal/config"
	handler "github.com/alertaid/syncengine/internal/handler/http"
	"github.com/alertaid/syncengine/internal/logger"
	"github.com/alertaid/syncengine/internal/server"
	"github.com/alertaid/syncengine/internal/service"
	"github.com/alertaid/syncengine/internal/store"
	"github.com/alertaid/syncengine/internal/utils"
	"github.com/alertaid/syncengine/internal/workers"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("syncd")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	var kv store.KV
	if cfg.Storage.BoltPath != "" {
		kv, err = store.NewBoltKV(cfg.Storage.BoltPath)
		if err != nil {
			log.Fatal().Err(err).Msg("error opening bolt database")
		}
	} else {
		log.Warn().Msg("no bolt path configured, state will not survive restarts")
		kv = store.NewMemoryKV()
	}
	defer kv.Close()

	clock := utils.SystemClock{}

	var peer adapter.RemotePeer
	if cfg.Remote.HTTPAddress != "" {
		peer, err = adapter.NewHTTPRemotePeer(cfg.Remote, log)
		if err != nil {
			log.Fatal().Err(err).Msg("error creating remote peer")
		}
	} else {
		log.Warn().Msg("no remote address configured, running against the in-memory peer")
		peer = adapter.NewMemoryPeer(clock)
	}

	engine, err := service.NewEngine(cfg.Engine, kv, peer, clock, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating sync engine")
	}
	defer engine.Close()

	if cfg.Workers.SyncInterval > 0 {
		job := workers.NewSyncJob(engine, log)
		job.Start(context.Background(), cfg.Workers.SyncInterval)
		defer job.Stop()
	}

	handlers := handler.NewHandler(engine, log)

	srv, err := server.NewServer(handlers.Init(), cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
