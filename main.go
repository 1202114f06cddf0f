package main

import (
	"context"
	"time"

	"github.com/litetable/litetable-mapper/internal/app"
	"github.com/litetable/litetable-mapper/internal/cdc"
	"github.com/litetable/litetable-mapper/internal/config"
	"github.com/litetable/litetable-mapper/internal/memstore"
	servergrpc "github.com/litetable/litetable-mapper/internal/server/grpc"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const stopTimeout = 10 * time.Second

func main() {
	application, err := initialize()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize")
	}

	if err = application.Run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("application stopped with an error")
	}
}

func initialize() (*app.App, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cdcStream, err := cdc.New(&cdc.Config{
		Address: cfg.CDCAddress,
		Port:    cfg.CDCPort,
	})
	if err != nil {
		return nil, err
	}

	storeCfg := &memstore.Config{
		ShardCount:  cfg.ShardCount,
		MaxVersions: cfg.MaxVersions,
		Families:    cfg.Families,
		CDC:         cdcStream,
	}
	if cfg.Backup {
		storeCfg.RootDir = cfg.Dir
	}
	store, err := memstore.New(storeCfg)
	if err != nil {
		return nil, err
	}

	srv, err := servergrpc.NewServer(&servergrpc.Config{
		Address: cfg.ServerAddress,
		Port:    cfg.ServerPort,
		Storage: store,
	})
	if err != nil {
		return nil, err
	}

	// stopped in reverse: the server drains before the store writes its backup
	return app.CreateApp(&app.Config{
		ServiceName: "LiteTable Mapper",
		StopTimeout: stopTimeout,
	}, store, cdcStream, srv)
}
