package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joshgrift/piratesquest/pkg/backend"
	"github.com/joshgrift/piratesquest/pkg/backend/store"
	"github.com/joshgrift/piratesquest/pkg/config"
	"github.com/joshgrift/piratesquest/pkg/log"
)

func main() {
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)

	ctx := context.Background()

	cfg, err := config.LoadBackendConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	var playerStore store.Store
	if cfg.DatabaseURL != "" {
		playerStore, err = store.NewPostgresStore(ctx, cfg.DatabaseURL)
	} else {
		playerStore, err = store.NewSQLiteStore(ctx, cfg.SQLitePath)
	}
	if err != nil {
		panic(fmt.Sprintf("Failed to open store: %v", err))
	}
	defer playerStore.Close(ctx)

	server := backend.NewServer(backend.NewServerOptions{
		Port:   cfg.Port,
		Store:  playerStore,
		Secret: []byte(cfg.ServerSecret),
	})
	server.Start()
}
