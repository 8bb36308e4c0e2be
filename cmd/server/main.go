package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joshgrift/piratesquest/pkg/config"
	"github.com/joshgrift/piratesquest/pkg/events"
	"github.com/joshgrift/piratesquest/pkg/game"
	"github.com/joshgrift/piratesquest/pkg/game/constants"
	"github.com/joshgrift/piratesquest/pkg/log"
	"github.com/joshgrift/piratesquest/pkg/network"
	"github.com/joshgrift/piratesquest/pkg/persistence"
	"github.com/joshgrift/piratesquest/pkg/queue"
	"github.com/joshgrift/piratesquest/pkg/state"
	"github.com/joshgrift/piratesquest/pkg/version"
	"github.com/joshgrift/piratesquest/pkg/workers"
)

func main() {
	logLevel := flag.String("log-level", "info", "Log level")
	dedicated := flag.Bool("dedicated", false, "Run as a dedicated server with heartbeats")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting server version %s", version.Get())
	ctx := context.Background()

	cfg, err := config.LoadServerConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	clientManager := network.NewClientManager()
	clientMessageQueue := queue.NewInMemoryQueue(10000)

	var wsTLS *network.TLSConfig
	if cfg.WSCertFile != "" && cfg.WSKeyFile != "" {
		wsTLS = &network.TLSConfig{
			CertFile: cfg.WSCertFile,
			KeyFile:  cfg.WSKeyFile,
		}
	}
	networkManager := network.NewNetworkManager(network.NewNetworkManagerOptions{
		ClientManager: clientManager,
		MessageQueue:  clientMessageQueue,
		TCPPort:       cfg.TCPPort,
		WSPort:        cfg.WSPort,
		WSServerTLS:   wsTLS,
	})
	networkManager.Start(ctx)

	persistenceClient := persistence.NewClient(persistence.NewClientOptions{
		BaseURL:  cfg.BackendURL,
		ServerID: cfg.ServerID,
		Secret:   cfg.ServerSecret,
	})

	connectionEventQueue := queue.NewInMemoryQueue(1000)

	clientEventWorker := workers.NewClientEventWorker(workers.NewClientEventWorkerOptions{
		ClientManager:        clientManager,
		ConnectionEventQueue: connectionEventQueue,
	})
	go clientEventWorker.Start()

	snapshotCache := state.NewInMemorySnapshotCache()
	saveSnapshotChan := make(chan workers.SaveSnapshotRequest, 100)
	saveWorker := workers.NewSaveWorker(workers.NewSaveWorkerOptions{
		Client:           persistenceClient,
		SaveSnapshotChan: saveSnapshotChan,
		SnapshotCache:    snapshotCache,
		Interval:         constants.PersistInterval,
	})
	go saveWorker.Start(ctx)

	loadSnapshotChan := make(chan workers.LoadSnapshotRequest, 100)
	loaderWorker := workers.NewLoaderWorker(workers.NewLoaderWorkerOptions{
		Client:               persistenceClient,
		LoadSnapshotChan:     loadSnapshotChan,
		ConnectionEventQueue: connectionEventQueue,
	})
	go loaderWorker.Start(ctx)

	presenceChan := make(chan workers.PresenceRequest, 100)
	presenceWorker := workers.NewPresenceWorker(workers.NewPresenceWorkerOptions{
		Client:       persistenceClient,
		PresenceChan: presenceChan,
	})
	go presenceWorker.Start(ctx)

	if *dedicated {
		heartbeatWorker := workers.NewHeartbeatWorker(workers.NewHeartbeatWorkerOptions{
			Client:   persistenceClient,
			Interval: constants.HeartbeatInterval,
		})
		go heartbeatWorker.Start(ctx)
	}

	gameManager := game.NewGameManager(game.NewGameManagerOptions{
		ClientManager:        clientManager,
		ClientMessageQueue:   clientMessageQueue,
		ConnectionEventQueue: connectionEventQueue,
		SnapshotCache:        snapshotCache,
		SaveSnapshotChan:     saveSnapshotChan,
		LoadSnapshotChan:     loadSnapshotChan,
		PresenceChan:         presenceChan,
		EventBus:             events.NewBus(),
		GameLoopInterval:     constants.GameLoopInterval,
		ServerVersion:        version.Get(),
		ServerSecret:         []byte(cfg.ServerSecret),
		CreativeUsers:        cfg.CreativeUsers,
	})

	log.Info("Starting game manager")
	if err := gameManager.Start(ctx); err != nil {
		log.Error("Game manager stopped: %v", err)
	}
}
