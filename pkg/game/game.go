package game

import (
	"context"
	"encoding/json"
	"time"

	"github.com/joshgrift/piratesquest/pkg/events"
	"github.com/joshgrift/piratesquest/pkg/game/constants"
	"github.com/joshgrift/piratesquest/pkg/game/types"
	"github.com/joshgrift/piratesquest/pkg/log"
	"github.com/joshgrift/piratesquest/pkg/messages"
	"github.com/joshgrift/piratesquest/pkg/network"
	"github.com/joshgrift/piratesquest/pkg/queue"
	"github.com/joshgrift/piratesquest/pkg/state"
	"github.com/joshgrift/piratesquest/pkg/workers"
)

// GameManager runs the serial game loop. Every gameplay mutation happens
// inside one tick at a time, so none of the state it owns needs locking.
type GameManager struct {
	clientManager        *network.ClientManager
	clientMessageQueue   queue.Queue
	connectionEventQueue queue.Queue
	sessions             *SessionRegistry
	players              map[uint32]*types.PlayerState
	snapshotCache        state.SnapshotCache
	saveSnapshotChan     chan<- workers.SaveSnapshotRequest
	loadSnapshotChan     chan<- workers.LoadSnapshotRequest
	presenceChan         chan<- workers.PresenceRequest
	bus                  *events.Bus
	tasks                *TaskQueue
	gameLoopInterval     time.Duration
	serverVersion        string
	serverSecret         []byte
	creativeUsers        map[string]bool

	lastSnapshotRefresh time.Time
	lastDockedHeal      time.Time
}

// NewGameManagerOptions contains options for creating a new GameManager.
type NewGameManagerOptions struct {
	ClientManager        *network.ClientManager
	ClientMessageQueue   queue.Queue
	ConnectionEventQueue queue.Queue
	SnapshotCache        state.SnapshotCache
	SaveSnapshotChan     chan<- workers.SaveSnapshotRequest
	LoadSnapshotChan     chan<- workers.LoadSnapshotRequest
	PresenceChan         chan<- workers.PresenceRequest
	EventBus             *events.Bus
	GameLoopInterval     time.Duration
	ServerVersion        string
	ServerSecret         []byte
	CreativeUsers        []string
}

func NewGameManager(opts NewGameManagerOptions) *GameManager {
	creativeUsers := make(map[string]bool, len(opts.CreativeUsers))
	for _, username := range opts.CreativeUsers {
		creativeUsers[username] = true
	}
	return &GameManager{
		clientManager:        opts.ClientManager,
		clientMessageQueue:   opts.ClientMessageQueue,
		connectionEventQueue: opts.ConnectionEventQueue,
		sessions:             NewSessionRegistry(),
		players:              make(map[uint32]*types.PlayerState),
		snapshotCache:        opts.SnapshotCache,
		saveSnapshotChan:     opts.SaveSnapshotChan,
		loadSnapshotChan:     opts.LoadSnapshotChan,
		presenceChan:         opts.PresenceChan,
		bus:                  opts.EventBus,
		tasks:                NewTaskQueue(),
		gameLoopInterval:     opts.GameLoopInterval,
		serverVersion:        opts.ServerVersion,
		serverSecret:         opts.ServerSecret,
		creativeUsers:        creativeUsers,
	}
}

// Start starts the game loop.
func (gm *GameManager) Start(ctx context.Context) error {
	gm.bus.Subscribe(func(event events.Event) {
		gm.forwardEvent(ctx, event)
	})

	ticker := time.NewTicker(gm.gameLoopInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-ticker.C:
			gm.gameTick(ctx, t)
		}
	}
}

// gameTick runs one iteration of the game loop.
func (gm *GameManager) gameTick(ctx context.Context, t time.Time) {
	gm.tasks.RunDue(t)
	gm.processConnectionEvents(ctx)
	gm.processClientMessages(ctx)
	gm.healDockedPlayers(t)
	gm.refreshSnapshotCache(t)
}

// processConnectionEvents processes all pending connection events in the
// queue and updates the game state.
func (gm *GameManager) processConnectionEvents(ctx context.Context) {
	pendingEvents, err := gm.connectionEventQueue.ReadAllMessages()
	if err != nil {
		log.Error("Failed to read connection events: %v", err)
		return
	}
	for _, item := range pendingEvents {
		switch event := item.(type) {
		case *types.ConnectPlayerEvent:
			gm.spawnPlayer(ctx, event)
		case *types.DisconnectPlayerEvent:
			gm.despawnPlayer(event.ClientID)
		case *types.DamagePlayerEvent:
			if player, ok := gm.players[event.ClientID]; ok {
				player.TakeDamage(event.Amount)
			}
		default:
			log.Error("Unhandled connection event type: %T", event)
		}
	}
}

// spawnPlayer creates the player entity for a registered connection once
// its snapshot load has finished.
func (gm *GameManager) spawnPlayer(ctx context.Context, event *types.ConnectPlayerEvent) {
	session := gm.sessions.GetByClient(event.ClientID)
	if session == nil || !gm.clientManager.Exists(event.ClientID) {
		// the connection went away or was evicted while the snapshot loaded
		log.Debug("Skipping spawn for gone client %d", event.ClientID)
		return
	}

	player := types.NewPlayerState(event.ClientID, event.AccountID, event.Username, gm.bus)
	player.Creative = gm.creativeUsers[event.Username]
	if event.Snapshot != nil {
		player.ApplySnapshot(event.Snapshot)
	}
	gm.players[event.ClientID] = player
	gm.snapshotCache.Set(player.AccountID, player.Snapshot())

	log.Info("Player %s spawned for client %d", player.Nickname, player.ClientID)

	gm.sendToClient(ctx, event.ClientID, messages.MessageTypeServerJoinAccepted, &messages.ServerJoinAccepted{
		ClientID: event.ClientID,
	})
}

// despawnPlayer removes a disconnected player after requesting a final save.
func (gm *GameManager) despawnPlayer(clientID uint32) {
	if session := gm.sessions.Remove(clientID); session != nil {
		gm.presenceChan <- workers.PresenceRequest{
			Username: session.Username,
			Online:   false,
		}
		gm.bus.Publish(&types.PresenceChangedEvent{
			Username: session.Username,
			Online:   false,
		})
	}

	player, ok := gm.players[clientID]
	if !ok {
		return
	}

	gm.saveSnapshotChan <- workers.SaveSnapshotRequest{
		AccountID: player.AccountID,
		Snapshot:  player.Snapshot(),
	}
	gm.snapshotCache.Delete(player.AccountID)
	delete(gm.players, clientID)

	log.Info("Player %s despawned for client %d", player.Nickname, clientID)
}

// healDockedPlayers regenerates health for players sitting in a safe zone.
func (gm *GameManager) healDockedPlayers(t time.Time) {
	if t.Sub(gm.lastDockedHeal) < constants.DockedHealInterval {
		return
	}
	gm.lastDockedHeal = t

	for _, player := range gm.players {
		if player.IsDead() || !player.InSafeZone {
			continue
		}
		if player.Health < player.MaxHealth() {
			player.Heal(constants.DockedHealAmount, 0)
		}
	}
}

// refreshSnapshotCache updates the last-known-good snapshot of every
// connected player for the save worker to persist on its own schedule.
func (gm *GameManager) refreshSnapshotCache(t time.Time) {
	if t.Sub(gm.lastSnapshotRefresh) < constants.SnapshotCacheInterval {
		return
	}
	gm.lastSnapshotRefresh = t

	for _, player := range gm.players {
		gm.snapshotCache.Set(player.AccountID, player.Snapshot())
	}
}

// forwardEvent bridges core events to the clients that should see them.
// The core publishes to the bus without knowing about transports.
func (gm *GameManager) forwardEvent(ctx context.Context, event events.Event) {
	switch e := event.(type) {
	case *types.InventoryChangedEvent:
		gm.sendToClient(ctx, e.ClientID, messages.MessageTypeServerInventoryUpdate, &messages.ServerInventoryUpdate{
			Item:     e.Kind.String(),
			NewCount: e.NewCount,
			Delta:    e.Delta,
		})
	case *types.HealthChangedEvent:
		gm.sendToClient(ctx, e.ClientID, messages.MessageTypeServerHealthUpdate, &messages.ServerHealthUpdate{
			Health:    e.Health,
			MaxHealth: e.MaxHealth,
		})
	case *types.PlayerDiedEvent:
		payload, err := json.Marshal(&messages.ServerPlayerDied{
			ClientID: e.Drop.ClientID,
			Nickname: e.Drop.Nickname,
			Position: e.Drop.Position,
		})
		if err != nil {
			log.Error("Failed to marshal player died message: %v", err)
			return
		}
		gm.clientManager.SendMessageToAll(ctx, &messages.Message{
			ClientID: 0, // ClientID 0 means the message is from the server
			Type:     messages.MessageTypeServerPlayerDied,
			Payload:  payload,
		})
	}
}

// sendToClient marshals a payload and writes it to one connection.
func (gm *GameManager) sendToClient(ctx context.Context, clientID uint32, messageType string, payload interface{}) {
	b, err := json.Marshal(payload)
	if err != nil {
		log.Error("Failed to marshal %s message: %v", messageType, err)
		return
	}
	msg := &messages.Message{
		ClientID: 0, // ClientID 0 means the message is from the server
		Type:     messageType,
		Payload:  b,
	}
	if err := gm.clientManager.SendMessageToClient(ctx, clientID, msg); err != nil {
		log.Debug("Failed to send %s message to client %d: %v", messageType, clientID, err)
	}
}
