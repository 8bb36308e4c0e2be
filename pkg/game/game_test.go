package game

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"testing"
	"time"

	"github.com/joshgrift/piratesquest/pkg/auth"
	"github.com/joshgrift/piratesquest/pkg/events"
	"github.com/joshgrift/piratesquest/pkg/game/types"
	"github.com/joshgrift/piratesquest/pkg/messages"
	"github.com/joshgrift/piratesquest/pkg/network"
	"github.com/joshgrift/piratesquest/pkg/queue"
	"github.com/joshgrift/piratesquest/pkg/state"
	"github.com/joshgrift/piratesquest/pkg/workers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testServerVersion = "1.2.0"

var testSecret = []byte("test-secret")

type testHarness struct {
	gm                   *GameManager
	clientManager        *network.ClientManager
	clientMessageQueue   queue.Queue
	connectionEventQueue queue.Queue
	snapshotCache        state.SnapshotCache
	saveSnapshotChan     chan workers.SaveSnapshotRequest
	loadSnapshotChan     chan workers.LoadSnapshotRequest
	presenceChan         chan workers.PresenceRequest
	bus                  *events.Bus
}

func newTestHarness(creativeUsers ...string) *testHarness {
	h := &testHarness{
		clientManager:        network.NewClientManager(),
		clientMessageQueue:   queue.NewInMemoryQueue(100),
		connectionEventQueue: queue.NewInMemoryQueue(100),
		snapshotCache:        state.NewInMemorySnapshotCache(),
		saveSnapshotChan:     make(chan workers.SaveSnapshotRequest, 16),
		loadSnapshotChan:     make(chan workers.LoadSnapshotRequest, 16),
		presenceChan:         make(chan workers.PresenceRequest, 16),
		bus:                  events.NewBus(),
	}
	h.gm = NewGameManager(NewGameManagerOptions{
		ClientManager:        h.clientManager,
		ClientMessageQueue:   h.clientMessageQueue,
		ConnectionEventQueue: h.connectionEventQueue,
		SnapshotCache:        h.snapshotCache,
		SaveSnapshotChan:     h.saveSnapshotChan,
		LoadSnapshotChan:     h.loadSnapshotChan,
		PresenceChan:         h.presenceChan,
		EventBus:             h.bus,
		GameLoopInterval:     10 * time.Millisecond,
		ServerVersion:        testServerVersion,
		ServerSecret:         testSecret,
		CreativeUsers:        creativeUsers,
	})
	return h
}

// connectClient registers a piped TCP connection and drains its write side.
func (h *testHarness) connectClient(t *testing.T) uint32 {
	t.Helper()
	server, client := net.Pipe()
	go io.Copy(io.Discard, client)
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})

	clientID, err := h.clientManager.ConnectTCPClient(server)
	require.NoError(t, err)
	return clientID
}

func (h *testHarness) enqueueMessage(t *testing.T, clientID uint32, messageType string, payload interface{}) {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, h.clientMessageQueue.Enqueue(&messages.Message{
		ClientID: clientID,
		Type:     messageType,
		Payload:  b,
	}))
}

func (h *testHarness) register(t *testing.T, clientID uint32, username string, clientVersion string) {
	t.Helper()
	token, err := auth.IssueToken(testSecret, "account-"+username, time.Hour)
	require.NoError(t, err)
	h.enqueueMessage(t, clientID, messages.MessageTypeClientRegisterUsername, &messages.ClientRegisterUsername{
		Username:      username,
		ClientVersion: clientVersion,
		Token:         token,
	})
	h.gm.processClientMessages(context.Background())
}

// spawn runs the full join path for a connection: register, then deliver the
// connect event the loader would have produced.
func (h *testHarness) spawn(t *testing.T, clientID uint32, username string) *types.PlayerState {
	t.Helper()
	h.register(t, clientID, username, testServerVersion)

	var loadRequest workers.LoadSnapshotRequest
	select {
	case loadRequest = <-h.loadSnapshotChan:
	default:
		t.Fatalf("no load request for client %d", clientID)
	}

	require.NoError(t, h.connectionEventQueue.Enqueue(&types.ConnectPlayerEvent{
		ClientID:  loadRequest.ClientID,
		AccountID: loadRequest.AccountID,
		Username:  loadRequest.Username,
	}))
	h.gm.processConnectionEvents(context.Background())

	player, ok := h.gm.players[clientID]
	require.True(t, ok, "player %d not spawned", clientID)
	return player
}

func TestGameManager_Handshake(t *testing.T) {
	h := newTestHarness()
	clientID := h.connectClient(t)

	player := h.spawn(t, clientID, "Jack")

	assert.Equal(t, "Jack", player.Nickname)
	assert.Equal(t, "account-Jack", player.AccountID)
	assert.False(t, player.Creative)
	require.NotNil(t, h.gm.sessions.GetByUsername("jack"))

	select {
	case presence := <-h.presenceChan:
		assert.Equal(t, "Jack", presence.Username)
		assert.True(t, presence.Online)
	default:
		t.Fatal("no presence notification")
	}

	require.Len(t, h.snapshotCache.GetAll(), 1)
	assert.Equal(t, "account-Jack", h.snapshotCache.GetAll()[0].AccountID)
}

func TestGameManager_HandshakeRejections(t *testing.T) {
	tests := []struct {
		name     string
		username string
		version  string
		token    func(t *testing.T) string
	}{
		{
			name:     "empty username",
			username: "",
			version:  testServerVersion,
		},
		{
			name:     "whitespace username",
			username: "   ",
			version:  testServerVersion,
		},
		{
			name:     "version mismatch",
			username: "Jack",
			version:  "1.1.0",
		},
		{
			name:     "invalid token",
			username: "Jack",
			version:  testServerVersion,
			token: func(t *testing.T) string {
				return "not-a-token"
			},
		},
		{
			name:     "token signed with wrong secret",
			username: "Jack",
			version:  testServerVersion,
			token: func(t *testing.T) string {
				token, err := auth.IssueToken([]byte("wrong-secret"), "account-Jack", time.Hour)
				require.NoError(t, err)
				return token
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHarness()
			clientID := h.connectClient(t)

			token, err := auth.IssueToken(testSecret, "account-1", time.Hour)
			require.NoError(t, err)
			if tt.token != nil {
				token = tt.token(t)
			}

			h.enqueueMessage(t, clientID, messages.MessageTypeClientRegisterUsername, &messages.ClientRegisterUsername{
				Username:      tt.username,
				ClientVersion: tt.version,
				Token:         token,
			})
			h.gm.processClientMessages(context.Background())

			assert.Nil(t, h.gm.sessions.GetByClient(clientID))
			assert.False(t, h.clientManager.Exists(clientID))
			assert.Empty(t, h.loadSnapshotChan)
		})
	}
}

func TestGameManager_DuplicateUsernameEvictsOlderSession(t *testing.T) {
	h := newTestHarness()
	clientA := h.connectClient(t)
	clientB := h.connectClient(t)

	h.spawn(t, clientA, "Jack")
	drainChannels(h)

	// same username with different casing takes over the session
	h.register(t, clientB, "jack", testServerVersion)

	// the evicted username goes offline before the new session goes online
	select {
	case presence := <-h.presenceChan:
		assert.Equal(t, "Jack", presence.Username)
		assert.False(t, presence.Online)
	default:
		t.Fatal("no offline presence notification for evicted session")
	}
	select {
	case presence := <-h.presenceChan:
		assert.Equal(t, "jack", presence.Username)
		assert.True(t, presence.Online)
	default:
		t.Fatal("no online presence notification for new session")
	}

	session := h.gm.sessions.GetByUsername("Jack")
	require.NotNil(t, session)
	assert.Equal(t, clientB, session.ClientID)
	assert.NotContains(t, h.gm.players, clientA)

	// the evicted player got a final save
	select {
	case save := <-h.saveSnapshotChan:
		assert.Equal(t, "account-Jack", save.AccountID)
	default:
		t.Fatal("no final save for evicted player")
	}
	assert.Empty(t, h.snapshotCache.GetAll())

	// the old connection survives the grace delay, then drops
	assert.True(t, h.clientManager.Exists(clientA))
	h.gm.tasks.RunDue(time.Now().Add(time.Second))
	assert.False(t, h.clientManager.Exists(clientA))
	assert.True(t, h.clientManager.Exists(clientB))
}

func TestGameManager_Disconnect(t *testing.T) {
	h := newTestHarness()
	clientID := h.connectClient(t)
	h.spawn(t, clientID, "Jack")
	drainChannels(h)

	require.NoError(t, h.connectionEventQueue.Enqueue(&types.DisconnectPlayerEvent{ClientID: clientID}))
	h.gm.processConnectionEvents(context.Background())

	assert.NotContains(t, h.gm.players, clientID)
	assert.Nil(t, h.gm.sessions.GetByUsername("Jack"))
	assert.Empty(t, h.snapshotCache.GetAll())

	select {
	case save := <-h.saveSnapshotChan:
		assert.Equal(t, "account-Jack", save.AccountID)
	default:
		t.Fatal("no final save on disconnect")
	}
	select {
	case presence := <-h.presenceChan:
		assert.Equal(t, "Jack", presence.Username)
		assert.False(t, presence.Online)
	default:
		t.Fatal("no offline presence notification")
	}
}

func TestGameManager_SpawnSkippedWhenConnectionGone(t *testing.T) {
	h := newTestHarness()
	clientID := h.connectClient(t)
	h.register(t, clientID, "Jack", testServerVersion)
	h.clientManager.DisconnectClient(clientID)

	require.NoError(t, h.connectionEventQueue.Enqueue(&types.ConnectPlayerEvent{
		ClientID:  clientID,
		AccountID: "account-Jack",
		Username:  "Jack",
	}))
	h.gm.processConnectionEvents(context.Background())

	assert.NotContains(t, h.gm.players, clientID)
	assert.Empty(t, h.snapshotCache.GetAll())
}

func TestGameManager_PlayerUpdate(t *testing.T) {
	h := newTestHarness()
	clientID := h.connectClient(t)
	player := h.spawn(t, clientID, "Jack")

	h.enqueueMessage(t, clientID, messages.MessageTypeClientPlayerUpdate, &messages.ClientPlayerUpdate{
		Timestamp: 100,
		Position:  types.Position{X: 10, Y: 20},
		Docked:    true,
	})
	h.gm.processClientMessages(context.Background())

	assert.Equal(t, types.Position{X: 10, Y: 20}, player.Position)
	assert.True(t, player.InSafeZone)

	// stale updates are dropped
	h.enqueueMessage(t, clientID, messages.MessageTypeClientPlayerUpdate, &messages.ClientPlayerUpdate{
		Timestamp: 50,
		Position:  types.Position{X: 99, Y: 99},
	})
	h.gm.processClientMessages(context.Background())

	assert.Equal(t, types.Position{X: 10, Y: 20}, player.Position)
	assert.True(t, player.InSafeZone)
}

func TestGameManager_DamageEvent(t *testing.T) {
	h := newTestHarness()
	clientID := h.connectClient(t)
	player := h.spawn(t, clientID, "Jack")

	require.NoError(t, h.connectionEventQueue.Enqueue(&types.DamagePlayerEvent{
		ClientID: clientID,
		Amount:   30,
	}))
	h.gm.processConnectionEvents(context.Background())

	assert.Equal(t, 70, player.Health)
}

func TestGameManager_BuyAction(t *testing.T) {
	h := newTestHarness()
	clientID := h.connectClient(t)
	player := h.spawn(t, clientID, "Jack")
	player.Inventory.SetCount(types.ItemCoin, 120)

	h.enqueueMessage(t, clientID, messages.MessageTypeClientAction, &messages.ClientAction{
		Action: messages.ActionBuyItems,
		Item:   "wood",
		Amount: 10,
		Price:  80,
	})
	h.gm.processClientMessages(context.Background())

	assert.Equal(t, 10, player.Inventory.GetCount(types.ItemWood))
	assert.Equal(t, 40, player.Inventory.GetCount(types.ItemCoin))
}

func TestGameManager_RespawnAction(t *testing.T) {
	h := newTestHarness()
	clientID := h.connectClient(t)
	player := h.spawn(t, clientID, "Jack")
	player.TakeDamage(1000)
	require.True(t, player.IsDead())

	h.enqueueMessage(t, clientID, messages.MessageTypeClientAction, &messages.ClientAction{
		Action: messages.ActionRespawn,
	})
	h.gm.processClientMessages(context.Background())

	// respawned but not alive until the delay elapses
	assert.Equal(t, player.MaxHealth(), player.Health)
	assert.True(t, player.IsDead())

	h.gm.tasks.RunDue(time.Now().Add(2 * time.Second))
	assert.False(t, player.IsDead())
}

func TestGameManager_ActionsIgnoredForUnknownClient(t *testing.T) {
	h := newTestHarness()

	h.enqueueMessage(t, 12345, messages.MessageTypeClientAction, &messages.ClientAction{
		Action: messages.ActionBuyItems,
		Item:   "wood",
		Amount: 10,
	})
	h.gm.processClientMessages(context.Background())

	assert.Empty(t, h.gm.players)
}

func TestGameManager_CreativeActionsRequireFlag(t *testing.T) {
	h := newTestHarness("Jack")
	jackID := h.connectClient(t)
	otherID := h.connectClient(t)

	jack := h.spawn(t, jackID, "Jack")
	other := h.spawn(t, otherID, "Anne")

	assert.True(t, jack.Creative)
	assert.False(t, other.Creative)

	assert.True(t, h.gm.applyAction(jack, &messages.ClientAction{
		Action:    messages.ActionSetInventory,
		Inventory: map[string]int{"wood": 500},
	}))
	assert.Equal(t, 500, jack.Inventory.GetCount(types.ItemWood))

	assert.False(t, h.gm.applyAction(other, &messages.ClientAction{
		Action:    messages.ActionSetInventory,
		Inventory: map[string]int{"wood": 500},
	}))
	assert.Equal(t, 0, other.Inventory.GetCount(types.ItemWood))
}

func TestGameManager_ApplyAction(t *testing.T) {
	h := newTestHarness()
	clientID := h.connectClient(t)
	player := h.spawn(t, clientID, "Jack")
	player.Inventory.SetCount(types.ItemCoin, 10000)
	player.Inventory.SetCount(types.ItemWood, 1000)
	player.Inventory.SetCount(types.ItemIron, 1000)
	player.Inventory.SetCount(types.ItemCloth, 1000)

	tests := []struct {
		name   string
		action *messages.ClientAction
		want   bool
	}{
		{
			name:   "unknown action",
			action: &messages.ClientAction{Action: "walk_the_plank"},
			want:   false,
		},
		{
			name:   "buy unknown item",
			action: &messages.ClientAction{Action: messages.ActionBuyItems, Item: "cursed_skull", Amount: 1},
			want:   false,
		},
		{
			name:   "buy negative amount",
			action: &messages.ClientAction{Action: messages.ActionBuyItems, Item: "wood", Amount: -5},
			want:   false,
		},
		{
			name:   "sell items",
			action: &messages.ClientAction{Action: messages.ActionSellItems, Item: "wood", Amount: 5, Price: 15},
			want:   true,
		},
		{
			name:   "purchase unknown component",
			action: &messages.ClientAction{Action: messages.ActionPurchaseComponent, Component: "ghost_anchor"},
			want:   false,
		},
		{
			name:   "purchase component",
			action: &messages.ClientAction{Action: messages.ActionPurchaseComponent, Component: "reinforced_hull"},
			want:   true,
		},
		{
			name:   "unequip component",
			action: &messages.ClientAction{Action: messages.ActionUnequipComponent, Component: "reinforced_hull"},
			want:   true,
		},
		{
			name:   "equip component",
			action: &messages.ClientAction{Action: messages.ActionEquipComponent, Component: "reinforced_hull"},
			want:   true,
		},
		{
			name:   "build vault without port",
			action: &messages.ClientAction{Action: messages.ActionBuildVault},
			want:   false,
		},
		{
			name:   "build vault",
			action: &messages.ClientAction{Action: messages.ActionBuildVault, Port: "tortuga"},
			want:   true,
		},
		{
			name:   "upgrade vault",
			action: &messages.ClientAction{Action: messages.ActionUpgradeVault},
			want:   true,
		},
		{
			name:   "vault deposit",
			action: &messages.ClientAction{Action: messages.ActionVaultDeposit, Item: "wood", Amount: 20},
			want:   true,
		},
		{
			name:   "vault withdraw",
			action: &messages.ClientAction{Action: messages.ActionVaultWithdraw, Item: "wood", Amount: 20},
			want:   true,
		},
		{
			name:   "respawn while alive",
			action: &messages.ClientAction{Action: messages.ActionRespawn},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.gm.applyAction(player, tt.action))
		})
	}
}

func TestGameManager_DockedHeal(t *testing.T) {
	h := newTestHarness()
	clientID := h.connectClient(t)
	player := h.spawn(t, clientID, "Jack")
	player.TakeDamage(50)
	player.InSafeZone = true

	now := time.Now()
	h.gm.healDockedPlayers(now)
	assert.Equal(t, 52, player.Health)

	// interval not elapsed yet
	h.gm.healDockedPlayers(now.Add(time.Second))
	assert.Equal(t, 52, player.Health)

	h.gm.healDockedPlayers(now.Add(3 * time.Second))
	assert.Equal(t, 54, player.Health)

	// undocked players do not regenerate
	player.InSafeZone = false
	h.gm.healDockedPlayers(now.Add(6 * time.Second))
	assert.Equal(t, 54, player.Health)
}

func drainChannels(h *testHarness) {
	for {
		select {
		case <-h.saveSnapshotChan:
		case <-h.presenceChan:
		case <-h.loadSnapshotChan:
		default:
			return
		}
	}
}
