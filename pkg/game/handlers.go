package game

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joshgrift/piratesquest/pkg/auth"
	"github.com/joshgrift/piratesquest/pkg/game/constants"
	"github.com/joshgrift/piratesquest/pkg/game/types"
	"github.com/joshgrift/piratesquest/pkg/log"
	"github.com/joshgrift/piratesquest/pkg/messages"
	"github.com/joshgrift/piratesquest/pkg/workers"
)

// processClientMessages processes all pending client messages in the queue
// and updates the game state.
func (gm *GameManager) processClientMessages(ctx context.Context) {
	pendingMessages, err := gm.clientMessageQueue.ReadAllMessages()
	if err != nil {
		log.Error("Failed to read client messages: %v", err)
		return
	}
	for _, item := range pendingMessages {
		message, ok := item.(*messages.Message)
		if !ok {
			log.Error("Failed to cast message %v", item)
			continue
		}
		switch message.Type {
		case messages.MessageTypeClientRegisterUsername:
			gm.handleRegisterUsername(ctx, message)
		case messages.MessageTypeClientPlayerUpdate:
			gm.handlePlayerUpdate(message)
		case messages.MessageTypeClientAction:
			gm.handleClientAction(ctx, message)
		default:
			log.Error("Unhandled message type: %s", message.Type)
		}
	}
}

// handleRegisterUsername runs the join handshake for a connection. Any
// rejection is sent to the client before the connection is dropped.
func (gm *GameManager) handleRegisterUsername(ctx context.Context, message *messages.Message) {
	register := &messages.ClientRegisterUsername{}
	if err := json.Unmarshal(message.Payload, register); err != nil {
		log.Error("Failed to unmarshal register username message: %v", err)
		gm.rejectJoin(ctx, message.ClientID, "malformed handshake")
		return
	}

	if gm.sessions.GetByClient(message.ClientID) != nil {
		gm.rejectJoin(ctx, message.ClientID, "connection already registered")
		return
	}

	username := strings.TrimSpace(register.Username)
	if username == "" {
		gm.rejectJoin(ctx, message.ClientID, "username cannot be empty")
		return
	}

	if register.ClientVersion != gm.serverVersion {
		gm.rejectJoin(ctx, message.ClientID, fmt.Sprintf("version mismatch: server is running %s", gm.serverVersion))
		return
	}

	accountID, err := auth.VerifyToken(gm.serverSecret, register.Token)
	if err != nil {
		log.Debug("Rejecting client %d: %v", message.ClientID, err)
		gm.rejectJoin(ctx, message.ClientID, "invalid token")
		return
	}

	if existing := gm.sessions.GetByUsername(username); existing != nil {
		gm.evictSession(ctx, existing)
	}

	gm.sessions.Register(message.ClientID, username)
	gm.presenceChan <- workers.PresenceRequest{
		Username: username,
		Online:   true,
	}
	gm.bus.Publish(&types.PresenceChangedEvent{
		Username: username,
		Online:   true,
	})
	gm.loadSnapshotChan <- workers.LoadSnapshotRequest{
		ClientID:  message.ClientID,
		AccountID: accountID,
		Username:  username,
	}

	log.Info("Client %d registered as %s", message.ClientID, username)
}

// rejectJoin sends a join rejection and disconnects the client.
func (gm *GameManager) rejectJoin(ctx context.Context, clientID uint32, reason string) {
	gm.sendToClient(ctx, clientID, messages.MessageTypeServerJoinRejected, &messages.ServerJoinRejected{
		Reason: reason,
	})
	gm.clientManager.DisconnectClient(clientID)
}

// evictSession removes an older session that lost its username to a newer
// login. The old connection stays open for a grace delay so the rejection
// message can be delivered, then is dropped.
func (gm *GameManager) evictSession(ctx context.Context, session *SessionRecord) {
	clientID := session.ClientID
	gm.sessions.Remove(clientID)

	gm.presenceChan <- workers.PresenceRequest{
		Username: session.Username,
		Online:   false,
	}
	gm.bus.Publish(&types.PresenceChangedEvent{
		Username: session.Username,
		Online:   false,
	})

	if player, ok := gm.players[clientID]; ok {
		gm.saveSnapshotChan <- workers.SaveSnapshotRequest{
			AccountID: player.AccountID,
			Snapshot:  player.Snapshot(),
		}
		gm.snapshotCache.Delete(player.AccountID)
		delete(gm.players, clientID)
	}

	gm.sendToClient(ctx, clientID, messages.MessageTypeServerJoinRejected, &messages.ServerJoinRejected{
		Reason: "logged in from another location",
	})

	gm.tasks.Schedule(constants.EvictionGraceDelay, func() {
		if gm.clientManager.Exists(clientID) {
			gm.clientManager.DisconnectClient(clientID)
		}
	})

	log.Info("Evicted client %d for username %s", clientID, session.Username)
}

// handlePlayerUpdate applies a movement update from the owning connection.
// Updates older than the last processed one are dropped.
func (gm *GameManager) handlePlayerUpdate(message *messages.Message) {
	player, ok := gm.players[message.ClientID]
	if !ok {
		log.Debug("Dropping player update for unknown client %d", message.ClientID)
		return
	}

	update := &messages.ClientPlayerUpdate{}
	if err := json.Unmarshal(message.Payload, update); err != nil {
		log.Error("Failed to unmarshal player update message: %v", err)
		return
	}

	if update.Timestamp <= player.LastProcessedTimestamp {
		return
	}
	player.LastProcessedTimestamp = update.Timestamp
	player.Position = update.Position
	player.InSafeZone = update.Docked
}

// handleClientAction dispatches a shop/vault/lifecycle action. The target
// player is always the one owning the connection; requests for anything the
// connection does not own cannot be expressed.
func (gm *GameManager) handleClientAction(ctx context.Context, message *messages.Message) {
	player, ok := gm.players[message.ClientID]
	if !ok {
		log.Debug("Dropping action for unknown client %d", message.ClientID)
		return
	}

	action := &messages.ClientAction{}
	if err := json.Unmarshal(message.Payload, action); err != nil {
		log.Error("Failed to unmarshal action message: %v", err)
		return
	}

	success := gm.applyAction(player, action)
	gm.sendToClient(ctx, message.ClientID, messages.MessageTypeServerActionResult, &messages.ServerActionResult{
		Action:  action.Action,
		Success: success,
	})
}

func (gm *GameManager) applyAction(player *types.PlayerState, action *messages.ClientAction) bool {
	switch action.Action {
	case messages.ActionBuyItems:
		kind, err := types.ParseItemKind(action.Item)
		if err != nil {
			return false
		}
		if player.IsDead() || action.Amount <= 0 || action.Price < 0 {
			return false
		}
		return player.Inventory.UpdateItem(kind, action.Amount, -action.Price)
	case messages.ActionSellItems:
		kind, err := types.ParseItemKind(action.Item)
		if err != nil {
			return false
		}
		if player.IsDead() || action.Amount <= 0 || action.Price < 0 {
			return false
		}
		return player.Inventory.UpdateItem(kind, -action.Amount, action.Price)
	case messages.ActionPurchaseComponent:
		def, ok := types.ComponentCatalog[action.Component]
		if !ok || player.IsDead() {
			return false
		}
		return player.Loadout.Purchase(def)
	case messages.ActionEquipComponent:
		def, ok := types.ComponentCatalog[action.Component]
		if !ok || player.IsDead() {
			return false
		}
		return player.Loadout.Equip(def)
	case messages.ActionUnequipComponent:
		def, ok := types.ComponentCatalog[action.Component]
		if !ok || player.IsDead() {
			return false
		}
		return player.Loadout.Unequip(def)
	case messages.ActionHeal:
		if action.Amount <= 0 || action.Price < 0 {
			return false
		}
		return player.Heal(action.Amount, action.Price)
	case messages.ActionBuildVault:
		if player.IsDead() || action.Port == "" {
			return false
		}
		return player.Vault.Build(action.Port)
	case messages.ActionUpgradeVault:
		if player.IsDead() {
			return false
		}
		return player.Vault.Upgrade()
	case messages.ActionVaultDeposit:
		kind, err := types.ParseItemKind(action.Item)
		if err != nil || player.IsDead() {
			return false
		}
		return player.Vault.Deposit(kind, action.Amount)
	case messages.ActionVaultWithdraw:
		kind, err := types.ParseItemKind(action.Item)
		if err != nil || player.IsDead() {
			return false
		}
		return player.Vault.Withdraw(kind, action.Amount)
	case messages.ActionRespawn:
		if !player.Respawn() {
			return false
		}
		clientID := player.ClientID
		gm.tasks.Schedule(constants.RespawnDelay, func() {
			if p, ok := gm.players[clientID]; ok {
				p.CompleteRespawn()
			}
		})
		return true
	case messages.ActionSetInventory:
		if !player.Creative {
			return false
		}
		return gm.applySetInventory(player, action.Inventory)
	case messages.ActionClearComponents:
		if !player.Creative {
			return false
		}
		player.Loadout.ClearAll()
		return true
	case messages.ActionSetHealth:
		if !player.Creative {
			return false
		}
		player.SetHealth(action.Health)
		return true
	case messages.ActionSetVault:
		if !player.Creative {
			return false
		}
		return gm.applySetVault(player, action.Vault)
	case messages.ActionDeleteVault:
		if !player.Creative {
			return false
		}
		player.Vault.Restore(nil)
		return true
	default:
		log.Debug("Unknown action %q from client %d", action.Action, player.ClientID)
		return false
	}
}

// applySetInventory replaces the whole ledger. Kinds not named are zeroed.
func (gm *GameManager) applySetInventory(player *types.PlayerState, inventory map[string]int) bool {
	counts := make(map[types.ItemKind]int, len(inventory))
	for name, count := range inventory {
		kind, err := types.ParseItemKind(name)
		if err != nil {
			return false
		}
		if count < 0 {
			return false
		}
		counts[kind] = count
	}

	for kind := range player.Inventory.Counts() {
		if _, ok := counts[kind]; !ok {
			player.Inventory.SetCount(kind, 0)
			player.Inventory.Remove(kind)
		}
	}
	for kind, count := range counts {
		player.Inventory.SetCount(kind, count)
	}
	return true
}

// applySetVault replaces the vault without cost checks.
func (gm *GameManager) applySetVault(player *types.PlayerState, snapshot *types.VaultSnapshot) bool {
	if snapshot == nil {
		return false
	}
	if snapshot.Level < 1 || snapshot.Level > constants.VaultMaxLevel || snapshot.PortName == "" {
		return false
	}

	vault := &types.Vault{
		PortName: snapshot.PortName,
		Level:    snapshot.Level,
		Items:    make(map[types.ItemKind]int),
	}
	for name, count := range snapshot.Items {
		kind, err := types.ParseItemKind(name)
		if err != nil || count < 0 {
			return false
		}
		vault.Items[kind] = count
	}
	player.Vault.Restore(vault)
	return true
}
