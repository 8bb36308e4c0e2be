package messages

import (
	"encoding/json"

	"github.com/joshgrift/piratesquest/pkg/game/types"
)

const (
	// MessageBufferSize represents the maximum size of a serialized message
	MessageBufferSize = 4096
)

// Message types
const (
	MessageTypeClientRegisterUsername = "cru"
	MessageTypeClientPlayerUpdate     = "cpu"
	MessageTypeClientAction           = "cac"

	MessageTypeServerJoinRejected    = "sjr"
	MessageTypeServerJoinAccepted    = "sja"
	MessageTypeServerActionResult    = "sar"
	MessageTypeServerInventoryUpdate = "siu"
	MessageTypeServerHealthUpdate    = "shu"
	MessageTypeServerPlayerDied      = "spd"
)

// Message represents a generic message for serialization/deserialization.
// ClientID is stamped by the server from the connection the message arrived
// on; the client's own claim is never trusted.
type Message struct {
	ClientID uint32          `json:"clientID"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
}

// ClientRegisterUsername is the join handshake request.
type ClientRegisterUsername struct {
	Username      string `json:"username"`
	ClientVersion string `json:"clientVersion"`
	Token         string `json:"token"`
}

// ClientPlayerUpdate carries the owning connection's movement state.
type ClientPlayerUpdate struct {
	Timestamp int64          `json:"timestamp"`
	Position  types.Position `json:"position"`
	Docked    bool           `json:"docked"`
}

// Action names accepted in ClientAction messages.
const (
	ActionBuyItems          = "buy_items"
	ActionSellItems         = "sell_items"
	ActionPurchaseComponent = "purchase_component"
	ActionEquipComponent    = "equip_component"
	ActionUnequipComponent  = "unequip_component"
	ActionHeal              = "heal"
	ActionBuildVault        = "build_vault"
	ActionUpgradeVault      = "upgrade_vault"
	ActionVaultDeposit      = "vault_deposit"
	ActionVaultWithdraw     = "vault_withdraw"
	ActionRespawn           = "respawn"

	// creative-only actions, rejected unless the session has the creative flag
	ActionSetInventory    = "set_inventory"
	ActionClearComponents = "clear_components"
	ActionSetHealth       = "set_health"
	ActionSetVault        = "set_vault"
	ActionDeleteVault     = "delete_vault"
)

// ClientAction is a shop/vault/lifecycle request from the owning connection.
// Fields beyond Action are interpreted per action.
type ClientAction struct {
	Action    string               `json:"action"`
	Item      string               `json:"item,omitempty"`
	Amount    int                  `json:"amount,omitempty"`
	Price     int                  `json:"price,omitempty"`
	Component string               `json:"component,omitempty"`
	Port      string               `json:"port,omitempty"`
	Health    int                  `json:"health,omitempty"`
	Inventory map[string]int       `json:"inventory,omitempty"`
	Vault     *types.VaultSnapshot `json:"vault,omitempty"`
}

// ServerJoinRejected tells a connection why its handshake failed. The
// connection is closed right after delivery.
type ServerJoinRejected struct {
	Reason string `json:"reason"`
}

// ServerJoinAccepted confirms the handshake and tells the client its ID.
type ServerJoinAccepted struct {
	ClientID uint32 `json:"clientID"`
}

// ServerActionResult reports whether a requested action applied.
type ServerActionResult struct {
	Action  string `json:"action"`
	Success bool   `json:"success"`
}

// ServerInventoryUpdate notifies the owning client of a ledger change.
type ServerInventoryUpdate struct {
	Item     string `json:"item"`
	NewCount int    `json:"newCount"`
	Delta    int    `json:"delta"`
}

// ServerHealthUpdate notifies the owning client of a health change.
type ServerHealthUpdate struct {
	Health    int `json:"health"`
	MaxHealth int `json:"maxHealth"`
}

// ServerPlayerDied broadcasts a death and its drop position.
type ServerPlayerDied struct {
	ClientID uint32         `json:"clientID"`
	Nickname string         `json:"nickname"`
	Position types.Position `json:"position"`
}
