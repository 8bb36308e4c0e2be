package types

import (
	"testing"

	"github.com/joshgrift/piratesquest/pkg/events"
	"github.com/joshgrift/piratesquest/pkg/game/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlayer() *PlayerState {
	return NewPlayerState(1, "account-1", "Jack", events.NopPublisher{})
}

func TestNewPlayerState(t *testing.T) {
	player := newTestPlayer()

	assert.False(t, player.IsDead())
	assert.Equal(t, 100, player.Health)
	assert.Equal(t, 100, player.MaxHealth())
	assert.Empty(t, player.Inventory.Counts())
	assert.Empty(t, player.Loadout.Owned())
	assert.Nil(t, player.Vault.Vault())
}

func TestPlayerState_TakeDamage(t *testing.T) {
	player := newTestPlayer()

	player.TakeDamage(30)
	assert.Equal(t, 70, player.Health)
	assert.False(t, player.IsDead())

	player.InSafeZone = true
	player.TakeDamage(30)
	assert.Equal(t, 70, player.Health)

	player.InSafeZone = false
	player.TakeDamage(200)
	assert.True(t, player.IsDead())
	assert.Equal(t, 0, player.Health)

	// dead players take no further damage
	player.TakeDamage(30)
	assert.Equal(t, 0, player.Health)
}

func TestPlayerState_DeathDrops(t *testing.T) {
	bus := events.NewBus()
	var died *PlayerDiedEvent
	bus.Subscribe(func(event events.Event) {
		if e, ok := event.(*PlayerDiedEvent); ok {
			died = e
		}
	})

	player := NewPlayerState(1, "account-1", "Jack", bus)
	player.Inventory.SetCount(ItemWood, 10)
	player.Inventory.SetCount(ItemTrophy, 3)
	player.Inventory.SetCount(ItemCloth, 1)

	player.TakeDamage(200)

	require.NotNil(t, died)
	assert.Equal(t, uint32(1), died.Drop.ClientID)
	assert.Equal(t, "Jack", died.Drop.Nickname)

	// trophies drop whole, other kinds drop half rounded down
	assert.Equal(t, map[ItemKind]int{ItemTrophy: 3, ItemWood: 5}, died.Drop.Items)
	assert.Equal(t, 5, player.Inventory.GetCount(ItemWood))
	assert.Equal(t, 0, player.Inventory.GetCount(ItemTrophy))
	assert.Equal(t, 1, player.Inventory.GetCount(ItemCloth))
	assert.Empty(t, player.Loadout.Owned())
}

func TestPlayerState_DeathClearsLoadoutButNotVault(t *testing.T) {
	player := newTestPlayer()
	player.Inventory.SetCount(ItemWood, 1000)
	player.Inventory.SetCount(ItemIron, 1000)
	require.True(t, player.Loadout.Purchase(ComponentCatalog["reinforced_hull"]))
	player.Vault.Restore(&Vault{PortName: "tortuga", Level: 2, Items: map[ItemKind]int{ItemIron: 7}})

	player.TakeDamage(1000)

	assert.Empty(t, player.Loadout.Owned())
	require.NotNil(t, player.Vault.Vault())
	assert.Equal(t, 7, player.Vault.Vault().Items[ItemIron])
}

func TestPlayerState_Respawn(t *testing.T) {
	player := newTestPlayer()

	// only dead players respawn
	assert.False(t, player.Respawn())

	player.Inventory.SetCount(ItemCannonBall, 2)
	player.TakeDamage(200)
	require.True(t, player.IsDead())

	assert.True(t, player.Respawn())
	assert.Equal(t, constants.RespawnMinCannonBalls, player.Inventory.GetCount(ItemCannonBall))
	assert.Equal(t, constants.RespawnMinCoins, player.Inventory.GetCount(ItemCoin))
	assert.Equal(t, player.MaxHealth(), player.Health)

	// alive transition waits for the respawn delay
	assert.True(t, player.IsDead())
	player.CompleteRespawn()
	assert.False(t, player.IsDead())
}

func TestPlayerState_RespawnDoesNotReduceCounts(t *testing.T) {
	player := newTestPlayer()
	player.Inventory.SetCount(ItemCannonBall, 50)
	player.Inventory.SetCount(ItemCoin, 500)
	player.TakeDamage(200)

	// half the cannonballs dropped on death
	require.Equal(t, 25, player.Inventory.GetCount(ItemCannonBall))

	require.True(t, player.Respawn())
	assert.Equal(t, 25, player.Inventory.GetCount(ItemCannonBall))
	assert.Equal(t, 250, player.Inventory.GetCount(ItemCoin))
}

func TestPlayerState_Heal(t *testing.T) {
	player := newTestPlayer()
	player.Inventory.SetCount(ItemCoin, 100)

	// already at full health
	assert.False(t, player.Heal(10, 5))

	player.TakeDamage(50)
	assert.True(t, player.Heal(10, 5))
	assert.Equal(t, 60, player.Health)
	assert.Equal(t, 95, player.Inventory.GetCount(ItemCoin))

	// unaffordable
	assert.False(t, player.Heal(10, 500))
	assert.Equal(t, 60, player.Health)

	// overheal clamps to max
	assert.True(t, player.Heal(1000, 5))
	assert.Equal(t, player.MaxHealth(), player.Health)
}

func TestPlayerState_MaxHealthFollowsLoadout(t *testing.T) {
	player := newTestPlayer()
	player.Inventory.SetCount(ItemWood, 1000)
	player.Inventory.SetCount(ItemIron, 1000)

	require.True(t, player.Loadout.Purchase(ComponentCatalog["reinforced_hull"]))
	assert.Equal(t, 150, player.MaxHealth())

	player.Heal(50, 0)
	assert.Equal(t, 150, player.Health)

	// unequipping clamps health back down
	require.True(t, player.Loadout.Unequip(ComponentCatalog["reinforced_hull"]))
	assert.Equal(t, 100, player.MaxHealth())
	assert.Equal(t, 100, player.Health)
}

func TestPlayerState_SetHealth(t *testing.T) {
	player := newTestPlayer()

	player.SetHealth(30)
	assert.Equal(t, 30, player.Health)

	player.SetHealth(1000)
	assert.Equal(t, player.MaxHealth(), player.Health)

	player.SetHealth(0)
	assert.True(t, player.IsDead())
}

func TestPlayerState_IsOverburdened(t *testing.T) {
	player := newTestPlayer()
	assert.False(t, player.IsOverburdened())

	player.Inventory.SetCount(ItemWood, 50)
	assert.True(t, player.IsOverburdened())

	player.Inventory.SetCount(ItemWood, 0)
	player.Inventory.SetCount(ItemCoin, 100000)
	assert.False(t, player.IsOverburdened())
}
