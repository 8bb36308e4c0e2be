package types

import (
	"github.com/joshgrift/piratesquest/pkg/events"
	"github.com/joshgrift/piratesquest/pkg/game/constants"
)

// LifeState is the player's position in the alive/dead state machine.
type LifeState uint8

const (
	LifeStateAlive LifeState = iota
	LifeStateDead
)

// PlayerState is the authoritative state of one connected player. Only the
// game loop mutates it; connections request mutations through messages.
type PlayerState struct {
	ClientID  uint32
	AccountID string
	Nickname  string

	State      LifeState
	Health     int
	Position   Position
	InSafeZone bool
	Creative   bool

	// LastProcessedTimestamp orders movement updates from the owning
	// connection; stale updates are dropped.
	LastProcessedTimestamp int64

	Inventory *Inventory
	Loadout   *Loadout
	Vault     *VaultStore
	Stats     StatTable

	publisher events.Publisher
}

// NewPlayerState creates an alive player at a random spawn position with
// base stats and empty holdings.
func NewPlayerState(clientID uint32, accountID string, nickname string, publisher events.Publisher) *PlayerState {
	p := &PlayerState{
		ClientID:  clientID,
		AccountID: accountID,
		Nickname:  nickname,
		State:     LifeStateAlive,
		Position:  RandomSpawnPosition(constants.SpawnRadius),
		publisher: publisher,
	}
	p.Stats = RecomputeStats(BaseStats, nil)
	p.Inventory = NewInventory(clientID, func() int {
		return p.Stats.GetInt(StatCargoCapacity)
	}, publisher)
	p.Loadout = NewLoadout(p.Inventory, func() int {
		return p.Stats.GetInt(StatComponentCapacity)
	}, p.recomputeStats)
	p.Vault = NewVaultStore(p.Inventory)
	p.Health = p.MaxHealth()
	return p
}

// MaxHealth is derived from the hull strength stat.
func (p *PlayerState) MaxHealth() int {
	return p.Stats.GetInt(StatHullStrength)
}

// IsDead reports whether the player is in the dead state.
func (p *PlayerState) IsDead() bool {
	return p.State == LifeStateDead
}

func (p *PlayerState) recomputeStats() {
	p.Stats = RecomputeStats(BaseStats, p.Loadout.EquippedDefinitions())
	if p.Health > p.MaxHealth() {
		p.Health = p.MaxHealth()
	}
}

// TakeDamage applies damage to the player. Dead players and players in a
// safe zone take none. Reaching zero health kills the player.
func (p *PlayerState) TakeDamage(amount int) {
	if p.IsDead() || p.InSafeZone {
		return
	}
	p.Health -= amount
	if p.Health <= 0 {
		p.Health = 0
		p.onDeath()
		return
	}
	p.publishHealth()
}

// onDeath drops loot, clears the loadout, and transitions to dead. The
// vault is untouched: it survives death.
func (p *PlayerState) onDeath() {
	drops := make(map[ItemKind]int)
	for kind, count := range p.Inventory.Counts() {
		if kind == ItemTrophy {
			if count > 0 {
				drops[kind] = count
			}
			continue
		}
		if half := count / 2; half > 0 {
			drops[kind] = half
		}
	}
	for kind, dropped := range drops {
		p.Inventory.SetCount(kind, p.Inventory.GetCount(kind)-dropped)
		if p.Inventory.GetCount(kind) == 0 {
			p.Inventory.Remove(kind)
		}
	}

	p.Loadout.ClearAll()
	p.State = LifeStateDead

	p.publisher.Publish(&PlayerDiedEvent{
		Drop: DropPayload{
			ClientID: p.ClientID,
			Nickname: p.Nickname,
			Position: p.Position,
			Items:    drops,
		},
	})
}

// Respawn prepares a dead player for a new life: tops up ammunition and
// coins to their floors, restores health, and relocates. The transition back
// to alive happens after the respawn delay via CompleteRespawn.
func (p *PlayerState) Respawn() bool {
	if !p.IsDead() {
		return false
	}
	p.topUp(ItemCannonBall, constants.RespawnMinCannonBalls)
	p.topUp(ItemCoin, constants.RespawnMinCoins)
	p.Health = p.MaxHealth()
	p.Position = RandomSpawnPosition(constants.SpawnRadius)
	p.publishHealth()
	return true
}

// CompleteRespawn flips the player back to alive. Checked against the
// current state because the delay timer can fire against stale state.
func (p *PlayerState) CompleteRespawn() {
	if p.IsDead() {
		p.State = LifeStateAlive
	}
}

func (p *PlayerState) topUp(kind ItemKind, floor int) {
	if p.Inventory.GetCount(kind) < floor {
		p.Inventory.SetCount(kind, floor)
	}
}

// Heal restores health for a coin price. Fails when dead, already at full
// health, or the price is unaffordable.
func (p *PlayerState) Heal(amount int, price int) bool {
	if p.IsDead() || p.Health >= p.MaxHealth() {
		return false
	}
	if !p.Inventory.UpdateItem(ItemCoin, -price, 0) {
		return false
	}
	p.Health += amount
	if p.Health > p.MaxHealth() {
		p.Health = p.MaxHealth()
	}
	p.publishHealth()
	return true
}

// SetHealth is the creative override. Setting zero or less kills the player
// through the normal death path.
func (p *PlayerState) SetHealth(health int) {
	if p.IsDead() {
		return
	}
	if health <= 0 {
		p.Health = 0
		p.onDeath()
		return
	}
	if health > p.MaxHealth() {
		health = p.MaxHealth()
	}
	p.Health = health
	p.publishHealth()
}

// IsOverburdened reports whether the non-coin cargo total is at or above
// the cargo capacity stat.
func (p *PlayerState) IsOverburdened() bool {
	return p.Inventory.GetTotal(ItemCoin) >= p.Stats.GetInt(StatCargoCapacity)
}

func (p *PlayerState) publishHealth() {
	p.publisher.Publish(&HealthChangedEvent{
		ClientID:  p.ClientID,
		Health:    p.Health,
		MaxHealth: p.MaxHealth(),
	})
}
