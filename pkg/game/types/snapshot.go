package types

import (
	"github.com/joshgrift/piratesquest/pkg/game/constants"
	"github.com/joshgrift/piratesquest/pkg/log"
)

// PersistedStateSnapshot is the durable representation of a player. It is
// the only shape that crosses the persistence boundary.
type PersistedStateSnapshot struct {
	Inventory  map[string]int      `json:"inventory"`
	Components []ComponentSnapshot `json:"components"`
	Health     int                 `json:"health"`
	Position   Position            `json:"position"`
	IsDead     bool                `json:"isDead"`
	Vault      *VaultSnapshot      `json:"vault,omitempty"`
}

type ComponentSnapshot struct {
	Name       string `json:"name"`
	IsEquipped bool   `json:"isEquipped"`
}

type VaultSnapshot struct {
	PortName string         `json:"portName"`
	Level    int            `json:"level"`
	Items    map[string]int `json:"items"`
}

// Snapshot captures the player's durable state.
func (p *PlayerState) Snapshot() *PersistedStateSnapshot {
	snapshot := &PersistedStateSnapshot{
		Inventory:  make(map[string]int),
		Components: []ComponentSnapshot{},
		Health:     p.Health,
		Position:   p.Position,
		IsDead:     p.IsDead(),
	}
	for kind, count := range p.Inventory.Counts() {
		snapshot.Inventory[kind.String()] = count
	}
	for _, owned := range p.Loadout.Owned() {
		snapshot.Components = append(snapshot.Components, ComponentSnapshot{
			Name:       owned.Definition.Name,
			IsEquipped: owned.IsEquipped,
		})
	}
	if vault := p.Vault.Vault(); vault != nil {
		vaultSnapshot := &VaultSnapshot{
			PortName: vault.PortName,
			Level:    vault.Level,
			Items:    make(map[string]int),
		}
		for kind, count := range vault.Items {
			vaultSnapshot.Items[kind.String()] = count
		}
		snapshot.Vault = vaultSnapshot
	}
	return snapshot
}

// ApplySnapshot restores a saved snapshot onto a freshly spawned player.
// Inventory entries are set directly. Components naming a catalog entry that
// no longer exists are skipped with a warning so old saves still load. A
// player saved dead comes back alive at full health in a fresh position:
// that death was already resolved.
func (p *PlayerState) ApplySnapshot(snapshot *PersistedStateSnapshot) {
	for name, count := range snapshot.Inventory {
		kind, err := ParseItemKind(name)
		if err != nil {
			log.Warn("Skipping unknown item kind %q in snapshot for %s", name, p.Nickname)
			continue
		}
		p.Inventory.SetCount(kind, count)
	}

	var owned []*OwnedComponent
	for _, component := range snapshot.Components {
		def, ok := ComponentCatalog[component.Name]
		if !ok {
			log.Warn("Skipping unknown component %q in snapshot for %s", component.Name, p.Nickname)
			continue
		}
		owned = append(owned, &OwnedComponent{
			Definition: def,
			IsEquipped: component.IsEquipped,
		})
	}
	p.Loadout.Restore(owned)

	if snapshot.Vault != nil {
		vault := &Vault{
			PortName: snapshot.Vault.PortName,
			Level:    snapshot.Vault.Level,
			Items:    make(map[ItemKind]int),
		}
		for name, count := range snapshot.Vault.Items {
			kind, err := ParseItemKind(name)
			if err != nil {
				log.Warn("Skipping unknown item kind %q in vault snapshot for %s", name, p.Nickname)
				continue
			}
			vault.Items[kind] = count
		}
		p.Vault.Restore(vault)
	}

	if snapshot.IsDead {
		p.Health = p.MaxHealth()
		p.Position = RandomSpawnPosition(constants.SpawnRadius)
		return
	}

	p.Health = snapshot.Health
	if p.Health > p.MaxHealth() {
		p.Health = p.MaxHealth()
	}
	if p.Health <= 0 {
		p.Health = p.MaxHealth()
	}
	p.Position = snapshot.Position
}
