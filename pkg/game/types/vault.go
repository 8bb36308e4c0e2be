package types

import "github.com/joshgrift/piratesquest/pkg/game/constants"

// VaultBuildCost is the fixed price of building a level-1 vault.
var VaultBuildCost = map[ItemKind]int{
	ItemWood: 50,
	ItemCoin: 100,
}

// VaultUpgradeBaseCost is the level-1 upgrade price. Upgrading from level L
// costs this times 3^(L-1) per kind.
var VaultUpgradeBaseCost = map[ItemKind]int{
	ItemWood: 100,
	ItemIron: 50,
	ItemCoin: 200,
}

// Vault is a single per-account storage location bound to one port. It
// survives player death and persists in the snapshot.
type Vault struct {
	PortName string
	Level    int
	Items    map[ItemKind]int
}

// VaultStore manages a player's single vault and the transfers between it
// and the inventory.
type VaultStore struct {
	vault     *Vault
	inventory *Inventory
}

func NewVaultStore(inventory *Inventory) *VaultStore {
	return &VaultStore{inventory: inventory}
}

// Vault returns the current vault, nil when none has been built.
func (s *VaultStore) Vault() *Vault {
	return s.vault
}

// Build creates a level-1 vault bound to portName. Fails when a vault
// already exists or the build cost is unaffordable.
func (s *VaultStore) Build(portName string) bool {
	if s.vault != nil {
		return false
	}
	if !s.deductCost(VaultBuildCost, 1) {
		return false
	}
	s.vault = &Vault{
		PortName: portName,
		Level:    1,
		Items:    make(map[ItemKind]int),
	}
	return true
}

// UpgradeCost returns the per-kind cost of upgrading from the given level.
func UpgradeCost(level int) map[ItemKind]int {
	multiplier := 1
	for i := 1; i < level; i++ {
		multiplier *= constants.VaultUpgradeCostGrowth
	}
	cost := make(map[ItemKind]int, len(VaultUpgradeBaseCost))
	for kind, count := range VaultUpgradeBaseCost {
		cost[kind] = count * multiplier
	}
	return cost
}

// Upgrade raises the vault one level. Fails when no vault exists, the vault
// is at max level, or the tier cost is unaffordable.
func (s *VaultStore) Upgrade() bool {
	if s.vault == nil || s.vault.Level >= constants.VaultMaxLevel {
		return false
	}
	if !s.deductCost(UpgradeCost(s.vault.Level), 1) {
		return false
	}
	s.vault.Level++
	return true
}

// Deposit moves items from the inventory into the vault. Coins count against
// the per-level gold capacity; every other kind shares one item pool.
func (s *VaultStore) Deposit(kind ItemKind, amount int) bool {
	if s.vault == nil || amount <= 0 {
		return false
	}
	if s.inventory.GetCount(kind) < amount {
		return false
	}

	if kind == ItemCoin {
		if s.vault.Items[ItemCoin]+amount > constants.VaultGoldCapacity[s.vault.Level] {
			return false
		}
	} else {
		if s.storedItemTotal()+amount > constants.VaultItemCapacity[s.vault.Level] {
			return false
		}
	}

	s.inventory.SetCount(kind, s.inventory.GetCount(kind)-amount)
	s.vault.Items[kind] += amount
	return true
}

// Withdraw moves items from the vault back into the inventory. The cargo
// capacity check does not apply: items already belong to the player.
func (s *VaultStore) Withdraw(kind ItemKind, amount int) bool {
	if s.vault == nil || amount <= 0 {
		return false
	}
	if s.vault.Items[kind] < amount {
		return false
	}

	s.vault.Items[kind] -= amount
	if s.vault.Items[kind] == 0 {
		delete(s.vault.Items, kind)
	}
	s.inventory.SetCount(kind, s.inventory.GetCount(kind)+amount)
	return true
}

// Restore replaces the vault without cost checks, used by snapshot apply and
// the creative set override. A nil vault deletes the existing one.
func (s *VaultStore) Restore(vault *Vault) {
	if vault != nil && vault.Items == nil {
		vault.Items = make(map[ItemKind]int)
	}
	s.vault = vault
}

func (s *VaultStore) storedItemTotal() int {
	total := 0
	for kind, count := range s.vault.Items {
		if kind == ItemCoin {
			continue
		}
		total += count
	}
	return total
}

// deductCost removes cost*multiplier from the inventory, all kinds or none.
func (s *VaultStore) deductCost(cost map[ItemKind]int, multiplier int) bool {
	for kind, count := range cost {
		if s.inventory.GetCount(kind) < count*multiplier {
			return false
		}
	}
	for kind, count := range cost {
		s.inventory.UpdateItem(kind, -count*multiplier, 0)
	}
	return true
}
