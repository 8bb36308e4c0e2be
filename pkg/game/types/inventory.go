package types

import "github.com/joshgrift/piratesquest/pkg/events"

// Inventory is a ledger of item counts for one player. Counts never go
// negative: a mutation that would make any count negative is rejected whole.
type Inventory struct {
	counts    map[ItemKind]int
	capacity  func() int
	publisher events.Publisher
	clientID  uint32
}

// NewInventory creates an empty inventory. capacity returns the current
// cargo capacity stat and is consulted on every accumulating update.
func NewInventory(clientID uint32, capacity func() int, publisher events.Publisher) *Inventory {
	return &Inventory{
		counts:    make(map[ItemKind]int),
		capacity:  capacity,
		publisher: publisher,
		clientID:  clientID,
	}
}

// UpdateItem applies a delta to one item kind, optionally charging or
// crediting coins via price. The item change and the coin change succeed or
// fail together. Returns false and mutates nothing when the player is over
// capacity and accumulating, when the coin balance would go negative, or
// when the item count would go negative.
//
// The capacity check only blocks accumulation once the total is already at
// or above capacity. A single large grant can still push the total over;
// that looseness is deliberate.
func (inv *Inventory) UpdateItem(kind ItemKind, amount int, price int) bool {
	if amount > 0 && inv.GetTotal(ItemCoin) >= inv.capacity() {
		return false
	}

	coinDelta := price
	itemDelta := amount
	if kind == ItemCoin {
		// amount and price both land on the coin balance
		coinDelta += amount
		itemDelta = 0
	}
	if inv.counts[ItemCoin]+coinDelta < 0 {
		return false
	}
	if inv.counts[kind]+itemDelta < 0 {
		return false
	}

	inv.apply(kind, itemDelta)
	inv.apply(ItemCoin, coinDelta)

	return true
}

func (inv *Inventory) apply(kind ItemKind, delta int) {
	if delta == 0 {
		return
	}
	inv.counts[kind] += delta
	inv.publisher.Publish(&InventoryChangedEvent{
		ClientID: inv.clientID,
		Kind:     kind,
		NewCount: inv.counts[kind],
		Delta:    delta,
	})
}

// GetCount returns the count for a kind, zero for unseen kinds.
func (inv *Inventory) GetCount(kind ItemKind) int {
	return inv.counts[kind]
}

// GetTotal sums all counts except the excluded kinds.
func (inv *Inventory) GetTotal(excluding ...ItemKind) int {
	total := 0
	for kind, count := range inv.counts {
		skip := false
		for _, ex := range excluding {
			if kind == ex {
				skip = true
				break
			}
		}
		if !skip {
			total += count
		}
	}
	return total
}

// SetCount overwrites a count directly, bypassing capacity and affordability
// checks. Used by snapshot restore and creative overrides.
func (inv *Inventory) SetCount(kind ItemKind, count int) {
	if count < 0 {
		count = 0
	}
	delta := count - inv.counts[kind]
	inv.apply(kind, delta)
}

// Counts returns a copy of the full ledger.
func (inv *Inventory) Counts() map[ItemKind]int {
	counts := make(map[ItemKind]int, len(inv.counts))
	for kind, count := range inv.counts {
		counts[kind] = count
	}
	return counts
}

// Remove deletes a kind from the ledger without emitting an event. Used when
// a death drop zeroes entries that should not linger as explicit zeros.
func (inv *Inventory) Remove(kind ItemKind) {
	delete(inv.counts, kind)
}
