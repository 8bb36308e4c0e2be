package constants

import "time"

const (
	// GameLoopInterval is the tick rate of the serial game loop
	GameLoopInterval = 100 * time.Millisecond
	// RespawnDelay is how long a dead player waits before becoming alive again
	RespawnDelay = 1 * time.Second
	// EvictionGraceDelay is how long an evicted session keeps its connection
	// so the rejection message can be delivered
	EvictionGraceDelay = 500 * time.Millisecond
	// SnapshotCacheInterval is how often the game loop refreshes the
	// last-known-good snapshot cache
	SnapshotCacheInterval = 3 * time.Second
	// PersistInterval is how often cached snapshots are written to the backend
	PersistInterval = 30 * time.Second
	// HeartbeatInterval is how often a dedicated server pings the backend
	HeartbeatInterval = 60 * time.Second
	// DockedHealInterval is how often a docked player regenerates health
	DockedHealInterval = 2 * time.Second
	// DockedHealAmount is how much health a docked player regenerates per tick
	DockedHealAmount = 2

	// RespawnMinCannonBalls is the ammunition floor granted on respawn
	RespawnMinCannonBalls = 10
	// RespawnMinCoins is the currency floor granted on respawn
	RespawnMinCoins = 25

	// VaultMaxLevel is the highest vault tier
	VaultMaxLevel = 5
	// VaultUpgradeCostGrowth is the per-level multiplier of the upgrade cost
	VaultUpgradeCostGrowth = 3

	// SpawnRadius is the radius of the ring players respawn into
	SpawnRadius float64 = 2000.0
)

// VaultItemCapacity is the shared item pool size per vault level.
var VaultItemCapacity = map[int]int{
	1: 50,
	2: 100,
	3: 200,
	4: 400,
	5: 800,
}

// VaultGoldCapacity is the coin pool size per vault level.
var VaultGoldCapacity = map[int]int{
	1: 1000,
	2: 3000,
	3: 9000,
	4: 27000,
	5: 81000,
}
