package types

// ConnectPlayerEvent asks the game loop to spawn a player for a registered
// connection, optionally restoring a saved snapshot.
type ConnectPlayerEvent struct {
	ClientID  uint32
	AccountID string
	Username  string
	Snapshot  *PersistedStateSnapshot
}

// DisconnectPlayerEvent asks the game loop to despawn a player and trigger
// its final save.
type DisconnectPlayerEvent struct {
	ClientID uint32
}

// DamagePlayerEvent is a server-originated damage application, for example a
// projectile owned by another connection hitting this player. It is never
// produced from a client message.
type DamagePlayerEvent struct {
	ClientID uint32
	Amount   int
}
