package game

import "strings"

// SessionRecord binds a connection to a username.
type SessionRecord struct {
	ClientID uint32
	Username string
}

// SessionRegistry maps usernames to their single active connection.
// Usernames match case-insensitively. It is only touched from the serial
// game loop, which is what makes the eviction rule race-free.
type SessionRegistry struct {
	byUsername map[string]*SessionRecord
	byClient   map[uint32]*SessionRecord
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		byUsername: make(map[string]*SessionRecord),
		byClient:   make(map[uint32]*SessionRecord),
	}
}

// GetByUsername returns the active session for a username, nil if none.
func (r *SessionRegistry) GetByUsername(username string) *SessionRecord {
	return r.byUsername[strings.ToLower(username)]
}

// GetByClient returns the session for a connection, nil if unregistered.
func (r *SessionRegistry) GetByClient(clientID uint32) *SessionRecord {
	return r.byClient[clientID]
}

// Register records a session. The caller must have resolved any duplicate
// username first.
func (r *SessionRegistry) Register(clientID uint32, username string) *SessionRecord {
	record := &SessionRecord{
		ClientID: clientID,
		Username: username,
	}
	r.byUsername[strings.ToLower(username)] = record
	r.byClient[clientID] = record
	return record
}

// Remove deletes a session by connection id and returns it, nil if absent.
func (r *SessionRegistry) Remove(clientID uint32) *SessionRecord {
	record, ok := r.byClient[clientID]
	if !ok {
		return nil
	}
	delete(r.byClient, clientID)
	delete(r.byUsername, strings.ToLower(record.Username))
	return record
}

// Count returns the number of active sessions.
func (r *SessionRegistry) Count() int {
	return len(r.byClient)
}
