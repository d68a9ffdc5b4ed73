package client

import "sync"

// TokenStore is the credential slot the client reads before every dial.
// The client never writes it; token issuance and refresh live outside
// the collaboration layer.
type TokenStore interface {
	Token() string
}

// RoomIdentity is the per-room identity cached between sessions so a
// reload can rejoin without re-entering a share code.
type RoomIdentity struct {
	RoomID    string
	UserID    string
	UserName  string
	CreatorID string
}

// SessionCache persists the last joined room's identity.
type SessionCache interface {
	Load() (RoomIdentity, bool)
	Store(RoomIdentity)
	Clear()
}

// MemoryTokenStore is a process-local TokenStore.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryTokenStore(token string) *MemoryTokenStore {
	return &MemoryTokenStore{token: token}
}

func (s *MemoryTokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken replaces the stored credential. Used by the hosting app
// after login or refresh.
func (s *MemoryTokenStore) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// MemorySessionCache is a process-local SessionCache.
type MemorySessionCache struct {
	mu       sync.Mutex
	identity RoomIdentity
	valid    bool
}

func NewMemorySessionCache() *MemorySessionCache {
	return &MemorySessionCache{}
}

func (c *MemorySessionCache) Load() (RoomIdentity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity, c.valid
}

func (c *MemorySessionCache) Store(identity RoomIdentity) {
	c.mu.Lock()
	c.identity = identity
	c.valid = true
	c.mu.Unlock()
}

func (c *MemorySessionCache) Clear() {
	c.mu.Lock()
	c.identity = RoomIdentity{}
	c.valid = false
	c.mu.Unlock()
}
