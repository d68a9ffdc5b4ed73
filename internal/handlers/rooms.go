package handlers

import (
	"sync"
	"time"

	"github.com/FlyingWhaleisME/where-to-next-sub001/internal/models"
	"github.com/FlyingWhaleisME/where-to-next-sub001/internal/utils"

	"github.com/gofiber/websocket/v2"
)

// RoomManager tracks live websocket connections, which trip room each
// belongs to, and the membership roster per room. Roster entries are
// keyed by user id, so a second tab of the same user upserts the same
// entry instead of duplicating it.
type RoomManager struct {
	mu sync.RWMutex
	// roomID -> connID -> conn
	rooms map[string]map[string]*websocket.Conn
	// connID -> metadata
	connMeta map[string]ConnMeta
	// roomID -> userID -> roster entry. Entries survive user_left as
	// offline; they only disappear when the room itself is dropped.
	rosters map[string]map[string]models.RoomUser
	// per-connection write locks; websocket conns reject concurrent
	// writers
	writeLocks map[string]*sync.Mutex
}

type ConnMeta struct {
	UserID   string
	UserName string
	RoomID   string
	Conn     *websocket.Conn
}

var Manager = NewRoomManager()

func NewRoomManager() *RoomManager {
	return &RoomManager{
		rooms:      make(map[string]map[string]*websocket.Conn),
		connMeta:   make(map[string]ConnMeta),
		rosters:    make(map[string]map[string]models.RoomUser),
		writeLocks: make(map[string]*sync.Mutex),
	}
}

// Register stores metadata for a freshly upgraded connection.
func (m *RoomManager) Register(connID, userID, userName string, c *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connMeta[connID] = ConnMeta{UserID: userID, UserName: userName, Conn: c}
	m.writeLocks[connID] = &sync.Mutex{}
}

// Join moves a connection into a room and upserts its roster entry.
// Returns the new roster snapshot.
func (m *RoomManager) Join(roomID, connID string, isCreator bool) []models.RoomUser {
	m.mu.Lock()
	defer m.mu.Unlock()

	meta, ok := m.connMeta[connID]
	if !ok {
		return nil
	}

	// Implicitly leave the previous room.
	if meta.RoomID != "" && meta.RoomID != roomID {
		m.leaveLocked(meta.RoomID, connID)
	}

	if _, ok := m.rooms[roomID]; !ok {
		m.rooms[roomID] = make(map[string]*websocket.Conn)
	}
	if _, ok := m.rosters[roomID]; !ok {
		m.rosters[roomID] = make(map[string]models.RoomUser)
	}
	m.rooms[roomID][connID] = meta.Conn
	meta.RoomID = roomID
	m.connMeta[connID] = meta

	now := time.Now().UnixMilli()
	entry, known := m.rosters[roomID][meta.UserID]
	if !known {
		entry = models.RoomUser{ID: meta.UserID, Name: meta.UserName, JoinedAt: now}
	}
	entry.IsOnline = true
	entry.LastSeen = now
	if isCreator {
		entry.IsCreator = true
	}
	m.rosters[roomID][meta.UserID] = entry

	return m.rosterLocked(roomID)
}

// Leave detaches a connection from its room. The roster entry is
// marked offline only when no other connection of the same user
// remains in the room. Returns the room id and the updated roster.
func (m *RoomManager) Leave(connID string) (string, []models.RoomUser) {
	m.mu.Lock()
	defer m.mu.Unlock()

	meta, ok := m.connMeta[connID]
	if !ok || meta.RoomID == "" {
		return "", nil
	}
	roomID := meta.RoomID
	m.leaveLocked(roomID, connID)
	meta.RoomID = ""
	m.connMeta[connID] = meta
	return roomID, m.rosterLocked(roomID)
}

// Unregister removes a connection entirely, marking the user offline
// in its room when this was the user's last connection there. Returns
// the room id and roster for the leave broadcast, if any.
func (m *RoomManager) Unregister(connID string) (string, []models.RoomUser) {
	m.mu.Lock()
	defer m.mu.Unlock()

	meta, ok := m.connMeta[connID]
	if !ok {
		return "", nil
	}
	roomID := meta.RoomID
	if roomID != "" {
		m.leaveLocked(roomID, connID)
	}
	delete(m.connMeta, connID)
	delete(m.writeLocks, connID)
	if roomID == "" {
		return "", nil
	}
	return roomID, m.rosterLocked(roomID)
}

// leaveLocked removes the conn from the room and downgrades the roster
// entry to offline when it was the user's last connection in the room.
// Caller holds m.mu.
func (m *RoomManager) leaveLocked(roomID, connID string) {
	conns, ok := m.rooms[roomID]
	if !ok {
		return
	}
	meta := m.connMeta[connID]
	delete(conns, connID)

	stillPresent := false
	for otherID := range conns {
		if m.connMeta[otherID].UserID == meta.UserID {
			stillPresent = true
			break
		}
	}
	if !stillPresent {
		if entry, known := m.rosters[roomID][meta.UserID]; known {
			entry.IsOnline = false
			entry.LastSeen = time.Now().UnixMilli()
			m.rosters[roomID][meta.UserID] = entry
		}
	}
	if len(conns) == 0 {
		delete(m.rooms, roomID)
		delete(m.rosters, roomID)
	}
}

// Roster returns the current roster snapshot for a room.
func (m *RoomManager) Roster(roomID string) []models.RoomUser {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rosterLocked(roomID)
}

func (m *RoomManager) rosterLocked(roomID string) []models.RoomUser {
	roster := m.rosters[roomID]
	out := make([]models.RoomUser, 0, len(roster))
	for _, u := range roster {
		out = append(out, u)
	}
	return out
}

type sendTarget struct {
	conn *websocket.Conn
	lock *sync.Mutex
}

// Broadcast sends a frame to every connection in the room except
// excludeConnID (empty string excludes nobody).
func (m *RoomManager) Broadcast(roomID string, frame models.Frame, excludeConnID string) {
	m.mu.RLock()
	var targets []sendTarget
	for id, conn := range m.rooms[roomID] {
		if id == excludeConnID {
			continue
		}
		targets = append(targets, sendTarget{conn: conn, lock: m.writeLocks[id]})
	}
	m.mu.RUnlock()

	for _, t := range targets {
		t.lock.Lock()
		err := t.conn.WriteJSON(frame)
		t.lock.Unlock()
		utils.LogError(err, "Broadcast")
	}
}

// Send writes a frame to a single connection.
func (m *RoomManager) Send(connID string, frame models.Frame) {
	m.mu.RLock()
	meta, ok := m.connMeta[connID]
	lock := m.writeLocks[connID]
	m.mu.RUnlock()
	if !ok || lock == nil {
		return
	}
	lock.Lock()
	err := meta.Conn.WriteJSON(frame)
	lock.Unlock()
	utils.LogError(err, "Send")
}

// BroadcastAll sends a frame to every live connection. Used for the
// server_shutdown notice.
func (m *RoomManager) BroadcastAll(frame models.Frame) {
	m.mu.RLock()
	var targets []sendTarget
	for id, meta := range m.connMeta {
		targets = append(targets, sendTarget{conn: meta.Conn, lock: m.writeLocks[id]})
	}
	m.mu.RUnlock()

	for _, t := range targets {
		t.lock.Lock()
		err := t.conn.WriteJSON(frame)
		t.lock.Unlock()
		utils.LogError(err, "BroadcastAll")
	}
}

// IsUserOnline reports whether any live connection belongs to userID.
func (m *RoomManager) IsUserOnline(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, meta := range m.connMeta {
		if meta.UserID == userID {
			return true
		}
	}
	return false
}

// RoomOf returns the room a connection currently belongs to.
func (m *RoomManager) RoomOf(connID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connMeta[connID].RoomID
}
