package client

import (
	"encoding/json"
	"sync"

	"github.com/FlyingWhaleisME/where-to-next-sub001/internal/models"
)

// Callbacks holds one subscriber slot per event kind. UI layers pass a
// partially filled struct to RegisterCallbacks; nil slots are left
// untouched so components can subscribe independently without
// clobbering each other.
type Callbacks struct {
	OnConnectionChange   func(connected bool)
	OnError              func(message string)
	OnChatMessage        func(message models.ChatMessage)
	OnChatHistory        func(messages []models.ChatMessage)
	OnUserJoined         func(user models.RoomUser)
	OnUserLeft           func(userID string)
	OnRoomUsers          func(users []models.RoomUser)
	OnRoomJoined         func(roomID string)
	OnRoomDeleted        func(roomID, reason string)
	OnUserTyping         func(userID string, isTyping bool)
	OnPreferencesUpdated func(data json.RawMessage)
	OnTripTracingUpdated func(data json.RawMessage)
	OnTripState          func(data json.RawMessage)
	OnSyncData           func(data json.RawMessage)
}

// callbackRegistry dispatches events to at most one callback per kind.
// It never buffers: an event fired with no registered callback is
// dropped.
type callbackRegistry struct {
	mu sync.RWMutex
	cb Callbacks
}

// merge installs the non-nil slots of next over the current set. Last
// registration wins per slot.
func (r *callbackRegistry) merge(next Callbacks) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if next.OnConnectionChange != nil {
		r.cb.OnConnectionChange = next.OnConnectionChange
	}
	if next.OnError != nil {
		r.cb.OnError = next.OnError
	}
	if next.OnChatMessage != nil {
		r.cb.OnChatMessage = next.OnChatMessage
	}
	if next.OnChatHistory != nil {
		r.cb.OnChatHistory = next.OnChatHistory
	}
	if next.OnUserJoined != nil {
		r.cb.OnUserJoined = next.OnUserJoined
	}
	if next.OnUserLeft != nil {
		r.cb.OnUserLeft = next.OnUserLeft
	}
	if next.OnRoomUsers != nil {
		r.cb.OnRoomUsers = next.OnRoomUsers
	}
	if next.OnRoomJoined != nil {
		r.cb.OnRoomJoined = next.OnRoomJoined
	}
	if next.OnRoomDeleted != nil {
		r.cb.OnRoomDeleted = next.OnRoomDeleted
	}
	if next.OnUserTyping != nil {
		r.cb.OnUserTyping = next.OnUserTyping
	}
	if next.OnPreferencesUpdated != nil {
		r.cb.OnPreferencesUpdated = next.OnPreferencesUpdated
	}
	if next.OnTripTracingUpdated != nil {
		r.cb.OnTripTracingUpdated = next.OnTripTracingUpdated
	}
	if next.OnTripState != nil {
		r.cb.OnTripState = next.OnTripState
	}
	if next.OnSyncData != nil {
		r.cb.OnSyncData = next.OnSyncData
	}
}

func (r *callbackRegistry) snapshot() Callbacks {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cb
}

func (r *callbackRegistry) emitConnectionChange(connected bool) {
	if cb := r.snapshot().OnConnectionChange; cb != nil {
		cb(connected)
	}
}

func (r *callbackRegistry) emitError(message string) {
	if cb := r.snapshot().OnError; cb != nil {
		cb(message)
	}
}

func (r *callbackRegistry) emitChatMessage(m models.ChatMessage) {
	if cb := r.snapshot().OnChatMessage; cb != nil {
		cb(m)
	}
}

func (r *callbackRegistry) emitChatHistory(ms []models.ChatMessage) {
	if cb := r.snapshot().OnChatHistory; cb != nil {
		cb(ms)
	}
}

func (r *callbackRegistry) emitUserJoined(u models.RoomUser) {
	if cb := r.snapshot().OnUserJoined; cb != nil {
		cb(u)
	}
}

func (r *callbackRegistry) emitUserLeft(userID string) {
	if cb := r.snapshot().OnUserLeft; cb != nil {
		cb(userID)
	}
}

func (r *callbackRegistry) emitRoomUsers(us []models.RoomUser) {
	if cb := r.snapshot().OnRoomUsers; cb != nil {
		cb(us)
	}
}

func (r *callbackRegistry) emitRoomJoined(roomID string) {
	if cb := r.snapshot().OnRoomJoined; cb != nil {
		cb(roomID)
	}
}

func (r *callbackRegistry) emitRoomDeleted(roomID, reason string) {
	if cb := r.snapshot().OnRoomDeleted; cb != nil {
		cb(roomID, reason)
	}
}

func (r *callbackRegistry) emitUserTyping(userID string, isTyping bool) {
	if cb := r.snapshot().OnUserTyping; cb != nil {
		cb(userID, isTyping)
	}
}

func (r *callbackRegistry) emitPreferencesUpdated(data json.RawMessage) {
	if cb := r.snapshot().OnPreferencesUpdated; cb != nil {
		cb(data)
	}
}

func (r *callbackRegistry) emitTripTracingUpdated(data json.RawMessage) {
	if cb := r.snapshot().OnTripTracingUpdated; cb != nil {
		cb(data)
	}
}

func (r *callbackRegistry) emitTripState(data json.RawMessage) {
	if cb := r.snapshot().OnTripState; cb != nil {
		cb(data)
	}
}

func (r *callbackRegistry) emitSyncData(data json.RawMessage) {
	if cb := r.snapshot().OnSyncData; cb != nil {
		cb(data)
	}
}
