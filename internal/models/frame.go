package models

import "encoding/json"

// Frame type discriminators, client to server.
const (
	FrameJoinRoom          = "join_room"
	FrameChatMessage       = "chat_message"
	FrameUserTyping        = "user_typing"
	FrameRequestSync       = "request_sync"
	FramePing              = "ping"
	FrameUpdatePreferences = "update_preferences"
	FrameUpdateTripTracing = "update_trip_tracing"
	FrameLeaveTrip         = "leave_trip"
	FrameJoinTrip          = "join_trip"
)

// Frame type discriminators, server to client.
const (
	FrameConnectionEstablished = "connection_established"
	FrameUserJoined            = "user_joined"
	FrameUserLeft              = "user_left"
	FrameRoomDeleted           = "room_deleted"
	FrameChatHistory           = "chat_history"
	FrameRoomUsers             = "room_users"
	FrameRoomJoined            = "room_joined"
	FramePreferencesUpdated    = "preferences_updated"
	FrameTripTracingUpdated    = "trip_tracing_updated"
	FrameTripState             = "trip_state"
	FrameSyncData              = "sync_data"
	FrameError                 = "error"
	FrameServerShutdown        = "server_shutdown"
	FramePong                  = "pong"
)

// Frame is the wire format for every websocket message in both
// directions. Type selects which of the optional fields are set.
type Frame struct {
	Type string `json:"type"`

	RoomID        string `json:"roomId,omitempty"`
	TripID        string `json:"tripId,omitempty"`
	UserID        string `json:"userId,omitempty"`
	UserName      string `json:"userName,omitempty"`
	IsRoomCreator bool   `json:"isRoomCreator,omitempty"`
	IsTyping      bool   `json:"isTyping,omitempty"`
	Text          string `json:"text,omitempty"`

	Message  *ChatMessage  `json:"message,omitempty"`
	Messages []ChatMessage `json:"messages,omitempty"`
	User     *RoomUser     `json:"user,omitempty"`
	Users    []RoomUser    `json:"users,omitempty"`

	// Preferences, tracing and sync payloads are relayed opaquely;
	// the collaboration layer never inspects them.
	Data json.RawMessage `json:"data,omitempty"`

	// ErrorMessage carries the reason for error and room_deleted
	// frames.
	ErrorMessage string `json:"errorMessage,omitempty"`

	Timestamp int64 `json:"timestamp,omitempty"`
}

// Author identifies who sent a chat message. ID "local" marks an
// optimistic offline echo that the server never confirmed.
type Author struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// ChatMessage is one entry in a room's chat ledger. Immutable once
// created; Timestamp is unix milliseconds.
type ChatMessage struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Sender    Author `json:"sender"`
	Timestamp int64  `json:"timestamp"`
}

// RoomUser is one roster entry. Entries are keyed by ID and survive
// user_left (marked offline, never removed) until the next authoritative
// room_users frame replaces the roster wholesale.
type RoomUser struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsOnline  bool   `json:"isOnline"`
	IsCreator bool   `json:"isCreator"`
	JoinedAt  int64  `json:"joinedAt,omitempty"`
	LastSeen  int64  `json:"lastSeen,omitempty"`
}
