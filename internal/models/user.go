package models

import "time"

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	UserID   int    `json:"user_id"`
}

// TripRoom is a collaboration session reachable by its share code.
type TripRoom struct {
	ID        string    `json:"id"`
	TripID    string    `json:"trip_id"`
	ShareCode string    `json:"share_code"`
	CreatorID string    `json:"creator_id"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateRoomRequest struct {
	TripID string `json:"trip_id"`
}

type RoomResponse struct {
	RoomID    string `json:"room_id"`
	ShareCode string `json:"share_code"`
	IsNew     bool   `json:"is_new"`
}
