package services

import (
	"context"
	"errors"
	"strings"

	"github.com/FlyingWhaleisME/where-to-next-sub001/internal/db"
	"github.com/FlyingWhaleisME/where-to-next-sub001/internal/models"

	"github.com/google/uuid"
)

var ErrRoomNotFound = errors.New("room not found")

// TripService persists trip rooms and their chat messages.
type TripService struct{}

func NewTripService() *TripService {
	return &TripService{}
}

// CreateRoom creates a collaboration room for a trip, or returns the
// existing one. The share code is the room's public handle.
func (s *TripService) CreateRoom(ctx context.Context, tripID, creatorID string) (*models.RoomResponse, error) {
	var roomID, shareCode string
	query := `SELECT id, share_code FROM trip_rooms WHERE trip_id = $1 LIMIT 1`
	err := db.Pool.QueryRow(ctx, query, tripID).Scan(&roomID, &shareCode)
	if err == nil {
		return &models.RoomResponse{RoomID: roomID, ShareCode: shareCode, IsNew: false}, nil
	}

	roomID = uuid.New().String()
	shareCode = newShareCode()
	query = `INSERT INTO trip_rooms (id, trip_id, share_code, creator_id) VALUES ($1, $2, $3, $4)`
	if _, err := db.Pool.Exec(ctx, query, roomID, tripID, shareCode, creatorID); err != nil {
		return nil, err
	}
	return &models.RoomResponse{RoomID: roomID, ShareCode: shareCode, IsNew: true}, nil
}

// RoomByShareCode resolves a share code to its room.
func (s *TripService) RoomByShareCode(ctx context.Context, shareCode string) (*models.TripRoom, error) {
	var room models.TripRoom
	query := `SELECT id, trip_id, share_code, creator_id, created_at FROM trip_rooms WHERE UPPER(share_code) = UPPER($1)`
	err := db.Pool.QueryRow(ctx, query, strings.TrimSpace(shareCode)).
		Scan(&room.ID, &room.TripID, &room.ShareCode, &room.CreatorID, &room.CreatedAt)
	if err != nil {
		return nil, ErrRoomNotFound
	}
	return &room, nil
}

// Room loads a room by id.
func (s *TripService) Room(ctx context.Context, roomID string) (*models.TripRoom, error) {
	var room models.TripRoom
	query := `SELECT id, trip_id, share_code, creator_id, created_at FROM trip_rooms WHERE id = $1`
	err := db.Pool.QueryRow(ctx, query, roomID).
		Scan(&room.ID, &room.TripID, &room.ShareCode, &room.CreatorID, &room.CreatedAt)
	if err != nil {
		return nil, ErrRoomNotFound
	}
	return &room, nil
}

// SaveMessage persists a chat message. The message id is assigned
// here; clients treat it as the ledger's dedup key.
func (s *TripService) SaveMessage(ctx context.Context, roomID string, msg *models.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	query := `
		INSERT INTO trip_messages (id, room_id, sender_id, sender_name, sender_email, body)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING (extract(epoch from created_at) * 1000)::bigint
	`
	return db.Pool.QueryRow(ctx, query,
		msg.ID, roomID, msg.Sender.ID, msg.Sender.Name, msg.Sender.Email, msg.Text,
	).Scan(&msg.Timestamp)
}

// RecentMessages returns the newest limit messages, oldest first, for
// the chat_history backfill frame.
func (s *TripService) RecentMessages(ctx context.Context, roomID string, limit int) ([]models.ChatMessage, error) {
	query := `
		SELECT id, sender_id, sender_name, sender_email, body,
		       (extract(epoch from created_at) * 1000)::bigint
		FROM trip_messages WHERE room_id = $1
		ORDER BY created_at DESC LIMIT $2
	`
	rows, err := db.Pool.Query(ctx, query, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.Sender.ID, &m.Sender.Name, &m.Sender.Email, &m.Text, &m.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to oldest-first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// DeleteRoom removes a room and its messages. Only the creator may do
// this; the caller enforces that.
func (s *TripService) DeleteRoom(ctx context.Context, roomID string) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM trip_messages WHERE room_id = $1`, roomID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM trip_rooms WHERE id = $1`, roomID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// newShareCode builds a short human-enterable room handle.
func newShareCode() string {
	id := strings.ToUpper(uuid.New().String())
	return "room-" + strings.ReplaceAll(id, "-", "")[:6]
}
