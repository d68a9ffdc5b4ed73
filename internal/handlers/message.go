package handlers

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/FlyingWhaleisME/where-to-next-sub001/internal/models"
	"github.com/FlyingWhaleisME/where-to-next-sub001/internal/services"
	"github.com/FlyingWhaleisME/where-to-next-sub001/internal/utils"
)

const historyBackfillLimit = 50

// HandleFrame routes one inbound client frame by its discriminator.
// Unknown discriminators are logged and dropped.
func HandleFrame(connID, userID, userName string, msg []byte, tripService *services.TripService) {
	var frame models.Frame
	if err := utils.SafeJSONParse(msg, &frame); err != nil {
		utils.LogError(err, "Frame parse")
		return
	}

	switch frame.Type {
	case models.FrameJoinRoom:
		handleJoinRoom(connID, userID, userName, &frame, tripService)
	case models.FrameChatMessage:
		handleChatMessage(connID, userID, userName, &frame, tripService)
	case models.FrameUserTyping:
		handleTyping(connID, userID, &frame)
	case models.FrameRequestSync:
		handleRequestSync(connID, &frame, tripService)
	case models.FramePing:
		Manager.Send(connID, models.Frame{Type: models.FramePong, Timestamp: time.Now().UnixMilli()})
	case models.FrameUpdatePreferences:
		relayUpdate(connID, &frame, models.FramePreferencesUpdated)
	case models.FrameUpdateTripTracing:
		relayUpdate(connID, &frame, models.FrameTripTracingUpdated)
	case models.FrameJoinTrip:
		// Trip-level subscription rides on the room membership; ack
		// with the current trip state so late joiners catch up.
		Manager.Send(connID, models.Frame{Type: models.FrameTripState, TripID: frame.TripID})
	case models.FrameLeaveTrip:
		handleLeaveTrip(connID, userID)
	default:
		log.Printf("Unknown frame type: %s", frame.Type)
	}
}

func handleJoinRoom(connID, userID, userName string, frame *models.Frame, tripService *services.TripService) {
	if frame.RoomID == "" {
		SendError(connID, "join_room requires roomId")
		return
	}
	if frame.UserName != "" {
		userName = frame.UserName
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	room, err := tripService.Room(ctx, frame.RoomID)
	if err != nil {
		// Share codes double as the join handle.
		room, err = tripService.RoomByShareCode(ctx, frame.RoomID)
	}
	if err != nil {
		SendError(connID, "room not found: "+frame.RoomID)
		return
	}

	isCreator := frame.IsRoomCreator || room.CreatorID == userID
	roster := Manager.Join(room.ID, connID, isCreator)

	Manager.Send(connID, models.Frame{
		Type:   models.FrameRoomJoined,
		RoomID: room.ID,
		TripID: room.TripID,
	})

	// History backfill goes only to the joiner; everyone gets the
	// authoritative roster.
	if messages, err := tripService.RecentMessages(ctx, room.ID, historyBackfillLimit); err == nil {
		Manager.Send(connID, models.Frame{Type: models.FrameChatHistory, Messages: messages})
	} else {
		utils.LogError(err, "RecentMessages")
	}

	joined := models.RoomUser{
		ID:        userID,
		Name:      userName,
		IsOnline:  true,
		IsCreator: isCreator,
		JoinedAt:  time.Now().UnixMilli(),
	}
	Manager.Broadcast(room.ID, models.Frame{Type: models.FrameUserJoined, User: &joined}, connID)
	Manager.Broadcast(room.ID, models.Frame{Type: models.FrameRoomUsers, Users: roster}, "")
}

func handleChatMessage(connID, userID, userName string, frame *models.Frame, tripService *services.TripService) {
	roomID := Manager.RoomOf(connID)
	if roomID == "" {
		SendError(connID, "not in a room")
		return
	}
	text := strings.TrimSpace(frame.Text)
	if text == "" {
		SendError(connID, "message text is empty")
		return
	}

	message := models.ChatMessage{
		Text:   text,
		Sender: models.Author{ID: userID, Name: userName},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tripService.SaveMessage(ctx, roomID, &message); err != nil {
		utils.LogError(err, "SaveMessage")
		SendError(connID, "message not saved")
		return
	}

	// Sender included: the echo carries the server-assigned id, which
	// is what confirms the message client-side.
	Manager.Broadcast(roomID, models.Frame{Type: models.FrameChatMessage, Message: &message}, "")
}

func handleTyping(connID, userID string, frame *models.Frame) {
	roomID := Manager.RoomOf(connID)
	if roomID == "" {
		return
	}
	Manager.Broadcast(roomID, models.Frame{
		Type:     models.FrameUserTyping,
		UserID:   userID,
		IsTyping: frame.IsTyping,
	}, connID)
}

func handleRequestSync(connID string, frame *models.Frame, tripService *services.TripService) {
	roomID := Manager.RoomOf(connID)
	if roomID == "" {
		SendError(connID, "not in a room")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	room, err := tripService.Room(ctx, roomID)
	if err != nil {
		utils.LogError(err, "RequestSync")
		return
	}
	messages, err := tripService.RecentMessages(ctx, roomID, historyBackfillLimit)
	if err != nil {
		utils.LogError(err, "RequestSync history")
		messages = nil
	}
	Manager.Send(connID, models.Frame{
		Type:     models.FrameSyncData,
		TripID:   room.TripID,
		RoomID:   room.ID,
		Messages: messages,
		Users:    Manager.Roster(roomID),
	})
}

// relayUpdate rebroadcasts an opaque update payload to the rest of the
// room under the corresponding inbound discriminator.
func relayUpdate(connID string, frame *models.Frame, outType string) {
	roomID := Manager.RoomOf(connID)
	if roomID == "" {
		SendError(connID, "not in a room")
		return
	}
	Manager.Broadcast(roomID, models.Frame{
		Type:   outType,
		TripID: frame.TripID,
		Data:   frame.Data,
	}, connID)
}

func handleLeaveTrip(connID, userID string) {
	roomID, roster := Manager.Leave(connID)
	if roomID == "" {
		return
	}
	Manager.Broadcast(roomID, models.Frame{Type: models.FrameUserLeft, UserID: userID}, "")
	Manager.Broadcast(roomID, models.Frame{Type: models.FrameRoomUsers, Users: roster}, "")
}
