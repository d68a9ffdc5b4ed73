package client

import (
	"encoding/json"
	"fmt"

	"github.com/FlyingWhaleisME/where-to-next-sub001/internal/models"
)

// Outbound frame constructors. The codec is stateless; idempotence and
// ordering are the calling component's responsibility.

func joinRoomFrame(intent joinIntent) models.Frame {
	return models.Frame{
		Type:          models.FrameJoinRoom,
		RoomID:        intent.RoomID,
		UserID:        intent.UserID,
		UserName:      intent.UserName,
		IsRoomCreator: intent.IsCreator,
	}
}

func chatMessageFrame(roomID, tripID, text string) models.Frame {
	return models.Frame{
		Type:   models.FrameChatMessage,
		RoomID: roomID,
		TripID: tripID,
		Text:   text,
	}
}

func userTypingFrame(tripID string, isTyping bool) models.Frame {
	return models.Frame{Type: models.FrameUserTyping, TripID: tripID, IsTyping: isTyping}
}

func requestSyncFrame(tripID string) models.Frame {
	return models.Frame{Type: models.FrameRequestSync, TripID: tripID}
}

func pingFrame() models.Frame {
	return models.Frame{Type: models.FramePing}
}

func updatePreferencesFrame(tripID string, data json.RawMessage) models.Frame {
	return models.Frame{Type: models.FrameUpdatePreferences, TripID: tripID, Data: data}
}

func updateTripTracingFrame(tripID string, data json.RawMessage) models.Frame {
	return models.Frame{Type: models.FrameUpdateTripTracing, TripID: tripID, Data: data}
}

func leaveTripFrame(tripID string) models.Frame {
	return models.Frame{Type: models.FrameLeaveTrip, TripID: tripID}
}

func joinTripFrame(tripID string) models.Frame {
	return models.Frame{Type: models.FrameJoinTrip, TripID: tripID}
}

// decodeFrame parses an inbound frame and checks the discriminator is
// present. Unknown discriminators are the dispatcher's problem, not
// the codec's.
func decodeFrame(data []byte) (models.Frame, error) {
	var f models.Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return models.Frame{}, fmt.Errorf("unparseable frame: %w", err)
	}
	if f.Type == "" {
		return models.Frame{}, fmt.Errorf("frame missing type discriminator")
	}
	return f, nil
}
