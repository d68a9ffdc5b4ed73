package client

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FlyingWhaleisME/where-to-next-sub001/internal/models"
)

func TestConnectFailsFastOnExpiredCredential(t *testing.T) {
	rig := newTestRig(t)
	rig.tokens.SetToken(testToken(t, -time.Hour, rig.clk.Now()))

	err := rig.client.Connect()
	require.ErrorIs(t, err, ErrCredentialExpired)

	rig.clk.Advance(time.Second)
	assert.Equal(t, 0, rig.dialer.dialCount(), "no socket may be opened with an expired credential")
	assert.Contains(t, strings.Join(rig.errs.all(), "\n"), ErrCredentialExpired.Error())
	assert.Equal(t, StateIdle, rig.client.State())
}

func TestConnectFailsFastOnMissingOrMalformedCredential(t *testing.T) {
	rig := newTestRig(t)

	rig.tokens.SetToken("")
	require.ErrorIs(t, rig.client.Connect(), ErrCredentialMissing)

	rig.tokens.SetToken("not-a-jwt")
	require.ErrorIs(t, rig.client.Connect(), ErrCredentialMalformed)

	rig.clk.Advance(time.Second)
	assert.Equal(t, 0, rig.dialer.dialCount())
}

func TestConnectIsIdempotentAndDebounced(t *testing.T) {
	rig := newTestRig(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, rig.client.Connect())
	}
	require.Equal(t, StateConnecting, rig.client.State())

	rig.clk.Advance(150 * time.Millisecond)
	assert.Equal(t, 1, rig.dialer.dialCount(), "a burst of Connect calls coalesces into one dial")
	assert.Equal(t, StateOpen, rig.client.State())

	// Connect while open stays a no-op.
	require.NoError(t, rig.client.Connect())
	rig.clk.Advance(time.Second)
	assert.Equal(t, 1, rig.dialer.dialCount())
}

func TestJoinRoomFlushesPendingIntentOnOpen(t *testing.T) {
	rig := newTestRig(t)

	require.NoError(t, rig.client.JoinRoom("room-TOKYO1", "u7", "Mika", true))
	assert.Equal(t, 0, rig.dialer.dialCount(), "join before open must park, not dial synchronously")

	rig.clk.Advance(150 * time.Millisecond)
	conn := rig.dialer.lastConn()
	require.NotNil(t, conn)

	join := conn.expectWrite(t, models.FrameJoinRoom)
	assert.Equal(t, "room-TOKYO1", join.RoomID)
	assert.Equal(t, "u7", join.UserID)
	assert.Equal(t, "Mika", join.UserName)
	assert.True(t, join.IsRoomCreator)
	assert.Equal(t, "room-TOKYO1", rig.client.CurrentRoom())
}

func TestJoinSameRoomTwiceSendsNoDuplicateFrame(t *testing.T) {
	rig := newTestRig(t)
	conn := rig.join(t, "room-TOKYO1")

	require.NoError(t, rig.client.JoinRoom("room-TOKYO1", "u7", "Mika", true))
	conn.expectNoWrite(t)
}

func TestJoinDifferentRoomSupersedesPendingIntent(t *testing.T) {
	rig := newTestRig(t)

	require.NoError(t, rig.client.JoinRoom("room-TOKYO1", "u7", "Mika", false))
	require.NoError(t, rig.client.JoinRoom("room-KYOTO9", "u7", "Mika", false))

	rig.clk.Advance(150 * time.Millisecond)
	conn := rig.dialer.lastConn()
	require.NotNil(t, conn)

	join := conn.expectWrite(t, models.FrameJoinRoom)
	assert.Equal(t, "room-KYOTO9", join.RoomID, "the later intent wins")
	conn.expectNoWrite(t)
	assert.Contains(t, strings.Join(rig.errs.all(), "\n"), "superseded")
}

func TestLedgerDedupAcrossHistoryAndLiveFrames(t *testing.T) {
	rig := newTestRig(t)
	conn := rig.join(t, "room-TOKYO1")

	history := []models.ChatMessage{
		{ID: "m1", Text: "first", Sender: models.Author{ID: "u1", Name: "Ana"}},
		{ID: "m2", Text: "second", Sender: models.Author{ID: "u2", Name: "Bo"}},
	}
	conn.deliver(t, models.Frame{Type: models.FrameChatHistory, Messages: history})

	// The same id redelivered after the backfill must be absorbed.
	conn.deliver(t, models.Frame{Type: models.FrameChatMessage, Message: &history[0]})
	rig.sync(t, conn)

	messages := rig.client.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "m1", messages[0].ID)
	assert.Equal(t, "m2", messages[1].ID)
}

func TestChatHistoryReplacesLedgerWholesale(t *testing.T) {
	rig := newTestRig(t)
	conn := rig.join(t, "room-TOKYO1")

	conn.deliver(t, models.Frame{Type: models.FrameChatMessage, Message: &models.ChatMessage{ID: "a", Text: "a"}})
	conn.deliver(t, models.Frame{Type: models.FrameChatMessage, Message: &models.ChatMessage{ID: "b", Text: "b"}})
	conn.deliver(t, models.Frame{Type: models.FrameChatHistory, Messages: []models.ChatMessage{
		{ID: "x", Text: "x"},
		{ID: "y", Text: "y"},
	}})
	rig.sync(t, conn)

	messages := rig.client.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "x", messages[0].ID)
	assert.Equal(t, "y", messages[1].ID)
}

func TestRoomUsersReplacesRosterWholesale(t *testing.T) {
	rig := newTestRig(t)
	conn := rig.join(t, "room-TOKYO1")

	conn.deliver(t, models.Frame{Type: models.FrameRoomUsers, Users: []models.RoomUser{
		{ID: "u1", Name: "Ana", IsOnline: true},
		{ID: "u2", Name: "Bo", IsOnline: true},
	}})
	conn.deliver(t, models.Frame{Type: models.FrameRoomUsers, Users: []models.RoomUser{
		{ID: "u2", Name: "Bo", IsOnline: true},
	}})
	rig.sync(t, conn)

	users := rig.client.Users()
	require.Len(t, users, 1)
	assert.Equal(t, "u2", users[0].ID, "a user absent from the new roster must not survive")
}

func TestUserLeftMarksOfflineButRetainsEntry(t *testing.T) {
	rig := newTestRig(t)
	conn := rig.join(t, "room-TOKYO1")

	conn.deliver(t, models.Frame{Type: models.FrameUserJoined, User: &models.RoomUser{ID: "u1", Name: "Ana", IsOnline: true}})
	conn.deliver(t, models.Frame{Type: models.FrameUserLeft, UserID: "u1"})
	rig.sync(t, conn)

	users := rig.client.Users()
	require.Len(t, users, 1)
	assert.Equal(t, "u1", users[0].ID)
	assert.False(t, users[0].IsOnline)
}

func TestDisconnectIsAHardReset(t *testing.T) {
	rig := newTestRig(t)
	conn := rig.join(t, "room-TOKYO1")

	conn.deliver(t, models.Frame{Type: models.FrameChatMessage, Message: &models.ChatMessage{ID: "m1", Text: "hi"}})
	conn.deliver(t, models.Frame{Type: models.FrameUserJoined, User: &models.RoomUser{ID: "u1", Name: "Ana", IsOnline: true}})
	conn.deliver(t, models.Frame{Type: models.FrameUserTyping, UserID: "u1", IsTyping: true})
	rig.sync(t, conn)
	require.NotEmpty(t, rig.client.Messages())

	rig.client.Disconnect()

	assert.Empty(t, rig.client.Messages())
	assert.Empty(t, rig.client.Users())
	assert.Empty(t, rig.client.TypingUsers())
	assert.Equal(t, "", rig.client.CurrentRoom())
	assert.Equal(t, StateIdle, rig.client.State())

	// No timer may fire a late frame after the reset.
	dials := rig.dialer.dialCount()
	rig.clk.Advance(5 * time.Minute)
	assert.Equal(t, dials, rig.dialer.dialCount())
	assert.Zero(t, rig.clk.PendingTimers())
}

func TestHeartbeatPingsEveryInterval(t *testing.T) {
	rig := newTestRig(t)
	conn := rig.join(t, "room-TOKYO1")

	rig.clk.Advance(60 * time.Second)
	conn.expectWrite(t, models.FramePing)
	rig.clk.Advance(60 * time.Second)
	conn.expectWrite(t, models.FramePing)
}

func TestUnexpectedCloseReconnectsAndRejoins(t *testing.T) {
	rig := newTestRig(t)
	conn := rig.join(t, "room-TOKYO1")

	conn.drop()
	require.Eventually(t, func() bool { return rig.client.ReconnectAttempts() == 1 },
		2*time.Second, 5*time.Millisecond, "first backoff attempt scheduled")

	rig.clk.Advance(time.Second)
	require.Equal(t, 2, rig.dialer.dialCount())

	next := rig.dialer.lastConn()
	require.NotNil(t, next)
	require.NotSame(t, conn, next)
	join := next.expectWrite(t, models.FrameJoinRoom)
	assert.Equal(t, "room-TOKYO1", join.RoomID, "reconnect re-queues the room join")
	assert.Equal(t, 0, rig.client.ReconnectAttempts(), "counter resets on successful open")
}

func TestReconnectAttemptsAreCapped(t *testing.T) {
	rig := newTestRig(t)
	conn := rig.join(t, "room-TOKYO1")
	rig.dialer.failAll = true

	conn.drop()
	require.Eventually(t, func() bool { return rig.client.ReconnectAttempts() == 1 },
		2*time.Second, 5*time.Millisecond)

	// Backoff doubles per attempt: 1s, 2s, 4s, 8s, 16s.
	for _, delay := range []time.Duration{1, 2, 4, 8, 16} {
		rig.clk.Advance(delay * time.Second)
	}
	dials := rig.dialer.dialCount()
	assert.Equal(t, 1+5, dials, "one initial dial plus five capped retries")

	// The sixth attempt must never be scheduled.
	rig.clk.Advance(10 * time.Minute)
	assert.Equal(t, dials, rig.dialer.dialCount())
	assert.Contains(t, strings.Join(rig.errs.all(), "\n"), "exhausted")
}

func TestSendChatMessageValidation(t *testing.T) {
	rig := newTestRig(t)

	require.ErrorIs(t, rig.client.SendChatMessage("hello"), ErrNoActiveRoom)

	conn := rig.join(t, "room-TOKYO1")
	require.ErrorIs(t, rig.client.SendChatMessage("   "), ErrEmptyMessage)
	conn.expectNoWrite(t)

	require.NoError(t, rig.client.SendChatMessage("  hello  "))
	frame := conn.expectWrite(t, models.FrameChatMessage)
	assert.Equal(t, "hello", frame.Text)
	assert.Equal(t, "room-TOKYO1", frame.RoomID)
}

func TestOfflineChatMessageGetsLocalEcho(t *testing.T) {
	rig := newTestRig(t)
	conn := rig.join(t, "room-TOKYO1")

	conn.drop()
	require.Eventually(t, func() bool { return rig.client.State() == StateClosed },
		2*time.Second, 5*time.Millisecond)

	require.NoError(t, rig.client.SendChatMessage("offline note"))
	messages := rig.client.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, LocalEchoAuthorID, messages[0].Sender.ID)
	assert.Equal(t, "offline note", messages[0].Text)
	assert.NotEmpty(t, messages[0].ID)
}

func TestTypingIndicatorSelfExpires(t *testing.T) {
	rig := newTestRig(t)
	conn := rig.join(t, "room-TOKYO1")

	require.NoError(t, rig.client.SetTyping(true))
	frame := conn.expectWrite(t, models.FrameUserTyping)
	assert.True(t, frame.IsTyping)

	rig.clk.Advance(3 * time.Second)
	frame = conn.expectWrite(t, models.FrameUserTyping)
	assert.False(t, frame.IsTyping, "a stuck typing indicator clears itself")
}

func TestTypingStopCancelsExpiry(t *testing.T) {
	rig := newTestRig(t)
	conn := rig.join(t, "room-TOKYO1")

	require.NoError(t, rig.client.SetTyping(true))
	conn.expectWrite(t, models.FrameUserTyping)
	require.NoError(t, rig.client.SetTyping(false))
	conn.expectWrite(t, models.FrameUserTyping)

	// Short of the heartbeat interval, so only a leaked expiry timer
	// could write here.
	rig.clk.Advance(30 * time.Second)
	conn.expectNoWrite(t)
}

func TestLeaveTripDestroysRoomState(t *testing.T) {
	rig := newTestRig(t)
	conn := rig.join(t, "room-TOKYO1")

	conn.deliver(t, models.Frame{Type: models.FrameChatMessage, Message: &models.ChatMessage{ID: "m1", Text: "hi"}})
	rig.sync(t, conn)

	require.NoError(t, rig.client.LeaveTrip())
	conn.expectWrite(t, models.FrameLeaveTrip)

	assert.Empty(t, rig.client.Messages())
	assert.Equal(t, "", rig.client.CurrentRoom())
	_, cached := rig.cache.Load()
	assert.False(t, cached)
	require.ErrorIs(t, rig.client.LeaveTrip(), ErrNoActiveRoom)
}

func TestRejoinFromSessionCacheOnEstablished(t *testing.T) {
	rig := newTestRig(t)
	rig.cache.Store(RoomIdentity{RoomID: "room-TOKYO1", UserID: "u7", UserName: "Mika", CreatorID: "u7"})

	require.NoError(t, rig.client.Connect())
	rig.clk.Advance(150 * time.Millisecond)
	conn := rig.dialer.lastConn()
	require.NotNil(t, conn)

	conn.deliver(t, models.Frame{Type: models.FrameConnectionEstablished})
	join := conn.expectWrite(t, models.FrameJoinRoom)
	assert.Equal(t, "room-TOKYO1", join.RoomID)
	assert.Equal(t, "u7", join.UserID)
	assert.True(t, join.IsRoomCreator, "cached creator id matching the user restores creator status")
}

func TestForceReconnectResetsCounterAndRedials(t *testing.T) {
	rig := newTestRig(t)
	conn := rig.join(t, "room-TOKYO1")
	rig.dialer.failAll = true

	conn.drop()
	require.Eventually(t, func() bool { return rig.client.ReconnectAttempts() == 1 },
		2*time.Second, 5*time.Millisecond)
	rig.clk.Advance(time.Second)
	require.Eventually(t, func() bool { return rig.client.ReconnectAttempts() == 2 },
		2*time.Second, 5*time.Millisecond)

	rig.dialer.failAll = false
	rig.client.ForceReconnect(true)
	require.Equal(t, 0, rig.client.ReconnectAttempts())

	rig.clk.Advance(time.Second)
	next := rig.dialer.lastConn()
	require.NotNil(t, next)
	join := next.expectWrite(t, models.FrameJoinRoom)
	assert.Equal(t, "room-TOKYO1", join.RoomID)
	assert.Equal(t, StateOpen, rig.client.State())
}

func TestRoomDeletedClearsSession(t *testing.T) {
	rig := newTestRig(t)
	conn := rig.join(t, "room-TOKYO1")

	deleted := make(chan string, 1)
	rig.client.RegisterCallbacks(Callbacks{OnRoomDeleted: func(roomID, reason string) {
		deleted <- roomID
	}})

	conn.deliver(t, models.Frame{Type: models.FrameChatMessage, Message: &models.ChatMessage{ID: "m1", Text: "hi"}})
	conn.deliver(t, models.Frame{Type: models.FrameRoomDeleted, RoomID: "room-TOKYO1", ErrorMessage: "room deleted by creator"})

	select {
	case roomID := <-deleted:
		assert.Equal(t, "room-TOKYO1", roomID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for room_deleted")
	}
	assert.Empty(t, rig.client.Messages())
	assert.Equal(t, "", rig.client.CurrentRoom())
	_, cached := rig.cache.Load()
	assert.False(t, cached, "the deleted room must not be rejoined after a reload")
}

func TestCallbackRegistryMergesPartialUpdates(t *testing.T) {
	rig := newTestRig(t)

	var got []string
	rig.client.RegisterCallbacks(Callbacks{
		OnRoomJoined: func(roomID string) { got = append(got, "first:"+roomID) },
	})
	// A later partial registration must not clobber unrelated slots,
	// but must replace the one it names.
	rig.client.RegisterCallbacks(Callbacks{
		OnRoomJoined: func(roomID string) { got = append(got, "second:"+roomID) },
	})

	rig.client.callbacks.emitRoomJoined("room-TOKYO1")
	rig.client.callbacks.emitError("boom")

	require.Equal(t, []string{"second:room-TOKYO1"}, got)
	assert.Contains(t, rig.errs.all(), "boom", "the error slot from the first registration survives")
}

func TestUnknownFrameTypeIsIgnored(t *testing.T) {
	rig := newTestRig(t)
	conn := rig.join(t, "room-TOKYO1")

	conn.deliver(t, models.Frame{Type: "weather_report"})
	conn.deliver(t, models.Frame{Type: models.FrameChatMessage, Message: &models.ChatMessage{ID: "m1", Text: "still alive"}})
	rig.sync(t, conn)

	assert.Len(t, rig.client.Messages(), 1, "unknown discriminators must not break the read loop")
}
