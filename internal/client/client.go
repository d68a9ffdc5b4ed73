// Package client implements the real-time collaboration core for the
// trip planner: a single duplex connection to the room-based messaging
// backend, with reconnection backoff, room membership tracking, a
// deduplicated chat ledger, and an event-callback surface for UI
// layers.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FlyingWhaleisME/where-to-next-sub001/internal/clock"
	"github.com/FlyingWhaleisME/where-to-next-sub001/internal/models"
)

// ConnState is the lifecycle of the single connection.
type ConnState int

const (
	StateIdle ConnState = iota
	StateConnecting
	StateOpen
	StateClosing
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// LocalEchoAuthorID marks optimistic offline messages so the UI can
// tell them apart from server-confirmed ones.
const LocalEchoAuthorID = "local"

// Config configures a collaboration Client. ServerURL and Tokens are
// required; everything else has a sensible default.
type Config struct {
	ServerURL string
	Tokens    TokenStore

	// Sessions persists the active room identity between processes so
	// a reload can rejoin without a share code. Optional.
	Sessions SessionCache

	Dialer Dialer
	Clock  clock.Clock
	Logger *log.Logger

	MaxReconnectAttempts int           // default 5
	ReconnectBaseDelay   time.Duration // default 1s, doubles per attempt
	HeartbeatInterval    time.Duration // default 60s
	ConnectDebounce      time.Duration // default 100ms
	ForceReconnectDelay  time.Duration // default 250ms
	TypingExpiry         time.Duration // default 3s

	// DisableOfflineEcho makes SendChatMessage fail with
	// ErrConnectionNotOpen instead of appending a locally-tagged
	// optimistic message while the connection is down.
	DisableOfflineEcho bool
}

// Client owns the connection and all collaboration state for one
// process. Construct it once and inject it into UI layers; it is safe
// for concurrent use.
type Client struct {
	cfg    Config
	dialer Dialer
	clk    clock.Clock
	logger *log.Logger

	callbacks callbackRegistry

	mu         sync.Mutex
	state      ConnState
	conn       Conn
	connGen    int
	lastError  string
	attempts   int
	deliberate bool
	tripID     string

	debounceTimer  clock.Timer
	reconnectTimer clock.Timer
	forceTimer     clock.Timer
	typingTimer    clock.Timer
	heartbeat      clock.Ticker
	heartbeatDone  chan struct{}

	writeMu sync.Mutex

	session *roomSession
	ledger  *ledger
}

// New builds a Client. It performs no I/O; the first JoinRoom or
// Connect call dials.
func New(cfg Config) (*Client, error) {
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("client: ServerURL is required")
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("client: TokenStore is required")
	}
	if cfg.Dialer == nil {
		cfg.Dialer = NewDialer()
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.MaxReconnectAttempts == 0 {
		cfg.MaxReconnectAttempts = 5
	}
	if cfg.ReconnectBaseDelay == 0 {
		cfg.ReconnectBaseDelay = time.Second
	}
	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = 60 * time.Second
	}
	if cfg.ConnectDebounce == 0 {
		cfg.ConnectDebounce = 100 * time.Millisecond
	}
	if cfg.ForceReconnectDelay == 0 {
		cfg.ForceReconnectDelay = 250 * time.Millisecond
	}
	if cfg.TypingExpiry == 0 {
		cfg.TypingExpiry = 3 * time.Second
	}
	return &Client{
		cfg:     cfg,
		dialer:  cfg.Dialer,
		clk:     cfg.Clock,
		logger:  cfg.Logger,
		session: newRoomSession(),
		ledger:  newLedger(),
	}, nil
}

// RegisterCallbacks merges the non-nil slots of cb into the active
// callback set. Callers may update only the slots they care about;
// the last registration wins per slot.
func (c *Client) RegisterCallbacks(cb Callbacks) {
	c.callbacks.merge(cb)
}

// Connect brings the connection up. It is a no-op while a connection
// is already open or opening, and bursts of calls inside the debounce
// window coalesce into a single dial. The stored credential is
// validated locally first: a missing, malformed or expired token fails
// fast without any network I/O.
func (c *Client) Connect() error {
	c.mu.Lock()
	if c.state == StateOpen || c.state == StateConnecting {
		c.mu.Unlock()
		return nil
	}
	token := c.cfg.Tokens.Token()
	if err := validateCredential(token, c.clk.Now()); err != nil {
		c.lastError = err.Error()
		c.mu.Unlock()
		c.callbacks.emitError(err.Error())
		return err
	}
	c.state = StateConnecting
	c.deliberate = false
	if c.debounceTimer != nil {
		c.debounceTimer.Stop()
	}
	c.debounceTimer = c.clk.AfterFunc(c.cfg.ConnectDebounce, c.dial)
	c.mu.Unlock()
	return nil
}

// dial performs the actual connection attempt. Runs from the debounce,
// backoff and force-reconnect timers; the StateConnecting check makes
// superseded attempts drop out.
func (c *Client) dial() {
	c.mu.Lock()
	if c.state != StateConnecting {
		c.mu.Unlock()
		return
	}
	token := c.cfg.Tokens.Token()
	if err := validateCredential(token, c.clk.Now()); err != nil {
		c.state = StateClosed
		c.lastError = err.Error()
		c.mu.Unlock()
		c.callbacks.emitError(err.Error())
		return
	}
	endpoint := c.cfg.ServerURL
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	conn, err := c.dialer.Dial(ctx, endpoint, token)
	cancel()

	c.mu.Lock()
	if c.state != StateConnecting {
		// Disconnect or another attempt superseded this dial.
		c.mu.Unlock()
		if err == nil {
			conn.Close()
		}
		return
	}
	if err != nil {
		c.state = StateClosed
		c.lastError = err.Error()
		retry := c.retryableLocked()
		c.mu.Unlock()
		c.callbacks.emitError("connection error: " + err.Error())
		if retry {
			c.scheduleReconnect()
		}
		return
	}

	c.connGen++
	gen := c.connGen
	c.conn = conn
	c.state = StateOpen
	c.attempts = 0
	c.lastError = ""
	c.startHeartbeatLocked()

	var join *models.Frame
	if intent, ok := c.session.takePendingIntent(); ok {
		f := joinRoomFrame(intent)
		join = &f
		c.session.enterRoom(intent)
		c.rememberSessionLocked()
	}
	c.mu.Unlock()

	c.callbacks.emitConnectionChange(true)
	if join != nil {
		if err := c.writeFrame(conn, *join); err != nil {
			c.logger.Printf("join frame send failed: %v", err)
		}
	}
	go c.readLoop(conn, gen)
}

func (c *Client) readLoop(conn Conn, gen int) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			c.handleClose(gen, err)
			return
		}
		frame, derr := decodeFrame(data)
		if derr != nil {
			// Protocol errors are logged and ignored, never fatal.
			c.logger.Printf("protocol error: %v", derr)
			continue
		}
		c.handleFrame(frame)
	}
}

// handleClose reacts to the read loop ending. Deliberate disconnects
// and superseded generations are ignored; an unexpected close with a
// credential and an active room schedules a backoff reconnect.
func (c *Client) handleClose(gen int, cause error) {
	c.mu.Lock()
	if gen != c.connGen || c.conn == nil {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.stopHeartbeatLocked()
	c.state = StateClosed
	if c.deliberate {
		c.mu.Unlock()
		return
	}
	c.lastError = cause.Error()
	retry := c.retryableLocked()
	if retry && c.session.active() {
		// Re-park the join so the next connection rejoins the room.
		c.session.setPendingIntent(joinIntent{
			RoomID:    c.session.roomID,
			UserID:    c.session.userID,
			UserName:  c.session.userName,
			IsCreator: c.session.isCreator,
		})
	}
	c.mu.Unlock()

	c.callbacks.emitConnectionChange(false)
	if retry {
		c.scheduleReconnect()
	}
}

// retryableLocked reports whether an automatic reconnect should be
// attempted: never after a deliberate disconnect, and only while a
// credential is present and a room is still wanted.
func (c *Client) retryableLocked() bool {
	if c.deliberate {
		return false
	}
	if c.cfg.Tokens.Token() == "" {
		return false
	}
	return c.session.active() || c.session.intentState == intentPending
}

func (c *Client) scheduleReconnect() {
	c.mu.Lock()
	if c.deliberate {
		c.mu.Unlock()
		return
	}
	if c.attempts >= c.cfg.MaxReconnectAttempts {
		c.mu.Unlock()
		c.callbacks.emitError("reconnect attempts exhausted")
		return
	}
	delay := c.cfg.ReconnectBaseDelay << c.attempts
	c.attempts++
	attempt := c.attempts
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
	}
	c.reconnectTimer = c.clk.AfterFunc(delay, func() {
		c.mu.Lock()
		if c.deliberate || c.state == StateOpen || c.state == StateConnecting {
			c.mu.Unlock()
			return
		}
		c.state = StateConnecting
		c.mu.Unlock()
		c.dial()
	})
	c.logger.Printf("reconnect attempt %d/%d scheduled in %v", attempt, c.cfg.MaxReconnectAttempts, delay)
	c.mu.Unlock()
}

// Disconnect deliberately tears the connection down and hard-resets
// all session state: room, roster, ledger and typing set are cleared
// and every pending timer is cancelled. No automatic reconnect will
// follow.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.deliberate = true
	c.cancelTimersLocked()
	c.stopHeartbeatLocked()
	conn := c.conn
	c.conn = nil
	c.connGen++
	if conn != nil {
		c.state = StateClosing
	}
	c.session.reset()
	c.ledger.clear()
	c.tripID = ""
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}

	c.mu.Lock()
	c.state = StateIdle
	c.mu.Unlock()
	c.callbacks.emitConnectionChange(false)
}

// ForceReconnect resets the attempt counter, tears down any existing
// connection and redials after a short fixed delay. With rejoin set,
// the active room (or the cached one) is re-queued as a pending join.
func (c *Client) ForceReconnect(rejoin bool) {
	c.mu.Lock()
	c.attempts = 0
	c.deliberate = false
	c.lastError = ""
	c.cancelTimersLocked()
	c.stopHeartbeatLocked()
	conn := c.conn
	c.conn = nil
	c.connGen++

	if rejoin {
		switch {
		case c.session.active():
			c.session.setPendingIntent(joinIntent{
				RoomID:    c.session.roomID,
				UserID:    c.session.userID,
				UserName:  c.session.userName,
				IsCreator: c.session.isCreator,
			})
		case c.cfg.Sessions != nil:
			if ident, ok := c.cfg.Sessions.Load(); ok && ident.RoomID != "" {
				c.session.setPendingIntent(joinIntent{
					RoomID:    ident.RoomID,
					UserID:    ident.UserID,
					UserName:  ident.UserName,
					IsCreator: ident.CreatorID != "" && ident.CreatorID == ident.UserID,
				})
			}
		}
	}

	c.state = StateConnecting
	c.forceTimer = c.clk.AfterFunc(c.cfg.ForceReconnectDelay, c.dial)
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

// JoinRoom requests membership of a room. Already being in that room
// on an open connection is a no-op (no duplicate join frame). On an
// open connection to a different room the join frame goes out
// immediately; otherwise the request parks as the single pending
// intent (a later join for a different room supersedes it) and
// Connect is triggered.
func (c *Client) JoinRoom(roomID, userID, userName string, isCreator bool) error {
	if roomID == "" {
		return ErrNoActiveRoom
	}
	intent := joinIntent{RoomID: roomID, UserID: userID, UserName: userName, IsCreator: isCreator}

	c.mu.Lock()
	if c.state == StateOpen && c.session.roomID == roomID {
		c.mu.Unlock()
		return nil
	}
	if c.state == StateOpen && c.conn != nil {
		if c.session.active() && c.session.roomID != roomID {
			// Switching rooms: the old room's roster and ledger are
			// stale the moment the join goes out.
			c.session.reset()
			c.ledger.clear()
		}
		c.session.enterRoom(intent)
		c.session.clearIntent()
		c.rememberSessionLocked()
		conn := c.conn
		c.mu.Unlock()
		return c.writeFrame(conn, joinRoomFrame(intent))
	}
	superseded, didSupersede := c.session.setPendingIntent(intent)
	c.mu.Unlock()

	if didSupersede {
		c.callbacks.emitError(fmt.Sprintf("pending join of room %s superseded by room %s", superseded.RoomID, roomID))
	}
	return c.Connect()
}

// LeaveTrip exits the active room and destroys its roster and ledger.
// There is no undo; the next join starts clean.
func (c *Client) LeaveTrip() error {
	c.mu.Lock()
	if !c.session.active() {
		c.mu.Unlock()
		return ErrNoActiveRoom
	}
	tripID := c.tripID
	var conn Conn
	if c.state == StateOpen {
		conn = c.conn
	}
	c.session.reset()
	c.ledger.clear()
	c.tripID = ""
	if c.cfg.Sessions != nil {
		c.cfg.Sessions.Clear()
	}
	c.mu.Unlock()

	if conn != nil {
		return c.writeFrame(conn, leaveTripFrame(tripID))
	}
	return nil
}

// SendChatMessage sends trimmed text to the active room. With the
// connection down and a room context present, the message is appended
// locally with the distinct local author id so the UI can render the
// degraded path (unless DisableOfflineEcho is set, in which case
// ErrConnectionNotOpen is returned).
func (c *Client) SendChatMessage(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	if !c.session.active() {
		c.mu.Unlock()
		return ErrNoActiveRoom
	}
	if c.state == StateOpen && c.conn != nil {
		frame := chatMessageFrame(c.session.roomID, c.tripID, text)
		conn := c.conn
		c.mu.Unlock()
		return c.writeFrame(conn, frame)
	}
	if c.cfg.DisableOfflineEcho {
		c.mu.Unlock()
		return ErrConnectionNotOpen
	}
	echo := models.ChatMessage{
		ID:        uuid.New().String(),
		Text:      text,
		Sender:    models.Author{ID: LocalEchoAuthorID, Name: c.session.userName},
		Timestamp: c.clk.Now().UnixMilli(),
	}
	c.ledger.append(echo)
	c.mu.Unlock()

	c.callbacks.emitChatMessage(echo)
	return nil
}

// SetTyping reports the local user's typing state. A started
// indicator self-expires after the typing window so a stuck UI never
// leaves the user typing forever.
func (c *Client) SetTyping(isTyping bool) error {
	c.mu.Lock()
	if !c.session.active() {
		c.mu.Unlock()
		return ErrNoActiveRoom
	}
	if c.state != StateOpen || c.conn == nil {
		c.mu.Unlock()
		return ErrConnectionNotOpen
	}
	conn := c.conn
	tripID := c.tripID
	if c.typingTimer != nil {
		c.typingTimer.Stop()
		c.typingTimer = nil
	}
	if isTyping {
		c.typingTimer = c.clk.AfterFunc(c.cfg.TypingExpiry, func() {
			c.mu.Lock()
			open := c.state == StateOpen && c.conn != nil
			expireConn := c.conn
			c.mu.Unlock()
			if open {
				if err := c.writeFrame(expireConn, userTypingFrame(tripID, false)); err != nil {
					c.logger.Printf("typing expiry send failed: %v", err)
				}
			}
		})
	}
	c.mu.Unlock()
	return c.writeFrame(conn, userTypingFrame(tripID, isTyping))
}

// RequestSync asks the backend for the authoritative trip state.
func (c *Client) RequestSync() error {
	return c.sendInRoom(func(tripID string) models.Frame { return requestSyncFrame(tripID) })
}

// UpdatePreferences pushes an opaque preferences payload to the room.
func (c *Client) UpdatePreferences(data json.RawMessage) error {
	return c.sendInRoom(func(tripID string) models.Frame { return updatePreferencesFrame(tripID, data) })
}

// UpdateTripTracing pushes an opaque trip-tracing payload to the room.
func (c *Client) UpdateTripTracing(data json.RawMessage) error {
	return c.sendInRoom(func(tripID string) models.Frame { return updateTripTracingFrame(tripID, data) })
}

// JoinTrip subscribes to trip-level updates alongside the room.
func (c *Client) JoinTrip(tripID string) error {
	c.mu.Lock()
	if c.state != StateOpen || c.conn == nil {
		c.mu.Unlock()
		return ErrConnectionNotOpen
	}
	c.tripID = tripID
	conn := c.conn
	c.mu.Unlock()
	return c.writeFrame(conn, joinTripFrame(tripID))
}

func (c *Client) sendInRoom(build func(tripID string) models.Frame) error {
	c.mu.Lock()
	if !c.session.active() {
		c.mu.Unlock()
		return ErrNoActiveRoom
	}
	if c.state != StateOpen || c.conn == nil {
		c.mu.Unlock()
		return ErrConnectionNotOpen
	}
	conn := c.conn
	tripID := c.tripID
	c.mu.Unlock()
	return c.writeFrame(conn, build(tripID))
}

// handleFrame classifies one inbound frame by its discriminator and
// applies it. Handlers run to completion on the read loop goroutine,
// so frame effects are sequential.
func (c *Client) handleFrame(f models.Frame) {
	switch f.Type {
	case models.FrameConnectionEstablished:
		c.handleEstablished()

	case models.FrameUserJoined:
		if f.User == nil {
			return
		}
		c.mu.Lock()
		c.session.upsertUser(*f.User)
		c.mu.Unlock()
		c.callbacks.emitUserJoined(*f.User)

	case models.FrameUserLeft:
		c.mu.Lock()
		c.session.markOffline(f.UserID)
		c.mu.Unlock()
		c.callbacks.emitUserLeft(f.UserID)

	case models.FrameRoomUsers:
		c.mu.Lock()
		c.session.replaceRoster(f.Users)
		users := c.session.users()
		c.mu.Unlock()
		c.callbacks.emitRoomUsers(users)

	case models.FrameRoomJoined:
		c.mu.Lock()
		if f.RoomID != "" {
			c.session.roomID = f.RoomID
		}
		if f.TripID != "" {
			c.tripID = f.TripID
		}
		c.rememberSessionLocked()
		roomID := c.session.roomID
		c.mu.Unlock()
		c.callbacks.emitRoomJoined(roomID)

	case models.FrameRoomDeleted:
		c.mu.Lock()
		c.session.reset()
		c.ledger.clear()
		c.tripID = ""
		if c.cfg.Sessions != nil {
			c.cfg.Sessions.Clear()
		}
		c.mu.Unlock()
		c.callbacks.emitRoomDeleted(f.RoomID, f.ErrorMessage)

	case models.FrameChatMessage:
		if f.Message == nil {
			return
		}
		c.mu.Lock()
		added := c.ledger.append(*f.Message)
		c.mu.Unlock()
		if added {
			c.callbacks.emitChatMessage(*f.Message)
		}

	case models.FrameChatHistory:
		c.mu.Lock()
		c.ledger.replaceAll(f.Messages)
		snap := c.ledger.snapshot()
		c.mu.Unlock()
		c.callbacks.emitChatHistory(snap)

	case models.FrameUserTyping:
		c.mu.Lock()
		c.session.setTyping(f.UserID, f.IsTyping)
		c.mu.Unlock()
		c.callbacks.emitUserTyping(f.UserID, f.IsTyping)

	case models.FramePreferencesUpdated:
		c.callbacks.emitPreferencesUpdated(f.Data)

	case models.FrameTripTracingUpdated:
		c.callbacks.emitTripTracingUpdated(f.Data)

	case models.FrameTripState:
		c.mu.Lock()
		if f.TripID != "" {
			c.tripID = f.TripID
		}
		c.mu.Unlock()
		c.callbacks.emitTripState(f.Data)

	case models.FrameSyncData:
		c.callbacks.emitSyncData(f.Data)

	case models.FrameError:
		c.callbacks.emitError(f.ErrorMessage)

	case models.FrameServerShutdown:
		c.logger.Printf("server announced shutdown")

	case models.FramePong:
		// Heartbeat acknowledged.

	default:
		c.logger.Printf("ignoring unknown frame type %q", f.Type)
	}
}

// handleEstablished runs on the backend's connection acknowledgment.
// With no pending intent and no active room, a best-effort rejoin from
// the session cache survives a full process reload without asking the
// user for the share code again.
func (c *Client) handleEstablished() {
	c.mu.Lock()
	if c.session.active() || c.session.intentState == intentPending || c.cfg.Sessions == nil {
		c.mu.Unlock()
		return
	}
	ident, ok := c.cfg.Sessions.Load()
	if !ok || ident.RoomID == "" || ident.UserID == "" {
		c.mu.Unlock()
		return
	}
	intent := joinIntent{
		RoomID:    ident.RoomID,
		UserID:    ident.UserID,
		UserName:  ident.UserName,
		IsCreator: ident.CreatorID != "" && ident.CreatorID == ident.UserID,
	}
	c.session.enterRoom(intent)
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		if err := c.writeFrame(conn, joinRoomFrame(intent)); err != nil {
			c.logger.Printf("session rejoin failed: %v", err)
		}
	}
}

// rememberSessionLocked persists the active room identity. Caller
// holds c.mu.
func (c *Client) rememberSessionLocked() {
	if c.cfg.Sessions == nil || !c.session.active() {
		return
	}
	creatorID := ""
	if c.session.isCreator {
		creatorID = c.session.userID
	}
	c.cfg.Sessions.Store(RoomIdentity{
		RoomID:    c.session.roomID,
		UserID:    c.session.userID,
		UserName:  c.session.userName,
		CreatorID: creatorID,
	})
}

func (c *Client) writeFrame(conn Conn, f models.Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteMessage(data)
}

// startHeartbeatLocked begins the periodic ping. Caller holds c.mu.
func (c *Client) startHeartbeatLocked() {
	c.stopHeartbeatLocked()
	ticker := c.clk.NewTicker(c.cfg.HeartbeatInterval)
	done := make(chan struct{})
	c.heartbeat = ticker
	c.heartbeatDone = done
	conn := c.conn
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C():
				if err := c.writeFrame(conn, pingFrame()); err != nil {
					// The read loop sees the same failure and owns
					// the close handling.
					return
				}
			}
		}
	}()
}

// stopHeartbeatLocked cancels the heartbeat. Caller holds c.mu.
func (c *Client) stopHeartbeatLocked() {
	if c.heartbeat != nil {
		c.heartbeat.Stop()
		c.heartbeat = nil
	}
	if c.heartbeatDone != nil {
		close(c.heartbeatDone)
		c.heartbeatDone = nil
	}
}

// cancelTimersLocked stops every scheduled debounce, backoff, force
// and typing timer so superseded cycles cannot fire later. Caller
// holds c.mu.
func (c *Client) cancelTimersLocked() {
	for _, t := range []clock.Timer{c.debounceTimer, c.reconnectTimer, c.forceTimer, c.typingTimer} {
		if t != nil {
			t.Stop()
		}
	}
	c.debounceTimer = nil
	c.reconnectTimer = nil
	c.forceTimer = nil
	c.typingTimer = nil
}

// State returns the connection lifecycle state.
func (c *Client) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError returns the most recent connection error, or "".
func (c *Client) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

// ReconnectAttempts returns how many backoff attempts the current
// outage has consumed.
func (c *Client) ReconnectAttempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

// CurrentRoom returns the active room id, or "".
func (c *Client) CurrentRoom() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.roomID
}

// Messages returns a copy of the ledger in arrival order.
func (c *Client) Messages() []models.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.snapshot()
}

// Users returns a copy of the roster in arrival order.
func (c *Client) Users() []models.RoomUser {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.users()
}

// TypingUsers returns the ids of room members currently typing.
func (c *Client) TypingUsers() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.typingUsers()
}
