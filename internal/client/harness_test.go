package client

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/FlyingWhaleisME/where-to-next-sub001/internal/clock"
	"github.com/FlyingWhaleisME/where-to-next-sub001/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// fakeConn is a scripted in-memory connection. Tests deliver inbound
// frames with deliver() and observe outbound frames on writes.
type fakeConn struct {
	incoming  chan []byte
	writes    chan models.Frame
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		incoming: make(chan []byte, 64),
		writes:   make(chan models.Frame, 64),
		closed:   make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case data := <-c.incoming:
		return data, nil
	case <-c.closed:
		return nil, errors.New("connection reset")
	}
}

func (c *fakeConn) WriteMessage(data []byte) error {
	select {
	case <-c.closed:
		return errors.New("write on closed connection")
	default:
	}
	var f models.Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	c.writes <- f
	return nil
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

// deliver pushes a server frame into the read loop.
func (c *fakeConn) deliver(t *testing.T, f models.Frame) {
	t.Helper()
	data, err := json.Marshal(f)
	require.NoError(t, err)
	c.incoming <- data
}

// drop simulates an unexpected network close.
func (c *fakeConn) drop() { c.Close() }

// expectWrite waits for the next outbound frame and asserts its type.
func (c *fakeConn) expectWrite(t *testing.T, frameType string) models.Frame {
	t.Helper()
	select {
	case f := <-c.writes:
		require.Equal(t, frameType, f.Type)
		return f
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s frame", frameType)
	}
	return models.Frame{}
}

// expectNoWrite asserts nothing is written within a short window.
func (c *fakeConn) expectNoWrite(t *testing.T) {
	t.Helper()
	select {
	case f := <-c.writes:
		t.Fatalf("unexpected outbound frame %q", f.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

// fakeDialer hands out fakeConns and can be told to fail.
type fakeDialer struct {
	mu      sync.Mutex
	conns   []*fakeConn
	failAll bool
	dials   int
}

func (d *fakeDialer) Dial(ctx context.Context, endpoint, token string) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	if d.failAll {
		return nil, errors.New("connection refused")
	}
	conn := newFakeConn()
	d.conns = append(d.conns, conn)
	return conn, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

func (d *fakeDialer) lastConn() *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.conns) == 0 {
		return nil
	}
	return d.conns[len(d.conns)-1]
}

// errorRecorder collects error-callback messages.
type errorRecorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *errorRecorder) record(msg string) {
	r.mu.Lock()
	r.messages = append(r.messages, msg)
	r.mu.Unlock()
}

func (r *errorRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.messages))
	copy(out, r.messages)
	return out
}

func testToken(t *testing.T, expiresIn time.Duration, now time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id":  7,
		"username": "mika",
		"exp":      now.Add(expiresIn).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

type testRig struct {
	client *Client
	dialer *fakeDialer
	clk    *clock.Fake
	errs   *errorRecorder
	tokens *MemoryTokenStore
	cache  *MemorySessionCache
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	clk := clock.NewFake(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	dialer := &fakeDialer{}
	tokens := NewMemoryTokenStore(testToken(t, time.Hour, clk.Now()))
	cache := NewMemorySessionCache()
	errs := &errorRecorder{}

	c, err := New(Config{
		ServerURL: "http://collab.test",
		Tokens:    tokens,
		Sessions:  cache,
		Dialer:    dialer,
		Clock:     clk,
		Logger:    log.New(testWriter{t}, "", 0),
	})
	require.NoError(t, err)
	c.RegisterCallbacks(Callbacks{OnError: errs.record})

	return &testRig{client: c, dialer: dialer, clk: clk, errs: errs, tokens: tokens, cache: cache}
}

// join parks a room join, runs the debounce, and returns the live conn
// after the flushed join frame went out.
func (r *testRig) join(t *testing.T, roomID string) *fakeConn {
	t.Helper()
	require.NoError(t, r.client.JoinRoom(roomID, "u7", "Mika", true))
	r.clk.Advance(150 * time.Millisecond)
	conn := r.dialer.lastConn()
	require.NotNil(t, conn)
	conn.expectWrite(t, models.FrameJoinRoom)
	return conn
}

// sync delivers a sentinel frame and waits for its effect, proving all
// previously delivered frames were processed (the read loop is
// sequential).
func (r *testRig) sync(t *testing.T, conn *fakeConn) {
	t.Helper()
	done := make(chan struct{}, 1)
	r.client.RegisterCallbacks(Callbacks{OnUserTyping: func(string, bool) {
		select {
		case done <- struct{}{}:
		default:
		}
	}})
	conn.deliver(t, models.Frame{Type: models.FrameUserTyping, UserID: "sentinel", IsTyping: false})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame processing")
	}
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}
