// internal/client/client.go

// Package client implements the game-side WebSocket client: it keeps a
// single connection to the sync server, replays the authoritative state
// snapshots it receives, and transparently reconnects with exponential
// backoff when the connection drops.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tolaria/playtable/internal/game"
	"github.com/tolaria/playtable/internal/models"
)

// ConnState is the client connection lifecycle state.
type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
	StateError        ConnState = "error"
)

// Conn is the minimal transport the client needs. The production
// implementation wraps coder/websocket; tests substitute an in-memory
// pipe.
type Conn interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Close() error
}

// Dialer opens a transport to the server. The token is passed separately
// so the dialer can attach it however the transport requires.
type Dialer func(ctx context.Context, url, token string) (Conn, error)

// Scheduler defers work, letting tests drive reconnect timing manually.
type Scheduler interface {
	After(d time.Duration, fn func()) (cancel func())
}

type realScheduler struct{}

func (realScheduler) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// Snapshot is the client-side copy of the server's authoritative state.
// Updates replace it wholesale; the client never merges.
type Snapshot = game.Snapshot

// LocalIntent is an action sent to the server and not yet reflected in a
// snapshot. Intents are display hints only; the next snapshot clears
// them regardless of whether the action was accepted.
type LocalIntent struct {
	Action models.GameAction
	SentAt time.Time
}

// Event is a non-state server notification: lobby membership changes
// and game lifecycle markers. Snapshots and rejections have dedicated
// callbacks.
type Event struct {
	Type     string
	GameCode string
	PlayerID string
	Username string
}

const (
	defaultInitialBackoff = time.Second
	defaultMaxBackoff     = 30 * time.Second
	defaultMaxAttempts    = 8
)

// Client is a reconnecting game client. Safe for concurrent use.
type Client struct {
	URL    string
	Logger *logrus.Logger

	// Callbacks fire outside the client lock.
	OnStateChange func(ConnState)
	OnSnapshot    func(Snapshot)
	OnRejected    func(code, reason string)
	OnEvent       func(Event)

	dial  Dialer
	sched Scheduler

	mu          sync.Mutex
	state       ConnState
	token       string
	conn        Conn
	attempts    int
	backoff     time.Duration
	maxBackoff  time.Duration
	maxAttempts int
	cancelRetry func()
	cancelRead  context.CancelFunc
	intentional bool
	snapshot    *Snapshot
	pending     []LocalIntent
}

// New builds a client for the given server URL.
func New(url string, logger *logrus.Logger) *Client {
	return &Client{
		URL:         url,
		Logger:      logger,
		dial:        dialWebSocket,
		sched:       realScheduler{},
		state:       StateDisconnected,
		backoff:     defaultInitialBackoff,
		maxBackoff:  defaultMaxBackoff,
		maxAttempts: defaultMaxAttempts,
	}
}

// State returns the current connection state.
func (c *Client) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LatestSnapshot returns the last authoritative state received, if any.
func (c *Client) LatestSnapshot() (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil {
		return Snapshot{}, false
	}
	return *c.snapshot, true
}

// PendingIntents returns actions sent but not yet confirmed by a snapshot.
func (c *Client) PendingIntents() []LocalIntent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]LocalIntent{}, c.pending...)
}

// Connect starts connecting with the given session token. The token is
// retained for automatic reconnects until Disconnect is called.
func (c *Client) Connect(ctx context.Context, token string) error {
	c.mu.Lock()
	if c.state == StateConnecting || c.state == StateConnected {
		c.mu.Unlock()
		return fmt.Errorf("already %s", c.state)
	}
	c.token = token
	c.intentional = false
	c.attempts = 0
	c.backoff = defaultInitialBackoff
	c.mu.Unlock()

	return c.attemptConnect(ctx)
}

func (c *Client) attemptConnect(ctx context.Context) error {
	c.setState(StateConnecting)

	c.mu.Lock()
	token := c.token
	c.attempts++
	attempt := c.attempts
	c.mu.Unlock()

	conn, err := c.dial(ctx, c.URL, token)
	if err != nil {
		c.logf("connect attempt %d failed: %v", attempt, err)
		c.scheduleRetry(ctx)
		return err
	}

	readCtx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.conn = conn
	c.cancelRead = cancel
	c.attempts = 0
	c.backoff = defaultInitialBackoff
	c.mu.Unlock()
	c.setState(StateConnected)

	go c.readLoop(readCtx, conn)
	return nil
}

// scheduleRetry arms the next reconnect attempt, doubling the delay up
// to the cap. After maxAttempts consecutive failures the client parks in
// the error state until Connect is called again.
func (c *Client) scheduleRetry(ctx context.Context) {
	c.mu.Lock()
	if c.intentional || c.token == "" {
		c.mu.Unlock()
		c.setState(StateDisconnected)
		return
	}
	if c.attempts >= c.maxAttempts {
		c.mu.Unlock()
		c.setState(StateError)
		return
	}
	delay := c.backoff
	c.backoff *= 2
	if c.backoff > c.maxBackoff {
		c.backoff = c.maxBackoff
	}
	sched := c.sched
	c.mu.Unlock()

	c.logf("retrying in %v", delay)
	cancel := sched.After(delay, func() {
		c.attemptConnect(ctx)
	})
	c.mu.Lock()
	c.cancelRetry = cancel
	c.mu.Unlock()
}

// Disconnect closes the connection and clears the token so no automatic
// reconnect follows.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.intentional = true
	c.token = ""
	c.pending = nil
	if c.cancelRetry != nil {
		c.cancelRetry()
		c.cancelRetry = nil
	}
	if c.cancelRead != nil {
		c.cancelRead()
		c.cancelRead = nil
	}
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	c.setState(StateDisconnected)
}

// Send transmits one game action and records it as a pending intent.
func (c *Client) Send(ctx context.Context, action models.GameAction) error {
	c.mu.Lock()
	conn := c.conn
	connected := c.state == StateConnected
	c.mu.Unlock()
	if !connected || conn == nil {
		return fmt.Errorf("not connected")
	}

	data, err := json.Marshal(map[string]interface{}{
		"type":   "game_action",
		"action": action,
	})
	if err != nil {
		return err
	}
	if err := conn.Write(ctx, data); err != nil {
		return err
	}

	c.mu.Lock()
	c.pending = append(c.pending, LocalIntent{Action: action, SentAt: time.Now()})
	c.mu.Unlock()
	return nil
}

// readLoop consumes server messages until the transport fails, then
// hands off to the reconnect path.
func (c *Client) readLoop(ctx context.Context, conn Conn) {
	for {
		data, err := conn.Read(ctx)
		if err != nil {
			c.mu.Lock()
			current := c.conn
			intentional := c.intentional
			c.mu.Unlock()
			if current != conn || intentional {
				return // superseded or deliberately closed
			}
			c.logf("connection lost: %v", err)
			conn.Close()
			c.mu.Lock()
			c.conn = nil
			c.mu.Unlock()
			c.scheduleRetry(context.Background())
			return
		}
		c.handleMessage(data)
	}
}

func (c *Client) handleMessage(data []byte) {
	var msg struct {
		Type     string    `json:"type"`
		GameCode string    `json:"game_code"`
		PlayerID string    `json:"player_id"`
		Username string    `json:"username"`
		Code     string    `json:"code"`
		Reason   string    `json:"reason"`
		State    *Snapshot `json:"state"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		c.logf("invalid server message: %v", err)
		return
	}

	switch msg.Type {
	case "game_state_update":
		if msg.State == nil {
			return
		}
		c.mu.Lock()
		c.snapshot = msg.State
		c.pending = nil
		cb := c.OnSnapshot
		c.mu.Unlock()
		if cb != nil {
			cb(*msg.State)
		}
	case "action_rejected":
		c.mu.Lock()
		// The action did not land; drop the optimistic intents.
		c.pending = nil
		cb := c.OnRejected
		c.mu.Unlock()
		if cb != nil {
			cb(msg.Code, msg.Reason)
		}
	case "game_created", "player_joined", "player_left", "game_started", "game_over", "left_game":
		c.mu.Lock()
		cb := c.OnEvent
		c.mu.Unlock()
		if cb != nil {
			cb(Event{Type: msg.Type, GameCode: msg.GameCode, PlayerID: msg.PlayerID, Username: msg.Username})
		}
	}
}

func (c *Client) setState(s ConnState) {
	c.mu.Lock()
	if c.state == s {
		c.mu.Unlock()
		return
	}
	c.state = s
	cb := c.OnStateChange
	c.mu.Unlock()
	if cb != nil {
		cb(s)
	}
}

func (c *Client) logf(format string, args ...interface{}) {
	if c.Logger != nil {
		c.Logger.Debugf("client: "+format, args...)
	}
}
