package socket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait      = 10 * time.Second
	pingInterval   = 25 * time.Second
	maxMessageSize = 64 * 1024
)

// ErrClosed is returned by Emit after Close or a dropped connection
var ErrClosed = errors.New("socket closed")

// Client is one realtime connection. Register handlers with On, then Start.
type Client struct {
	conn *websocket.Conn

	mu       sync.RWMutex
	handlers map[string]Handler

	ctx       context.Context
	cancel    context.CancelFunc
	startOnce sync.Once
	closeOnce sync.Once
	closed    atomic.Bool
	done      chan struct{}
}

// Dial opens a realtime connection to rawURL
func Dial(ctx context.Context, rawURL, token string) (*Client, error) {
	opts := &websocket.DialOptions{}
	if token != "" {
		opts.HTTPHeader = http.Header{"Authorization": {"Bearer " + token}}
	}

	conn, _, err := websocket.Dial(ctx, rawURL, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", rawURL, err)
	}
	conn.SetReadLimit(maxMessageSize)
	log.Println("✅ Socket connected:", rawURL)

	return NewClient(conn), nil
}

// NewClient wraps an established connection
func NewClient(conn *websocket.Conn) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		conn:     conn,
		handlers: map[string]Handler{},
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// On registers h for event, replacing any previous handler
func (c *Client) On(event string, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = h
}

// Start launches the read and keep-alive loops
func (c *Client) Start() {
	c.startOnce.Do(func() {
		go c.readLoop()
		go c.keepAliveLoop()
	})
}

// Done is closed once the read loop has exited
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Emit sends event with payload
func (c *Client) Emit(ctx context.Context, event string, payload any) error {
	if c.closed.Load() || c.ctx.Err() != nil {
		return ErrClosed
	}
	env, err := NewEnvelope(event, payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", event, err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	if err := wsjson.Write(writeCtx, c.conn, env); err != nil {
		log.Printf("❌ Socket write error on %s: %v", event, err)
		return fmt.Errorf("failed to emit %s: %w", event, err)
	}
	return nil
}

// Close releases the connection. Safe to call more than once.
// A locally closed client never raises EventDisconnect.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		select {
		case <-c.done:
			// the read loop already saw the connection drop
			err = c.conn.CloseNow()
		default:
			err = c.conn.Close(websocket.StatusNormalClosure, "bye")
		}
		c.cancel()
		log.Println("🔌 Socket closed")
	})
	return err
}

func (c *Client) readLoop() {
	defer close(c.done)
	defer c.cancel()

	for {
		var env Envelope
		err := wsjson.Read(c.ctx, c.conn, &env)
		if err != nil {
			if c.closed.Load() {
				return
			}
			if websocket.CloseStatus(err) != -1 {
				log.Printf("❌ Socket disconnected: %v", err)
			} else {
				log.Printf("❌ Socket read error: %v", err)
			}
			data, _ := json.Marshal(DisconnectPayload{Message: err.Error()})
			c.dispatch(EventDisconnect, data)
			return
		}
		c.dispatch(env.Event, env.Data)
	}
}

func (c *Client) dispatch(event string, data json.RawMessage) {
	c.mu.RLock()
	h, ok := c.handlers[event]
	c.mu.RUnlock()
	if !ok {
		log.Printf("⚠️ No handler for socket event %q", event)
		return
	}
	h(data)
}

func (c *Client) keepAliveLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(c.ctx, 5*time.Second)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil && c.ctx.Err() == nil {
				log.Printf("⚠️ Socket ping failed: %v", err)
			}
		}
	}
}
