// Package ipc is a client for the dashboard's websocket stream. It follows
// one session and hands every event to the handlers registered for its type.
package ipc

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// AnyEvent registers a handler for every event type.
const AnyEvent = "*"

// DefaultReconnectDelay is the wait between reconnect attempts.
const DefaultReconnectDelay = 5 * time.Second

// Event is one message received from the dashboard.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// EventHandler handles an event. Handlers run on the reading goroutine, in
// the order events arrive.
type EventHandler func(Event)

// Client follows the event stream of one session.
type Client struct {
	url            string
	reconnect      bool
	reconnectDelay time.Duration

	handlers   map[string][]EventHandler
	handlersMu sync.RWMutex

	conn   *websocket.Conn
	connMu sync.Mutex
}

// Option configures a Client.
type Option func(*Client)

// WithReconnect sets whether a dropped connection is re-established and how
// long to wait between attempts.
func WithReconnect(enabled bool, delay time.Duration) Option {
	return func(c *Client) {
		c.reconnect = enabled
		if delay > 0 {
			c.reconnectDelay = delay
		}
	}
}

// StreamURL turns a dashboard address such as "http://localhost:8050" into
// the websocket URL of a session.
func StreamURL(base, session string) (string, error) {
	if session == "" {
		return "", errors.New("session is required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid dashboard address: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"session": {session}}.Encode()
	return u.String(), nil
}

// NewClient creates a client for the given websocket URL.
func NewClient(wsURL string, opts ...Option) *Client {
	c := &Client{
		url:            wsURL,
		reconnect:      true,
		reconnectDelay: DefaultReconnectDelay,
		handlers:       make(map[string][]EventHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the websocket URL.
func (c *Client) URL() string {
	return c.url
}

// On registers a handler for an event type, or for all of them with AnyEvent.
func (c *Client) On(eventType string, handler EventHandler) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()
	c.handlers[eventType] = append(c.handlers[eventType], handler)
}

// Connect dials the dashboard.
func (c *Client) Connect(ctx context.Context) error {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("failed to connect to %s: %s", c.url, resp.Status)
		}
		return fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	log.Printf("[IPC] Connected to %s", c.url)
	return nil
}

// IsConnected reports whether a connection is open.
func (c *Client) IsConnected() bool {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.conn != nil
}

// Close closes the current connection, if any.
func (c *Client) Close() error {
	c.connMu.Lock()
	conn := c.conn
	c.conn = nil
	c.connMu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}

// Run reads events until ctx is done. A lost connection is re-established
// when reconnecting is enabled; otherwise its error is returned.
func (c *Client) Run(ctx context.Context) error {
	defer c.Close()

	for {
		if !c.IsConnected() {
			if err := c.Connect(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				if !c.reconnect {
					return err
				}
				log.Printf("[IPC] %v, retrying in %s", err, c.reconnectDelay)
				if !sleep(ctx, c.reconnectDelay) {
					return nil
				}
				continue
			}
		}

		err := c.readLoop(ctx)
		_ = c.Close()
		if ctx.Err() != nil {
			return nil
		}
		if !c.reconnect {
			return err
		}
		log.Printf("[IPC] Connection lost: %v", err)
		if !sleep(ctx, c.reconnectDelay) {
			return nil
		}
	}
}

func (c *Client) readLoop(ctx context.Context) error {
	c.connMu.Lock()
	conn := c.conn
	c.connMu.Unlock()
	if conn == nil {
		return errors.New("not connected")
	}

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			log.Printf("[IPC] Ignoring malformed message: %v", err)
			continue
		}
		c.dispatch(event)
	}
}

func (c *Client) dispatch(event Event) {
	c.handlersMu.RLock()
	handlers := append(append([]EventHandler(nil), c.handlers[event.Type]...), c.handlers[AnyEvent]...)
	c.handlersMu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
