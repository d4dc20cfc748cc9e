package kitchen

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ConnState is the push channel's connection state.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Conn is the slice of a websocket connection the socket needs. Tests
// substitute scripted fakes; production uses a gorilla connection.
type Conn interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	Close() error
}

// DialFunc establishes one connection to the push endpoint.
type DialFunc func(ctx context.Context) (Conn, error)

// GorillaDialer returns a DialFunc over the gorilla websocket client. The
// endpoint URL carries the auth token and restaurant id as query
// parameters.
func GorillaDialer(url string, header http.Header) DialFunc {
	return func(ctx context.Context) (Conn, error) {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

// SocketConfig tunes the socket's timers. Zero values pick the defaults.
type SocketConfig struct {
	// RetryDelay is the fixed wait before re-dialing after a close. No
	// exponential backoff: the poll ticker already caps the damage of a
	// flapping channel.
	RetryDelay time.Duration
	// Heartbeat is the ping interval while connected, shorter than the
	// retry delay so silent failures surface quickly.
	Heartbeat time.Duration
}

const (
	defaultRetryDelay = 3 * time.Second
	defaultHeartbeat  = 10 * time.Second
)

type socketEvent struct {
	Event string `json:"event"`
}

// Socket maintains the push channel to the kitchen backend. Inbound events
// are opaque triggers: the payload never carries ticket fields, it only
// tells the feed to re-fetch.
type Socket struct {
	dial       DialFunc
	retryDelay time.Duration
	heartbeat  time.Duration
	onConnect  func()
	notify     func()

	mu    sync.Mutex
	state ConnState
}

// NewSocket wires a socket to a feed: onConnect fires an immediate re-fetch
// after every (re)connection, notify marks the board stale on any
// substantive event.
func NewSocket(dial DialFunc, onConnect, notify func(), cfg SocketConfig) *Socket {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.Heartbeat <= 0 {
		cfg.Heartbeat = defaultHeartbeat
	}
	return &Socket{
		dial:       dial,
		retryDelay: cfg.RetryDelay,
		heartbeat:  cfg.Heartbeat,
		onConnect:  onConnect,
		notify:     notify,
		state:      StateDisconnected,
	}
}

// State returns the current connection state.
func (s *Socket) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Socket) setState(st ConnState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Run dials, serves, and re-dials until the context is cancelled. Every
// unexpected close waits the fixed retry delay and reconnects; the poll
// ticker in the feed keeps the board eventually consistent in the meantime.
func (s *Socket) Run(ctx context.Context) error {
	defer s.setState(StateDisconnected)

	for {
		s.setState(StateConnecting)

		conn, err := s.dial(ctx)
		if err != nil {
			s.setState(StateDisconnected)
			if !s.sleep(ctx) {
				return ctx.Err()
			}
			continue
		}

		s.setState(StateConnected)
		if s.onConnect != nil {
			s.onConnect()
		}

		s.serve(ctx, conn)
		s.setState(StateDisconnected)

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !s.sleep(ctx) {
			return ctx.Err()
		}
	}
}

// serve reads events until the connection drops. A heartbeat goroutine
// pings on a fixed interval; its write failing tears the connection down so
// the read loop unblocks.
func (s *Socket) serve(ctx context.Context, conn Conn) {
	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(s.heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				conn.Close()
				return
			case <-ticker.C:
				if err := conn.WriteJSON(socketEvent{Event: "ping"}); err != nil {
					conn.Close()
					return
				}
			}
		}
	}()

	for {
		var msg socketEvent
		if err := conn.ReadJSON(&msg); err != nil {
			conn.Close()
			return
		}

		switch msg.Event {
		case "kots_connected", "pong":
			// Acknowledgments, nothing to do.
		default:
			if s.notify != nil {
				s.notify()
			}
		}
	}
}

// sleep waits the retry delay; false means the context was cancelled.
func (s *Socket) sleep(ctx context.Context) bool {
	t := time.NewTimer(s.retryDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
