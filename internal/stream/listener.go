// Package stream connects to the signal feed over WebSocket and pushes
// candidate contract addresses into the intake queue. The connection is
// kept alive with pings and re-established with exponential backoff.
package stream

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"solsniper/internal/intake"
	"solsniper/internal/observability"
)

// ListenerConfig configures WebSocket listener behavior.
type ListenerConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is the maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is the interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is the timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultListenerConfig returns the default listener configuration.
func DefaultListenerConfig() ListenerConfig {
	return ListenerConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// signalMessage is one inbound feed message. Feeds either wrap the signal
// text in JSON or send it raw; both carry addresses somewhere in the text.
type signalMessage struct {
	Text string `json:"text"`
}

// Listener consumes the signal feed and enqueues extracted addresses.
type Listener struct {
	endpoint string
	config   ListenerConfig
	queue    *intake.Queue
	logger   *log.Logger

	conn   *websocket.Conn
	connMu sync.Mutex
}

// NewListener creates a listener for endpoint feeding queue.
func NewListener(endpoint string, queue *intake.Queue, config *ListenerConfig, logger *log.Logger) *Listener {
	cfg := DefaultListenerConfig()
	if config != nil {
		cfg = *config
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Listener{
		endpoint: endpoint,
		config:   cfg,
		queue:    queue,
		logger:   logger,
	}
}

// Run connects and consumes the feed until ctx is cancelled. Connection
// failures trigger reconnects with exponential backoff; Run only returns on
// cancellation.
func (l *Listener) Run(ctx context.Context) error {
	delay := l.config.ReconnectDelay

	for {
		if err := l.connect(ctx); err != nil {
			l.logger.Printf("[stream] connect failed: %v (retrying in %s)", err, delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > l.config.MaxReconnectDelay {
				delay = l.config.MaxReconnectDelay
			}
			continue
		}

		// Reset backoff once connected.
		delay = l.config.ReconnectDelay
		l.logger.Printf("[stream] connected to %s", l.endpoint)

		err := l.consume(ctx)
		l.closeConn()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.logger.Printf("[stream] connection lost: %v (reconnecting)", err)
	}
}

func (l *Listener) connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, l.endpoint, nil)
	if err != nil {
		return err
	}
	l.connMu.Lock()
	l.conn = conn
	l.connMu.Unlock()
	return nil
}

func (l *Listener) closeConn() {
	l.connMu.Lock()
	if l.conn != nil {
		l.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		l.conn.Close()
		l.conn = nil
	}
	l.connMu.Unlock()
}

// consume reads messages until the connection breaks or ctx is cancelled.
func (l *Listener) consume(ctx context.Context) error {
	l.connMu.Lock()
	conn := l.conn
	l.connMu.Unlock()

	// A cancelled context must interrupt the blocking read.
	readCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-readCtx.Done()
		l.closeConn()
	}()

	pingDone := make(chan struct{})
	defer close(pingDone)
	go l.pingLoop(conn, pingDone)

	for {
		conn.SetReadDeadline(time.Now().Add(l.config.ReadTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		l.handleMessage(ctx, message)
	}
}

func (l *Listener) handleMessage(ctx context.Context, message []byte) {
	text := string(message)
	var sig signalMessage
	if err := json.Unmarshal(message, &sig); err == nil && sig.Text != "" {
		text = sig.Text
	}

	for _, address := range ExtractAddresses(text) {
		observability.RecordCandidateReceived()
		l.queue.Enqueue(ctx, address)
	}
}

// pingLoop keeps the connection alive until done closes.
func (l *Listener) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(l.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			l.connMu.Lock()
			if l.conn != conn {
				l.connMu.Unlock()
				return
			}
			conn.SetWriteDeadline(time.Now().Add(l.config.WriteTimeout))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			l.connMu.Unlock()
			if err != nil {
				// Reader sees the dead connection and triggers reconnect.
				return
			}
		}
	}
}
