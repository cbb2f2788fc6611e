package delivery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// RelayMessage is the JSON frame written to the relay for each report.
type RelayMessage struct {
	Type        string    `json:"type"` // always "report"
	Symbol      string    `json:"symbol"`
	Text        string    `json:"text"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Relay pushes reports to a WebSocket endpoint (dashboards, bridges). The
// connection is dialed lazily and dropped on any write error; the next
// delivery dials again.
type Relay struct {
	url          string
	symbol       string
	writeTimeout time.Duration
	dialer       *websocket.Dialer
	logger       *zap.Logger

	mu   sync.Mutex
	conn *websocket.Conn
	now  func() time.Time
}

func NewRelay(url, symbol string, handshakeTimeout, writeTimeout time.Duration, logger *zap.Logger) *Relay {
	return &Relay{
		url:          url,
		symbol:       symbol,
		writeTimeout: writeTimeout,
		dialer:       &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		logger:       logger,
		now:          time.Now,
	}
}

func (r *Relay) Name() string { return "relay" }

func (r *Relay) Deliver(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil {
		conn, _, err := r.dialer.DialContext(ctx, r.url, nil)
		if err != nil {
			return fmt.Errorf("websocket dial failed: %w", err)
		}
		r.conn = conn
		r.logger.Info("WebSocket connected", zap.String("url", r.url))
	}

	if r.writeTimeout > 0 {
		_ = r.conn.SetWriteDeadline(time.Now().Add(r.writeTimeout))
	}

	msg := RelayMessage{
		Type:        "report",
		Symbol:      r.symbol,
		Text:        text,
		GeneratedAt: r.now().UTC(),
	}
	if err := r.conn.WriteJSON(msg); err != nil {
		_ = r.conn.Close()
		r.conn = nil
		return fmt.Errorf("websocket write failed: %w", err)
	}
	return nil
}

// Close sends a close frame and releases the connection, if any.
func (r *Relay) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil {
		return nil
	}
	_ = r.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	err := r.conn.Close()
	r.conn = nil
	return err
}
