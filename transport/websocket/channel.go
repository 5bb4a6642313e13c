package websocket

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const writeTimeout = 10 * time.Second

// wsChannel wraps one websocket connection as a registry.Channel. Sends are
// serialized so a broadcast from another player's goroutine cannot interleave
// frames with a reply to this client.
type wsChannel struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newChannel(conn *websocket.Conn) *wsChannel {
	return &wsChannel{conn: conn}
}

// Send - writes one JSON message to the client.
func (that *wsChannel) Send(ctx context.Context, message any) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := wsjson.Write(writeCtx, that.conn, message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// Receive - reads the next client envelope.
func (that *wsChannel) Receive(ctx context.Context) (*clientMessage, error) {
	var message clientMessage
	if err := wsjson.Read(ctx, that.conn, &message); err != nil {
		return nil, err
	}

	return &message, nil
}
