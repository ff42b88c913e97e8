package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// QueueSnapshot is one message from the /ws live-stats stream.
type QueueSnapshot struct {
	Timestamp time.Time                  `json:"timestamp"`
	Queues    map[string]QueueSnapshotRow `json:"queues"`
}

// QueueSnapshotRow is one queue's entry within a QueueSnapshot.
type QueueSnapshotRow struct {
	Priority  int   `json:"priority"`
	Paused    bool  `json:"paused"`
	Pending   int64 `json:"pending"`
	Scheduled int64 `json:"scheduled"`
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
}

// Watcher streams QueueSnapshots from the server's /ws endpoint.
type Watcher struct {
	conn      *websocket.Conn
	snapshots chan *QueueSnapshot
	done      chan struct{}
	closeOnce sync.Once
}

// Watch opens the /ws stream and returns a Watcher delivering queue depth
// snapshots as they are broadcast by the server.
func (c *Client) Watch(ctx context.Context) (*Watcher, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws"

	headers := make(map[string][]string)
	if c.opts.apiKey != "" {
		headers["X-API-Key"] = []string{c.opts.apiKey}
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, u.String(), headers)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}

	w := &Watcher{
		conn:      conn,
		snapshots: make(chan *QueueSnapshot, 16),
		done:      make(chan struct{}),
	}
	go w.readLoop()

	return w, nil
}

func (w *Watcher) readLoop() {
	defer close(w.snapshots)

	for {
		select {
		case <-w.done:
			return
		default:
			_, message, err := w.conn.ReadMessage()
			if err != nil {
				return
			}

			var snap QueueSnapshot
			if err := json.Unmarshal(message, &snap); err != nil {
				continue
			}

			select {
			case w.snapshots <- &snap:
			case <-w.done:
				return
			}
		}
	}
}

// Snapshots returns the channel of incoming queue depth snapshots. It is
// closed when the connection ends or Close is called.
func (w *Watcher) Snapshots() <-chan *QueueSnapshot {
	return w.snapshots
}

// Close terminates the watch.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.conn.Close()
	})
	return err
}
