package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tngrm/tngrm/internal/core/events/bus"
	"github.com/tngrm/tngrm/internal/core/observability/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Feed message types
const (
	FeedLevels = "levels"
	FeedSaved  = "level.saved"
)

// FeedMessage is sent to websocket clients. A new client first receives a
// FeedLevels message listing every stored level.
type FeedMessage struct {
	Type   string    `json:"type"`
	Level  string    `json:"level,omitempty"`
	Levels []string  `json:"levels,omitempty"`
	Time   time.Time `json:"time"`
}

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *feedClient) close() {
	c.once.Do(func() { close(c.send) })
}

// Feed broadcasts level changes to connected websocket clients. A client
// that falls behind by more than sendBuffer messages is dropped.
type Feed struct {
	logger   log.Log
	snapshot func(context.Context) ([]string, error)

	mu      sync.Mutex
	clients map[*feedClient]struct{}
	closed  bool
	wg      sync.WaitGroup
}

// NewFeed creates a feed. snapshot, when not nil, lists the level names sent
// to each new client.
func NewFeed(logger log.Log, snapshot func(context.Context) ([]string, error)) *Feed {
	return &Feed{
		logger:   logger.With(log.String("component", "feed")),
		snapshot: snapshot,
		clients:  make(map[*feedClient]struct{}),
	}
}

// Len returns the number of connected clients.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

// HandleEvent is the bus handler for saved levels.
func (f *Feed) HandleEvent(e bus.Event) error {
	msg := FeedMessage{Type: FeedSaved, Time: e.Timestamp()}
	if saved, ok := e.Data().(LevelSaved); ok {
		msg.Level = saved.Name
	}
	return f.Broadcast(msg)
}

// Broadcast queues msg for every client.
func (f *Feed) Broadcast(msg FeedMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for c := range f.clients {
		select {
		case c.send <- data:
		default:
			f.logger.Warn("Dropping slow feed client", log.String("remote_addr", c.conn.RemoteAddr().String()))
			delete(f.clients, c)
			c.close()
		}
	}
	return nil
}

func (f *Feed) register(c *feedClient) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	f.clients[c] = struct{}{}
	f.wg.Add(1)
	return true
}

func (f *Feed) unregister(c *feedClient) {
	f.mu.Lock()
	if _, ok := f.clients[c]; ok {
		delete(f.clients, c)
		c.close()
	}
	f.mu.Unlock()
}

// CloseClients disconnects every client. New clients are still accepted.
func (f *Feed) CloseClients() {
	f.mu.Lock()
	for c := range f.clients {
		delete(f.clients, c)
		c.close()
	}
	f.mu.Unlock()
	f.wg.Wait()
}

// Close disconnects every client and refuses new ones.
func (f *Feed) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.CloseClients()
}

func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Debug("Websocket upgrade failed", log.Error(err))
		return
	}

	c := &feedClient{conn: conn, send: make(chan []byte, sendBuffer)}
	if f.snapshot != nil {
		names, err := f.snapshot(r.Context())
		if err != nil {
			f.logger.Error("Failed to list levels for feed", log.Error(err))
		} else {
			data, _ := json.Marshal(FeedMessage{Type: FeedLevels, Levels: names, Time: time.Now()})
			c.send <- data
		}
	}

	if !f.register(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}

	remote := conn.RemoteAddr().String()
	f.logger.Debug("Feed client connected", log.String("remote_addr", remote))

	go f.writePump(c)
	f.readPump(c)

	f.logger.Debug("Feed client disconnected", log.String("remote_addr", remote))
}

// readPump discards client messages and detects disconnects.
func (f *Feed) readPump(c *feedClient) {
	defer f.unregister(c)

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (f *Feed) writePump(c *feedClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
		f.wg.Done()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				f.unregister(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				f.unregister(c)
				return
			}
		}
	}
}
