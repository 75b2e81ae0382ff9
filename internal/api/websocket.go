package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	// MaxWSConnectionsTotal is the maximum number of WebSocket connections allowed
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP is the maximum WebSocket connections per IP
	MaxWSConnectionsPerIP = 10

	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsSendBuffer = 16
)

// Feed events
const (
	EventLeaderboardSnapshot = "leaderboard:snapshot" // sent once on connect
	EventLeaderboardUpdate   = "leaderboard:update"   // after each accepted submission
)

// Codec selects the frame encoding for a feed client
type Codec uint8

const (
	CodecJSON    Codec = iota // text frames
	CodecMsgpack              // binary frames, requested with ?codec=msgpack
)

func (c Codec) String() string {
	if c == CodecMsgpack {
		return "msgpack"
	}
	return "json"
}

// FeedMessage is the envelope for every frame on the feed
type FeedMessage struct {
	Event string      `json:"event" msgpack:"event"`
	Data  interface{} `json:"data" msgpack:"data"`
}

// encodedMessage carries both encodings so each broadcast is marshalled once
type encodedMessage struct {
	json    []byte
	msgpack []byte
}

func encodeMessage(msg FeedMessage) (encodedMessage, error) {
	j, err := json.Marshal(msg)
	if err != nil {
		return encodedMessage{}, err
	}
	m, err := msgpack.Marshal(msg)
	if err != nil {
		return encodedMessage{}, err
	}
	return encodedMessage{json: j, msgpack: m}, nil
}

func (m encodedMessage) frame(c Codec) (int, []byte) {
	if c == CodecMsgpack {
		return websocket.BinaryMessage, m.msgpack
	}
	return websocket.TextMessage, m.json
}

type feedClient struct {
	conn  *websocket.Conn
	ip    string
	codec Codec
	send  chan encodedMessage
}

// FeedHub fans leaderboard updates out to WebSocket subscribers.
// Each client has its own writer goroutine; a client whose buffer is full
// is disconnected rather than stalling the hub.
type FeedHub struct {
	clients    map[*feedClient]struct{}
	broadcast  chan encodedMessage
	register   chan *feedClient
	unregister chan *feedClient
	stop       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex

	upgrader  websocket.Upgrader
	wsLimiter *WebSocketRateLimiter

	// Welcome, if set, produces the first message for a new client
	Welcome func() (FeedMessage, bool)
}

// NewFeedHub creates a hub accepting upgrades from origins allowed by oc
func NewFeedHub(oc *OriginChecker) *FeedHub {
	h := &FeedHub{
		clients:    make(map[*feedClient]struct{}),
		broadcast:  make(chan encodedMessage, 64),
		register:   make(chan *feedClient),
		unregister: make(chan *feedClient),
		stop:       make(chan struct{}),
		wsLimiter:  NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if oc.Allowed(origin) {
				return true
			}
			log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
			RecordConnectionRejected("origin")
			return false
		},
	}
	return h
}

// Run processes registrations and broadcasts until Stop
func (h *FeedHub) Run() {
	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			for c := range h.clients {
				h.drop(c)
			}
			h.mu.Unlock()
			UpdateWSConnections(0)
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()

			log.Printf("📱 Feed client connected from %s (%s, %d total)", c.ip, c.codec, count)
			UpdateWSConnections(count)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}
			count := len(h.clients)
			h.mu.Unlock()

			log.Printf("📱 Feed client disconnected (%d remaining)", count)
			UpdateWSConnections(count)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					log.Printf("⚠️ Feed client %s too slow, disconnecting", c.ip)
					h.drop(c)
				}
			}
			count := len(h.clients)
			h.mu.Unlock()
			UpdateWSConnections(count)
		}
	}
}

// drop removes a client; caller holds h.mu
func (h *FeedHub) drop(c *feedClient) {
	delete(h.clients, c)
	close(c.send)
	h.wsLimiter.Release(c.ip)
}

// Stop disconnects every client and ends Run
func (h *FeedHub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
}

// Broadcast queues a message for all clients. Drops it if the hub is backed up.
func (h *FeedHub) Broadcast(event string, data interface{}) {
	msg, err := encodeMessage(FeedMessage{Event: event, Data: data})
	if err != nil {
		log.Printf("❌ Feed encode failed for %s: %v", event, err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
	}
}

// ClientCount returns the number of connected clients
func (h *FeedHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the request and subscribes it to the feed
func (h *FeedHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if h.ClientCount() >= MaxWSConnectionsTotal {
		log.Printf("⚠️ WebSocket connection rejected: total limit reached")
		RecordConnectionRejected("ws_total_limit")
		writeError(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}
	if !h.wsLimiter.Allow(ip) {
		log.Printf("⚠️ WebSocket connection rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ws_ip_limit")
		writeError(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	codec := CodecJSON
	if r.URL.Query().Get("codec") == "msgpack" {
		codec = CodecMsgpack
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.wsLimiter.Release(ip)
		return
	}

	c := &feedClient{conn: conn, ip: ip, codec: codec, send: make(chan encodedMessage, wsSendBuffer)}
	if h.Welcome != nil {
		if msg, ok := h.Welcome(); ok {
			if enc, err := encodeMessage(msg); err == nil {
				c.send <- enc
			}
		}
	}

	select {
	case h.register <- c:
	case <-h.stop:
		h.wsLimiter.Release(ip)
		conn.Close()
		return
	}

	go h.writePump(c)
	go h.readPump(c)
}

// readPump discards client frames and detects disconnects
func (h *FeedHub) readPump(c *feedClient) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.stop:
		}
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump is the only writer on c.conn
func (h *FeedHub) writePump(c *feedClient) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			kind, data := msg.frame(c.codec)
			if err := c.conn.WriteMessage(kind, data); err != nil {
				return
			}
			IncrementWSMessages(c.codec.String())

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
