// Package wsfeed publishes grid-tick signals to websocket subscribers,
// adapted from the teacher's internal/websocket/broker.go: the same
// single-goroutine Hub.Run event loop, register/unregister/subscribe/
// unsubscribe/publish channels and slow-client eviction, retopic'd
// around symbols carrying signal ticks instead of trade fills.
package wsfeed

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/marketfeed/orderbook-engine/internal/signal"
)

const (
	writeWait           = 10 * time.Second
	pongWait            = 60 * time.Second
	pingPeriod          = (pongWait * 9) / 10
	maxMessageSize      = 512 * 1024
	defaultSendBuf      = 256
	defaultPublishBuf   = 4096
	maxConsecutiveDrops = 50
)

// SignalTick is one symbol's surviving signal values at one grid tick,
// the payload PublishSignals fans out to subscribers of that symbol.
type SignalTick struct {
	Symbol   string        `json:"symbol"`
	GridTime int64         `json:"grid_time"`
	Values   signal.Tick   `json:"values"`
	Seq      uint64        `json:"seq,omitempty"`
}

type publishMsg struct {
	Topic string
	Data  []byte
}

type subscription struct {
	client *Client
	topic  string
}

// Hub manages clients, topic subscriptions and signal publishes.
type Hub struct {
	register    chan *Client
	unregister  chan *Client
	subscribe   chan subscription
	unsubscribe chan subscription
	publish     chan publishMsg

	clients map[*Client]struct{}
	topics  map[string]map[*Client]struct{}

	sendBuf      int
	publishDrops uint64

	seq sequencer

	logger *log.Logger
}

// Client is one subscriber's websocket connection.
type Client struct {
	id   uuid.UUID
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	subscribed map[string]struct{}
	drops      int
}

// NewHub creates a Hub with reasonable defaults. Pass nil for logger to
// use log.Default().
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		subscribe:   make(chan subscription),
		unsubscribe: make(chan subscription),
		publish:     make(chan publishMsg, defaultPublishBuf),
		clients:     make(map[*Client]struct{}),
		topics:      make(map[string]map[*Client]struct{}),
		sendBuf:     defaultSendBuf,
		logger:      logger,
	}
}

// Run is the hub's event loop; call as go hub.Run(ctx). It stops when
// ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Println("wsfeed hub started")
	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}

		case c := <-h.unregister:
			h.evict(c)

		case sub := <-h.subscribe:
			subs := h.topics[sub.topic]
			if subs == nil {
				subs = make(map[*Client]struct{})
				h.topics[sub.topic] = subs
			}
			subs[sub.client] = struct{}{}
			sub.client.subscribed[sub.topic] = struct{}{}

		case sub := <-h.unsubscribe:
			if subs := h.topics[sub.topic]; subs != nil {
				delete(subs, sub.client)
				if len(subs) == 0 {
					delete(h.topics, sub.topic)
				}
			}
			delete(sub.client.subscribed, sub.topic)

		case p := <-h.publish:
			h.fanOut(p)

		case <-ctx.Done():
			h.logger.Println("wsfeed hub shutting down")
			for c := range h.clients {
				close(c.send)
				_ = c.conn.Close()
				delete(h.clients, c)
			}
			return
		}
	}
}

func (h *Hub) fanOut(p publishMsg) {
	subs := h.topics[p.Topic]
	if subs == nil {
		return
	}
	for c := range subs {
		select {
		case c.send <- p.Data:
			c.drops = 0
		default:
			atomic.AddUint64(&h.publishDrops, 1)
			c.drops++
			if c.drops > maxConsecutiveDrops {
				h.logger.Printf("evicting slow client %s after %d drops", c.id, c.drops)
				h.evict(c)
			}
		}
	}
}

func (h *Hub) evict(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	for t := range c.subscribed {
		if subs := h.topics[t]; subs != nil {
			delete(subs, c)
			if len(subs) == 0 {
				delete(h.topics, t)
			}
		}
	}
	close(c.send)
	_ = c.conn.Close()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades the request and registers a new client, optionally
// pre-subscribed via a ?symbols=AAPL,MSFT query parameter.
func ServeWS(h *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "upgrade failed", http.StatusBadRequest)
		return
	}

	client := &Client{
		id:         uuid.New(),
		hub:        h,
		conn:       conn,
		send:       make(chan []byte, h.sendBuf),
		subscribed: make(map[string]struct{}),
	}

	if s := r.URL.Query().Get("symbols"); s != "" {
		for _, sym := range strings.Split(s, ",") {
			sym = strings.TrimSpace(sym)
			if sym == "" {
				continue
			}
			client.subscribed[sym] = struct{}{}
		}
	}

	h.register <- client
	for sym := range client.subscribed {
		h.subscribe <- subscription{client: client, topic: sym}
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			) {
				c.hub.logger.Printf("read error from %s: %v", c.id, err)
			}
			return
		}
		c.drops = 0

		var cmd struct {
			Type   string `json:"type"`
			Symbol string `json:"symbol"`
		}
		if err := json.Unmarshal(message, &cmd); err != nil {
			c.hub.logger.Printf("invalid client msg from %s: %v", c.id, err)
			continue
		}

		switch cmd.Type {
		case "subscribe":
			if cmd.Symbol != "" {
				c.hub.subscribe <- subscription{client: c, topic: cmd.Symbol}
			}
		case "unsubscribe":
			if cmd.Symbol != "" {
				c.hub.unsubscribe <- subscription{client: c, topic: cmd.Symbol}
			}
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				)
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if _, err := w.Write(message); err != nil {
				_ = w.Close()
				return
			}

			n := len(c.send)
			for i := 0; i < n; i++ {
				msg := <-c.send
				if msg == nil {
					continue
				}
				if _, err := w.Write([]byte("\n")); err != nil {
					break
				}
				if _, err := w.Write(msg); err != nil {
					break
				}
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// PublishSignals stamps tick with the next sequence number for its
// symbol and fans the JSON-encoded result out to subscribers.
// Non-blocking: if the hub's publish buffer is full, the tick is dropped.
func (h *Hub) PublishSignals(symbol string, tick SignalTick) {
	tick.Symbol = symbol
	tick.Seq = h.seq.next(symbol)

	b, err := json.Marshal(tick)
	if err != nil {
		h.logger.Printf("marshal signal tick: %v", err)
		return
	}

	select {
	case h.publish <- publishMsg{Topic: symbol, Data: b}:
	default:
		atomic.AddUint64(&h.publishDrops, 1)
		h.logger.Println("publish channel full, dropping signal tick")
	}
}

// Stats returns simple metrics: connected client count and total drops.
func (h *Hub) Stats() (clients int, drops uint64) {
	return len(h.clients), atomic.LoadUint64(&h.publishDrops)
}
