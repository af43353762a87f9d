package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"netsim-dashboard/internal/telemetry"
)

// Message types pushed to browsers.
const (
	MsgStats = "stats"
	MsgEvent = "event"
)

// Message is the WebSocket frame sent to browsers.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub broadcasts stats rows and events to connected browsers. It implements
// sim.StatsWriter and sim.EventWriter; writes never block the caller.
type Hub struct {
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	register  chan *websocket.Conn
	remove    chan *websocket.Conn
	broadcast chan frame
	done      chan struct{}
	closeOnce sync.Once
	log       *slog.Logger

	// latest is the last stats frame broadcast; only run touches it.
	latest []byte
}

type frame struct {
	data  []byte
	stats bool
}

// NewHub starts the broadcast loop.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	h := &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:   make(map[*websocket.Conn]bool),
		register:  make(chan *websocket.Conn),
		remove:    make(chan *websocket.Conn),
		broadcast: make(chan frame, 64),
		done:      make(chan struct{}),
		log:       log,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			// A new client gets the latest stats first and then every
			// frame after it, with nothing in between.
			if h.latest != nil {
				if err := conn.WriteMessage(websocket.TextMessage, h.latest); err != nil {
					conn.Close()
					continue
				}
			}
			h.clients[conn] = true
		case conn := <-h.remove:
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
		case f := <-h.broadcast:
			if f.stats {
				h.latest = f.data
			}
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, f.data); err != nil {
					h.log.Warn("websocket send failed", "remote", conn.RemoteAddr().String(), "err", err)
					delete(h.clients, conn)
					conn.Close()
				}
			}
		case <-h.done:
			for conn := range h.clients {
				conn.Close()
			}
			return
		}
	}
}

// Close disconnects all clients and stops the loop.
func (h *Hub) Close() error {
	h.closeOnce.Do(func() { close(h.done) })
	return nil
}

// ServeHTTP upgrades the connection and registers it; the broadcast loop
// sends the latest stats row.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", "err", err)
		return
	}

	select {
	case h.register <- conn:
	case <-h.done:
		conn.Close()
		return
	}

	go func() {
		defer func() {
			select {
			case h.remove <- conn:
			case <-h.done:
			}
		}()
		for {
			// Browsers only listen; reads detect disconnects.
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.log.Warn("websocket closed", "err", err)
				}
				return
			}
		}
	}()
}

// WriteStats implements sim.StatsWriter.
func (h *Hub) WriteStats(row telemetry.StatsRow) error {
	data, err := json.Marshal(Message{Type: MsgStats, Data: row})
	if err != nil {
		return err
	}
	h.send(frame{data: data, stats: true})
	return nil
}

// WriteEvent implements sim.EventWriter.
func (h *Hub) WriteEvent(ev telemetry.EventRow) error {
	data, err := json.Marshal(Message{Type: MsgEvent, Data: ev})
	if err != nil {
		return err
	}
	h.send(frame{data: data})
	return nil
}

func (h *Hub) send(f frame) {
	select {
	case h.broadcast <- f:
	case <-h.done:
	default:
		h.log.Warn("websocket broadcast queue full, dropping frame")
	}
}
