package ws

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"minesweeper_webapp/internal/logger"
)

var wsWatchers = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "ws_watchers",
		Help: "Currently connected websocket clients",
	},
)

func init() {
	prometheus.MustRegister(wsWatchers)
}

// Hub fans state frames out to the clients watching each instance. It
// carries no game state of its own; the session service hands it fully
// rendered frames.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Client]struct{})}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[c.instance]
	if room == nil {
		room = make(map[*Client]struct{})
		h.rooms[c.instance] = room
	}
	room[c] = struct{}{}
	wsWatchers.Inc()
	logger.Debug("ws client joined", "instance", c.instance, "player", c.playerID, "watchers", len(room))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.instance]
	if !ok {
		return
	}
	if _, ok := room[c]; !ok {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, c.instance)
	}
	wsWatchers.Dec()
	logger.Debug("ws client left", "instance", c.instance, "player", c.playerID)
}

// Broadcast queues the payload for every client subscribed to the
// instance. A client whose send buffer is full is dropped rather than
// allowed to stall the others.
func (h *Hub) Broadcast(instance string, payload []byte) {
	h.mu.RLock()
	var stalled []*Client
	for c := range h.rooms[instance] {
		select {
		case c.Send <- payload:
		default:
			stalled = append(stalled, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stalled {
		logger.Warn("ws client too slow, dropping", "instance", instance, "player", c.playerID)
		c.Close()
	}
}

// Watchers reports how many clients are subscribed to an instance.
func (h *Hub) Watchers(instance string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[instance])
}
