// Package stream pushes solver placements to websocket viewers as they
// happen.
package stream

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/hexwfc/internal/config"
	"github.com/lawnchairsociety/hexwfc/internal/hexgrid"
	"github.com/lawnchairsociety/hexwfc/internal/logger"
	"github.com/lawnchairsociety/hexwfc/internal/wfc"
)

// Hub fans solver events out to connected viewers. It is a
// wfc.PlacementSink and is safe for concurrent use.
type Hub struct {
	cfg     config.StreamConfig
	limiter *ConnLimiter
	log     *slog.Logger

	mu      sync.RWMutex
	viewers map[*viewer]struct{}
	closed  bool
}

type viewer struct {
	conn *websocket.Conn
	ip   string
	send chan []byte
	done chan struct{}
	once sync.Once
}

var _ wfc.PlacementSink = (*Hub)(nil)

// NewHub creates a hub with the given stream settings.
func NewHub(cfg config.StreamConfig) *Hub {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 256
	}
	return &Hub{
		cfg:     cfg,
		limiter: NewConnLimiter(cfg.MaxPerIP, cfg.MaxTotal),
		log:     logger.Component("stream"),
		viewers: make(map[*viewer]struct{}),
	}
}

// ServeHTTP upgrades the request and registers the viewer.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		http.Error(w, "stream closed", http.StatusServiceUnavailable)
		return
	}

	clientIP := realIP(r)
	if !h.limiter.TryAcquire(clientIP) {
		h.log.Warn("viewer rejected - limit exceeded", "remote_addr", r.RemoteAddr, "client_ip", clientIP)
		http.Error(w, "Too many connections. Please try again later.", http.StatusTooManyRequests)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := h.cfg.IsOriginAllowed(origin, r.Host)
			if !allowed {
				h.log.Warn("viewer rejected - origin not allowed", "origin", origin, "host", r.Host)
			}
			return allowed
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", "error", err)
		h.limiter.Release(clientIP)
		return
	}

	v := &viewer{
		conn: conn,
		ip:   clientIP,
		send: make(chan []byte, h.cfg.Buffer),
		done: make(chan struct{}),
	}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		h.limiter.Release(clientIP)
		return
	}
	h.viewers[v] = struct{}{}
	h.mu.Unlock()
	h.log.Info("viewer connected", "client_ip", clientIP)

	go h.writeLoop(v)
	go h.readLoop(v)
}

// readLoop discards viewer messages and notices disconnects.
func (h *Hub) readLoop(v *viewer) {
	defer h.drop(v)
	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(v *viewer) {
	defer h.drop(v)
	timeout := h.cfg.WriteTimeout()
	for {
		select {
		case <-v.done:
			return
		case msg := <-v.send:
			v.conn.SetWriteDeadline(time.Now().Add(timeout))
			if err := v.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.log.Debug("viewer write failed", "client_ip", v.ip, "error", err)
				return
			}
		}
	}
}

func (h *Hub) drop(v *viewer) {
	v.once.Do(func() {
		h.mu.Lock()
		delete(h.viewers, v)
		h.mu.Unlock()
		close(v.done)
		v.conn.Close()
		h.limiter.Release(v.ip)
		h.log.Info("viewer disconnected", "client_ip", v.ip)
	})
}

// Broadcast sends ev to every viewer. A viewer whose queue is full is
// dropped rather than blocking the solver.
func (h *Hub) Broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("failed to encode event", "type", ev.Type, "error", err)
		return
	}

	var slow []*viewer
	h.mu.RLock()
	for v := range h.viewers {
		select {
		case v.send <- data:
		default:
			slow = append(slow, v)
		}
	}
	h.mu.RUnlock()

	for _, v := range slow {
		h.log.Warn("dropping slow viewer", "client_ip", v.ip)
		h.drop(v)
	}
}

// OnCellResolved streams one placement.
func (h *Hub) OnCellResolved(addr hexgrid.Address, tileID string, rotation int) {
	h.Broadcast(placementEvent(addr, tileID, rotation))
}

// RunStarted announces a new engine run; viewers discard earlier
// placements.
func (h *Hub) RunStarted(run int, seed int64) {
	h.Broadcast(runStartEvent(run, seed))
}

// RunFinished reports the outcome of an engine run.
func (h *Hub) RunFinished(run int, res *wfc.Result, err error) {
	h.Broadcast(runEndEvent(run, res, err))
}

// Viewers returns the number of connected viewers.
func (h *Hub) Viewers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.viewers)
}

// Close disconnects every viewer and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	all := make([]*viewer, 0, len(h.viewers))
	for v := range h.viewers {
		all = append(all, v)
	}
	h.mu.Unlock()

	for _, v := range all {
		v.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "solve finished"),
			time.Now().Add(time.Second))
		h.drop(v)
	}
}
