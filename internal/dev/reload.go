package dev

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// ReloadKind classifies a reload message for the browser snippet.
type ReloadKind string

const (
	// ReloadFull tells the browser to reload the page.
	ReloadFull ReloadKind = "reload"
	// ReloadCSS tells the browser to re-fetch stylesheets in place.
	ReloadCSS ReloadKind = "css"
)

// ReloadMessage is the wire format sent to connected browsers.
type ReloadMessage struct {
	Kind ReloadKind `json:"kind"`
	File string     `json:"file,omitempty"`
}

// ReloadHub fans reload messages out to connected browsers over
// WebSocket. The dev server broadcasts after each watcher change.
type ReloadHub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewReloadHub creates an empty hub.
func NewReloadHub(logger *slog.Logger) *ReloadHub {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReloadHub{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Dev only; the endpoint never exists in production.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ServeHTTP implements the WebSocket upgrade endpoint.
func (h *ReloadHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("reload upgrade failed", "err", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	// Drain until the client goes away.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends a message to every connected browser. Dead
// connections are dropped.
func (h *ReloadHub) Broadcast(msg ReloadMessage) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(msg); err != nil {
			h.drop(conn)
		}
	}
}

// ClientCount returns the number of connected browsers.
func (h *ReloadHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects all clients.
func (h *ReloadHub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
	}
	h.clients = make(map[*websocket.Conn]struct{})
	return nil
}

func (h *ReloadHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// ReloadScript is the inline snippet the document shell injects in dev
// mode. It connects back to the reload endpoint and acts on messages.
const ReloadScript = `(function(){var p=location.protocol==="https:"?"wss":"ws";var ws=new WebSocket(p+"://"+location.host+"/_isora/reload");ws.onmessage=function(e){var m=JSON.parse(e.data);if(m.kind==="css"){document.querySelectorAll('link[rel="stylesheet"]').forEach(function(l){l.href=l.href.split("?")[0]+"?t="+Date.now()})}else{location.reload()}};ws.onclose=function(){setTimeout(function(){location.reload()},1000)}})();`
