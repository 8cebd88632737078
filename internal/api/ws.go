package api

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024 * 4,
	WriteBufferSize: 1024 * 4,
	CheckOrigin: func(r *http.Request) bool {
		return true // local server; restrict when exposed
	},
}

// versionEvent is pushed to every client whenever the review mutates.
type versionEvent struct {
	Type    string `json:"type"`
	Version uint64 `json:"version"`
}

// hub fans version events out to connected websocket clients.
type hub struct {
	log   zerolog.Logger
	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

func newHub(log zerolog.Logger) *hub {
	return &hub{log: log, conns: make(map[*websocket.Conn]bool)}
}

func (h *hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = true
	h.mu.Unlock()
}

func (h *hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
}

// broadcast pushes the current version to every client. Clients whose
// writes fail are dropped.
func (h *hub) broadcast(version uint64) {
	event := versionEvent{Type: "version", Version: version}
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteJSON(event); err != nil {
			h.log.Debug().Err(err).Msg("dropping websocket client")
			delete(h.conns, conn)
			conn.Close()
		}
	}
}

// handleWebSocket upgrades the connection, sends the current version,
// and keeps the client subscribed to version events until it
// disconnects. Incoming messages are ignored.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	defer conn.Close()

	s.hub.add(conn)
	defer s.hub.remove(conn)

	s.hub.mu.Lock()
	err = conn.WriteJSON(versionEvent{Type: "version", Version: s.session.Version()})
	s.hub.mu.Unlock()
	if err != nil {
		return
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug().Err(err).Msg("websocket read")
			}
			return
		}
	}
}
