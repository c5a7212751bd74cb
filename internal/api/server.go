package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Benjythebee/stock-sim-server/internal/bots"
	"github.com/Benjythebee/stock-sim-server/internal/game"
	"github.com/Benjythebee/stock-sim-server/internal/metrics"
	"github.com/Benjythebee/stock-sim-server/internal/powers"
)

const (
	// wsFrameLimit is the inbound frame budget per client. Frames over it
	// are dropped without a reply.
	wsFrameLimit  = 20
	wsFrameWindow = time.Second

	// apiLimit throttles the REST routes per IP.
	apiLimit  = 100
	apiWindow = time.Minute
)

// Server exposes the game over HTTP: a small REST surface for the lobby
// and catalogues, prometheus metrics, and the websocket clients play over.
type Server struct {
	manager *game.Manager

	wsLimiter  *RateLimiter
	apiLimiter *RateLimiter

	upgrader    websocket.Upgrader
	corsOrigins []string // Allowed origins (empty = allow all)

	log zerolog.Logger
}

// NewServer wires the room manager behind the HTTP surface.
func NewServer(manager *game.Manager, corsOrigins []string, log zerolog.Logger) *Server {
	s := &Server{
		manager:     manager,
		wsLimiter:   NewRateLimiter(wsFrameLimit, wsFrameWindow),
		apiLimiter:  NewRateLimiter(apiLimit, apiWindow),
		corsOrigins: corsOrigins,
		log:         log.With().Str("component", "api").Logger(),
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return s.checkOrigin(r.Header.Get("Origin"))
		},
	}
	return s
}

// checkOrigin checks an Origin header against the whitelist. An empty
// whitelist allows all, an empty header is a same-origin request.
func (s *Server) checkOrigin(origin string) bool {
	if len(s.corsOrigins) == 0 {
		return true
	}
	if origin == "" {
		return true
	}
	for _, allowed := range s.corsOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	allowedOrigins := s.corsOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/", s.handleHealth)
	r.Get("/zhealth", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.apiLimiter.Middleware)
		r.Get("/rooms", s.handleRooms)
		r.Get("/powers", s.handlePowers)
		r.Get("/bots", s.handleBots)
	})

	r.Handle("/metrics", promhttp.Handler())

	// WebSocket
	r.Get("/ws", s.handleWebSocket)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.manager.OpenRooms())
}

func (s *Server) handlePowers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, powers.Catalogue)
}

func (s *Server) handleBots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, bots.Catalog)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// handleWebSocket seats one client in a room. Players create the room on
// first arrival, spectators only ever join existing ones. The handler
// goroutine becomes the connection's read pump and stays until the peer
// goes away.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	roomID := q.Get("room")
	if roomID == "" {
		http.Error(w, "room required", http.StatusBadRequest)
		return
	}
	username := q.Get("username")
	spectator := q.Get("spectator") == "1"
	resumeID := resumeIDFromToken(q.Get("prevSessionData"), roomID)

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	var room *game.Room
	if spectator {
		existing, ok := s.manager.Get(roomID)
		if !ok {
			s.refuse(ws, "room not found")
			return
		}
		room = existing
	} else {
		room = s.manager.GetOrCreate(roomID)
	}

	conn := newWSConn(ws)
	clientID, ok := room.Join(conn, username, spectator, resumeID)
	if !ok {
		s.refuse(ws, "room is closing")
		return
	}

	metrics.ConnectedClients.Inc()
	s.log.Info().
		Str("room", roomID).
		Str("client", clientID).
		Bool("spectator", spectator).
		Msg("websocket connected")

	go conn.writePump()
	conn.readPump(room, clientID, s.wsLimiter)

	room.Disconnect(clientID, conn)
	conn.Close()
	metrics.ConnectedClients.Dec()
	s.log.Info().Str("room", roomID).Str("client", clientID).Msg("websocket closed")
}

// refuse answers a doomed upgrade with an error frame and closes the
// socket. Only called before the pumps start, so writing directly is
// safe.
func (s *Server) refuse(ws *websocket.Conn, reason string) {
	raw, _ := json.Marshal(game.ErrorMessage{Type: game.MsgError, Message: reason})
	ws.SetWriteDeadline(time.Now().Add(writeWait))
	ws.WriteMessage(websocket.TextMessage, raw)
	ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	ws.Close()
}

// resumeIDFromToken extracts the participant id from a prevSessionData
// token. A token only resumes a session in the room it names.
func resumeIDFromToken(token, roomID string) string {
	prefix := roomID + "-"
	if !strings.HasPrefix(token, prefix) {
		return ""
	}
	return strings.TrimPrefix(token, prefix)
}

// Shutdown stops the limiters' cleanup goroutines.
func (s *Server) Shutdown() {
	s.wsLimiter.Stop()
	s.apiLimiter.Stop()
}
