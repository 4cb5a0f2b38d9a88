package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/hungl6844/xcrab/internal/logger"
	"github.com/hungl6844/xcrab/internal/wm"
)

// Server is the optional read-only introspection surface. It never touches
// the layout tree directly: snapshots are produced by the event loop through
// the snapshot function, and events arrive via Publish.
type Server struct {
	router   *mux.Router
	snapshot func() wm.Snapshot
	upgrader websocket.Upgrader
	srv      *http.Server

	mu   sync.Mutex
	subs map[chan wm.Event]struct{}
}

// NewServer builds the debug server for the given listen address.
func NewServer(addr string, snapshot func() wm.Snapshot) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		snapshot: snapshot,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		subs: make(map[chan wm.Event]struct{}),
	}
	s.srv = &http.Server{Addr: addr, Handler: s.router}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/tree", s.handleGetTree).Methods("GET")
	api.HandleFunc("/windows", s.handleGetWindows).Methods("GET")
	api.HandleFunc("/events", s.handleEvents)
}

// Start serves in the background. Failure to bind is logged, not fatal: the
// manager keeps running without its debug surface.
func (s *Server) Start() {
	log := logger.WithComponent("api")
	go func() {
		log.Info().Str("addr", s.srv.Addr).Msg("debug API listening")
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("debug API server failed")
		}
	}()
}

// Stop shuts the listener down.
func (s *Server) Stop() {
	s.srv.Close()
}

// Publish fans an event out to every websocket subscriber. Non-blocking: a
// slow subscriber drops events rather than stalling the loop.
func (s *Server) Publish(ev wm.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Server) handleGetTree(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.snapshot())
}

func (s *Server) handleGetWindows(w http.ResponseWriter, r *http.Request) {
	leaves := s.snapshot().Leaves()
	if leaves == nil {
		leaves = []*wm.SnapshotNode{}
	}
	writeJSON(w, leaves)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	log := logger.WithComponent("api")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ch := make(chan wm.Event, 16)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}()

	for ev := range ch {
		if err := conn.WriteJSON(ev); err != nil {
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithComponent("api").Warn().Err(err).Msg("failed to encode response")
	}
}
