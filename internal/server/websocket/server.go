// Package websocket streams tracker events to connected clients.
//
// Each connected client gets its own hub subscription; events published to
// the hub fan out to every client as JSON text frames. Clients are
// consumers only, so incoming messages are drained and discarded.
package websocket

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"pathwatch/internal/domain/events"
	"pathwatch/internal/domain/ports"
	"pathwatch/internal/hub"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 15 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 90 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024

	// Send buffer size per client.
	sendBufferSize = 256

	// Application-level heartbeat interval.
	heartbeatInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The server binds to loopback by default; origin checks are left
		// to deployments that expose it further.
		return true
	},
}

// Server bridges the event hub to WebSocket clients.
type Server struct {
	eventHub ports.EventHub

	mu      sync.RWMutex
	clients map[string]*Client

	heartbeatDone chan struct{}
	heartbeatSeq  int64
	startTime     time.Time
	started       bool
}

// NewServer creates a new WebSocket server.
func NewServer(eventHub ports.EventHub) *Server {
	return &Server{
		eventHub:      eventHub,
		clients:       make(map[string]*Client),
		heartbeatDone: make(chan struct{}),
		startTime:     time.Now(),
	}
}

// Start begins the heartbeat broadcaster.
func (s *Server) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go s.heartbeatLoop()
}

// Stop closes all client connections.
func (s *Server) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	clients := s.clients
	s.clients = make(map[string]*Client)
	s.mu.Unlock()

	close(s.heartbeatDone)
	for _, client := range clients {
		client.Close()
	}
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// HandleWebSocket upgrades an HTTP request and wires the client to the hub.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade connection")
		return
	}

	client := NewClient(conn, func(id string) {
		s.eventHub.Unsubscribe(id)
		s.removeClient(id)
	})

	s.mu.Lock()
	s.clients[client.ID()] = client
	s.mu.Unlock()

	sub := hub.NewChannelSubscriber(client.ID(), sendBufferSize)
	s.eventHub.Subscribe(sub)

	go s.forwardEvents(client, sub)
	client.Start()

	log.Info().Str("client_id", client.ID()).Msg("websocket client connected")
}

// forwardEvents serializes hub events for one client.
func (s *Server) forwardEvents(client *Client, sub *hub.ChannelSubscriber) {
	for {
		select {
		case <-sub.Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			data, err := event.ToJSON()
			if err != nil {
				log.Warn().Err(err).Msg("failed to serialize event")
				continue
			}
			client.Send(data)
		}
	}
}

func (s *Server) removeClient(id string) {
	s.mu.Lock()
	delete(s.clients, id)
	s.mu.Unlock()
	log.Info().Str("client_id", id).Msg("websocket client disconnected")
}

// heartbeatLoop publishes periodic heartbeat events to the hub.
func (s *Server) heartbeatLoop() {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.heartbeatDone:
			return
		case <-ticker.C:
			seq := atomic.AddInt64(&s.heartbeatSeq, 1)
			uptime := int64(time.Since(s.startTime).Seconds())
			s.eventHub.Publish(events.NewHeartbeatEvent(seq, uptime))
		}
	}
}
