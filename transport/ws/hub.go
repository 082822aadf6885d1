// Package ws pushes lifecycle events to connected browsers.
//
// A Hub holds the websocket connections of this process. A Relay carries
// events between processes over redis pub/sub, so an event published by any
// API instance reaches the recipient wherever it is connected.
package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"sync"
	"time"
	"tutorhub/config"
	"tutorhub/infras/jwt"
	"tutorhub/shared/constant"
	"tutorhub/shared/event"
	"tutorhub/shared/failure"
	"tutorhub/transport/http/response"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	sendBufferSize = 16
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 512
)

type client struct {
	userID string
	conn   *websocket.Conn
	send   chan []byte
	once   sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

type Hub struct {
	jwt      jwt.JWT
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
}

func NewHub(cfg *config.Config, jwtService jwt.JWT) *Hub {
	origins := cfg.App.CORS.AllowedOrigins

	return &Hub{
		jwt: jwtService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")

				return origin == "" || len(origins) == 0 || slices.Contains(origins, constant.Asterix) || slices.Contains(origins, origin)
			},
		},
		clients: map[string]map[*client]struct{}{},
	}
}

// ServeHTTP authenticates the access token from the query string and upgrades the connection.
func (h *Hub) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	token := request.URL.Query().Get(constant.RequestParamToken)
	if token == "" {
		if header := request.Header.Get(constant.RequestHeaderAuthorization); header != "" {
			token, _ = jwt.ExtractTokenFromHeader(header)
		}
	}

	if token == "" {
		response.WithError(writer, failure.Unauthorized("Missing token"))

		return
	}

	claims, err := h.jwt.ValidateToken(request.Context(), token, jwt.AccessToken)
	if err != nil || claims.UserID == "" {
		response.WithError(writer, failure.Unauthorized("Invalid token"))

		return
	}

	conn, err := h.upgrader.Upgrade(writer, request, nil)
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("failed to upgrade websocket connection")

		return
	}

	c := &client{
		userID: claims.UserID,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}

	h.register(c)

	go h.writePump(c)

	h.readPump(c)
}

// Deliver writes the event to every connection of its recipients on this process.
func (h *Hub) Deliver(ev event.Event) int {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("type", string(ev.Type)).Msg("failed to encode websocket event")

		return 0
	}

	var slow []*client

	delivered := 0

	h.mu.RLock()
	for _, userID := range ev.Recipients {
		for c := range h.clients[userID] {
			select {
			case c.send <- payload:
				delivered++
			default:
				slow = append(slow, c)
			}
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		log.Warn().Str("user_id", c.userID).Msg("websocket client too slow, dropping connection")
		h.unregister(c)
	}

	return delivered
}

// Connected returns the number of open connections of a user.
func (h *Hub) Connected(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients[userID])
}

// Close drops every connection.
func (h *Hub) Close() {
	h.mu.Lock()
	all := h.clients
	h.clients = map[string]map[*client]struct{}{}
	h.mu.Unlock()

	for _, set := range all {
		for c := range set {
			c.close()
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[c.userID] == nil {
		h.clients[c.userID] = map[*client]struct{}{}
	}

	h.clients[c.userID][c] = struct{}{}

	log.Debug().Str("user_id", c.userID).Msg("websocket client registered")
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()

	if set, ok := h.clients[c.userID]; ok {
		delete(set, c)

		if len(set) == 0 {
			delete(h.clients, c.userID)
		}
	}

	h.mu.Unlock()

	c.close()
}

// readPump only watches for the peer going away; clients do not send anything meaningful.
func (h *Hub) readPump(c *client) {
	defer h.unregister(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("user_id", c.userID).Msg("websocket closed unexpectedly")
			}

			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})

				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					log.Warn().Err(err).Str("user_id", c.userID).Msg("failed to write websocket message")
				}

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
