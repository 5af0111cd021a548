package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/msto63/codasai/foundation/state"
	"github.com/msto63/codasai/internal/viewer/session"
	"github.com/msto63/codasai/pkg/core/logging"
)

const (
	readTimeout  = 120 * time.Second
	writeTimeout = 10 * time.Second
)

// WSMessage is a client message. Payload carries the link for "hash".
type WSMessage struct {
	Type    string          `json:"type"` // "hash", "back", "forward", "ping"
	Payload json.RawMessage `json:"payload,omitempty"`
}

// WSResponse is a server message
type WSResponse struct {
	Type    string      `json:"type"` // "session", "view", "guide", "error", "pong"
	Payload interface{} `json:"payload,omitempty"`
}

// WSSessionPayload is sent once after the upgrade
type WSSessionPayload struct {
	ID     string `json:"id"`
	Prefix string `json:"prefix"`
	Title  string `json:"title,omitempty"`
}

// WSViewPayload carries the view after a dispatch or navigation
type WSViewPayload struct {
	Outcome string       `json:"outcome"`
	View    session.View `json:"view"`
}

// WSErrorPayload represents an error payload
type WSErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// wsClient serializes writes to one connection
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) send(resp WSResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(resp)
}

// WebSocketHandler gives every connection its own viewer session
type WebSocketHandler struct {
	sessions *session.Manager
	title    func() string
	upgrader websocket.Upgrader
	logger   *logging.Logger

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

// NewWebSocketHandler creates a websocket handler. title may be nil.
func NewWebSocketHandler(sessions *session.Manager, title func() string) *WebSocketHandler {
	return &WebSocketHandler{
		sessions: sessions,
		title:    title,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
		logger:  logging.New("viewer-websocket"),
		clients: make(map[*wsClient]struct{}),
	}
}

// checkOrigin accepts non-browser clients, pages served by this host and
// pages served from loopback
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	return isLoopback(u.Hostname())
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// ServeHTTP upgrades the connection. ?session= resumes a known session ID.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}

	sess, err := h.sessions.Get(r.URL.Query().Get("session"))
	if err != nil {
		h.logger.Error("session creation failed", "error", err)
		conn.Close()
		return
	}
	h.handleConnection(r.Context(), &wsClient{conn: conn}, sess)
}

// Broadcast sends resp to every open connection
func (h *WebSocketHandler) Broadcast(resp WSResponse) {
	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		if err := c.send(resp); err != nil {
			h.logger.Warn("WebSocket broadcast failed", "error", err)
		}
	}
}

// Connections returns the number of open connections
func (h *WebSocketHandler) Connections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *WebSocketHandler) handleConnection(ctx context.Context, client *wsClient, sess *session.Session) {
	conn := client.conn
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, client)
		h.mu.Unlock()
		conn.Close()
	}()

	h.logger.Info("WebSocket connection established",
		"remote", conn.RemoteAddr().String(),
		"session", sess.ID(),
	)

	hello := WSSessionPayload{ID: sess.ID(), Prefix: sess.Prefix()}
	if h.title != nil {
		hello.Title = h.title()
	}
	h.reply(client, WSResponse{Type: "session", Payload: hello})

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Error("WebSocket read error", "error", err)
			} else {
				h.logger.Info("WebSocket connection closed", "session", sess.ID())
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))

		switch msg.Type {
		case "ping":
			h.reply(client, WSResponse{Type: "pong"})

		case "hash":
			var link string
			if err := json.Unmarshal(msg.Payload, &link); err != nil {
				h.sendError(client, "INVALID_INPUT", "hash payload must be a string")
				continue
			}
			view, outcome := sess.Dispatch(ctx, link)
			if outcome == state.OutcomeIgnored {
				continue
			}
			h.sendView(client, outcome.String(), view)

		case "back", "forward":
			step := sess.Back
			if msg.Type == "forward" {
				step = sess.Forward
			}
			view, ok := step(ctx)
			if !ok {
				h.sendError(client, "NOT_FOUND", "no "+msg.Type+" entry in history")
				continue
			}
			h.sendView(client, state.OutcomeHandled.String(), view)

		default:
			h.sendError(client, "INVALID_INPUT", "Unknown message type: "+msg.Type)
		}
	}
}

func (h *WebSocketHandler) sendView(client *wsClient, outcome string, view session.View) {
	h.reply(client, WSResponse{Type: "view", Payload: WSViewPayload{Outcome: outcome, View: view}})
}

func (h *WebSocketHandler) reply(client *wsClient, resp WSResponse) {
	if err := client.send(resp); err != nil {
		h.logger.Error("WebSocket send error", "error", err)
	}
}

func (h *WebSocketHandler) sendError(client *wsClient, code, message string) {
	h.reply(client, WSResponse{
		Type:    "error",
		Payload: WSErrorPayload{Code: code, Message: message},
	})
}
