package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"photo-journal-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // clients are mobile apps, no browser origin to check
	},
}

// WebSocketHandler streams change events to connected clients: friend
// requests and acceptances addressed to the user, plus label updates for
// any photo the client explicitly watches.
type WebSocketHandler struct {
	hub         *services.EventHub
	userService *services.UserService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.EventHub, userService *services.UserService) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, userService: userService}
}

// clientMessage is what clients send: watch/unwatch a photo record.
type clientMessage struct {
	Type    string `json:"type"` // watch, unwatch
	OwnerID string `json:"owner_id"`
	PhotoID string `json:"photo_id"`
}

// HandleWebSocket handles GET /ws?token=...
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}
	userID, err := h.userService.ValidateJWT(token)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	log.Info().Str("user_id", userID).Msg("WebSocket connection established")

	out := make(chan services.Event, 16)
	var forwarders sync.WaitGroup

	forward := func(ch <-chan services.Event) {
		defer forwarders.Done()
		for event := range ch {
			select {
			case out <- event:
			default:
				log.Warn().Str("user_id", userID).Msg("Dropping event for slow WebSocket client")
			}
		}
	}

	userCh, cancelUser := h.hub.SubscribeUser(userID)
	forwarders.Add(1)
	go forward(userCh)

	// watched photo subscriptions, keyed owner/photo
	watches := make(map[string]func())
	cleanup := func() {
		cancelUser()
		for _, cancel := range watches {
			cancel()
		}
		forwarders.Wait()
		close(out)
	}

	// single writer goroutine; gorilla connections do not allow
	// concurrent writes
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for event := range out {
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			break
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Warn().Str("user_id", userID).Msg("Invalid WebSocket message")
			continue
		}

		key := msg.OwnerID + "/" + msg.PhotoID
		switch msg.Type {
		case "watch":
			if msg.OwnerID == "" || msg.PhotoID == "" {
				continue
			}
			if _, ok := watches[key]; ok {
				continue
			}
			photoCh, cancel := h.hub.SubscribePhoto(msg.OwnerID, msg.PhotoID)
			watches[key] = cancel
			forwarders.Add(1)
			go forward(photoCh)
		case "unwatch":
			if cancel, ok := watches[key]; ok {
				cancel()
				delete(watches, key)
			}
		default:
			log.Warn().Str("user_id", userID).Str("type", msg.Type).Msg("Unknown WebSocket message type")
		}
	}

	cleanup()
	<-writerDone
	log.Info().Str("user_id", userID).Msg("WebSocket connection closed")
}
