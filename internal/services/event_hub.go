package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Event types delivered to subscribers.
const (
	EventPhotoUpdated   = "photo_updated"
	EventFriendRequest  = "friend_request"
	EventFriendAccepted = "friend_accepted"
)

// Event is a change notification. UserID is the user the event is for;
// photo events additionally carry the photo id and its label set after the
// change.
type Event struct {
	Type    string   `json:"type"`
	UserID  string   `json:"user_id"`
	PhotoID string   `json:"photo_id,omitempty"`
	Labels  []string `json:"labels,omitempty"`
	ActorID string   `json:"actor_id,omitempty"`
}

type subscriber struct {
	ch chan Event
}

// EventHub is the pub/sub channel replacing the old poll-every-tick watcher:
// subscribers hear about a record only when its content actually changed.
// With a redis client configured, events round-trip through redis pub/sub so
// every service instance sees them; without one, delivery is in-process.
type EventHub struct {
	mu        sync.RWMutex
	nextID    int
	photoSubs map[string]map[int]*subscriber // ownerID/photoID -> subscribers
	userSubs  map[string]map[int]*subscriber // userID -> subscribers
	rdb       *redis.Client
}

// NewEventHub creates a hub. rdb may be nil for in-process-only delivery.
func NewEventHub(rdb *redis.Client) *EventHub {
	return &EventHub{
		photoSubs: make(map[string]map[int]*subscriber),
		userSubs:  make(map[string]map[int]*subscriber),
		rdb:       rdb,
	}
}

func photoTopic(ownerID, photoID string) string {
	return ownerID + "/" + photoID
}

// SubscribePhoto registers interest in one photo record. The returned cancel
// func releases the subscription; after cancel no further events arrive,
// though an event already in the channel buffer may still be read.
func (h *EventHub) SubscribePhoto(ownerID, photoID string) (<-chan Event, func()) {
	return h.subscribe(h.photoSubs, photoTopic(ownerID, photoID))
}

// SubscribeUser registers interest in all events addressed to a user. Used
// by the WebSocket handler.
func (h *EventHub) SubscribeUser(userID string) (<-chan Event, func()) {
	return h.subscribe(h.userSubs, userID)
}

func (h *EventHub) subscribe(subs map[string]map[int]*subscriber, topic string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++

	m, ok := subs[topic]
	if !ok {
		m = make(map[int]*subscriber)
		subs[topic] = m
	}
	sub := &subscriber{ch: make(chan Event, 8)}
	m[id] = sub

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		m, ok := subs[topic]
		if !ok {
			return
		}
		if _, ok := m[id]; !ok {
			return
		}
		delete(m, id)
		if len(m) == 0 {
			delete(subs, topic)
		}
		// Publishes hold the lock while sending, so closing here is safe
		// and lets range-based consumers terminate.
		close(sub.ch)
	}
	return sub.ch, cancel
}

// Publish delivers an event. With redis configured the event is published
// there and delivered locally by the bridge; otherwise it fans out directly.
func (h *EventHub) Publish(ctx context.Context, event Event) {
	if h.rdb != nil {
		payload, err := json.Marshal(event)
		if err != nil {
			log.Error().Err(err).Msg("Failed to marshal event")
			return
		}
		channel := "events:user:" + event.UserID
		if err := h.rdb.Publish(ctx, channel, payload).Err(); err != nil {
			log.Error().Err(err).Str("channel", channel).Msg("Failed to publish event, delivering locally")
			h.deliver(event)
		}
		return
	}
	h.deliver(event)
}

func (h *EventHub) deliver(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if event.Type == EventPhotoUpdated {
		if m, ok := h.photoSubs[photoTopic(event.UserID, event.PhotoID)]; ok {
			for _, sub := range m {
				select {
				case sub.ch <- event:
				default:
					log.Warn().Str("photo_id", event.PhotoID).Msg("Dropping event for slow subscriber")
				}
			}
		}
	}

	if m, ok := h.userSubs[event.UserID]; ok {
		for _, sub := range m {
			select {
			case sub.ch <- event:
			default:
				log.Warn().Str("user_id", event.UserID).Msg("Dropping event for slow subscriber")
			}
		}
	}
}

// StartRedisBridge subscribes to the events:user:* pattern and re-delivers
// incoming events to local subscribers. Returns immediately; the bridge
// goroutine stops when ctx is cancelled.
func (h *EventHub) StartRedisBridge(ctx context.Context) {
	if h.rdb == nil {
		return
	}
	sub := h.rdb.PSubscribe(ctx, "events:user:*")
	ch := sub.Channel()

	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Error().Err(err).Str("channel", msg.Channel).Msg("Invalid event payload")
					continue
				}
				if event.UserID == "" {
					event.UserID = strings.TrimPrefix(msg.Channel, "events:user:")
				}
				h.deliver(event)
			}
		}
	}()
}
