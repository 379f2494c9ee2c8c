package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"CoverBot/bot/journey"
	"CoverBot/internal/lib/sl"
)

const responseTimeout = 30 * time.Second

// ClientMessageHandler feeds widget responses coming from a browser back into the journey.
type ClientMessageHandler interface {
	RespondRaw(ctx context.Context, product, id string, raw []byte) (*journey.State, error)
	RespondText(ctx context.Context, product, id, text string) (*journey.State, error)
}

// Event represents a WebSocket event sent to journey subscribers.
type Event struct {
	Type      string      `json:"type"` // "typing", "bot_message", "user_message", "prompt", "error"
	JourneyID string      `json:"journey_id"`
	Data      interface{} `json:"data"`
}

type delivery struct {
	key    string
	client *Client
	data   []byte
}

// Hub keeps WebSocket clients subscribed per journey and pushes interpreter
// events to them. It implements journey.Presenter.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan delivery
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	handler    ClientMessageHandler
	log        *slog.Logger
}

// NewHub creates a new Hub instance.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan delivery, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.With(sl.Module("ws.hub")),
	}
}

// SetHandler sets the handler for incoming client messages.
func (h *Hub) SetHandler(handler ClientMessageHandler) {
	h.handler = handler
}

func journeyKey(product, id string) string {
	return product + "/" + id
}

// Run starts the hub's event loop until ctx is done. Should be called in a goroutine.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		h.mu.Lock()
		for client := range h.clients {
			close(client.send)
			delete(h.clients, client)
		}
		h.mu.Unlock()
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case d := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if d.client != nil && client != d.client {
					continue
				}
				if d.client == nil && client.key != d.key {
					continue
				}
				select {
				case client.send <- d.data:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Subscribers returns the number of clients watching a journey.
func (h *Hub) Subscribers(product, id string) int {
	key := journeyKey(product, id)
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for client := range h.clients {
		if client.key == key {
			n++
		}
	}
	return n
}

func (h *Hub) publish(ctx context.Context, d delivery) error {
	select {
	case h.broadcast <- d:
		return nil
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) send(ctx context.Context, state *journey.State, eventType string, data interface{}) error {
	raw, err := json.Marshal(&Event{Type: eventType, JourneyID: state.ID, Data: data})
	if err != nil {
		return err
	}
	return h.publish(ctx, delivery{key: journeyKey(state.Product, state.ID), data: raw})
}

// Typing sends a typing event to the journey's subscribers.
func (h *Hub) Typing(ctx context.Context, state *journey.State) error {
	return h.send(ctx, state, "typing", map[string]any{
		"step_id":   state.CurrentStep,
		"is_typing": state.IsTyping,
	})
}

// Say sends a transcript entry as a bot_message or user_message event.
func (h *Hub) Say(ctx context.Context, state *journey.State, entry journey.Entry) error {
	event := "bot_message"
	if entry.Role == journey.RoleUser {
		event = "user_message"
	}
	return h.send(ctx, state, event, entry)
}

// Ask sends a prompt event describing the widget to render.
func (h *Hub) Ask(ctx context.Context, state *journey.State, prompt journey.Prompt) error {
	return h.send(ctx, state, "prompt", prompt)
}

func (h *Hub) sendError(client *Client, err error) {
	raw, _ := json.Marshal(&Event{Type: "error", JourneyID: client.id, Data: err.Error()})
	_ = h.publish(context.Background(), delivery{client: client, data: raw})
}

// clientEvent represents an incoming WebSocket message from a journey page.
type clientEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// HandleClientMessage parses and dispatches an incoming message from a client.
func (h *Hub) HandleClientMessage(client *Client, raw []byte) {
	if h.handler == nil {
		return
	}

	var event clientEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		h.log.Warn("failed to parse client ws message", sl.Err(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), responseTimeout)
	defer cancel()

	var err error
	switch event.Type {
	case "respond":
		_, err = h.handler.RespondRaw(ctx, client.product, client.id, event.Data)
	case "text":
		var data struct {
			Text string `json:"text"`
		}
		if err = json.Unmarshal(event.Data, &data); err != nil {
			break
		}
		_, err = h.handler.RespondText(ctx, client.product, client.id, data.Text)
	default:
		return
	}
	if err != nil {
		h.log.Debug("client response rejected",
			slog.String("journey_id", client.id),
			slog.String("username", client.username),
			sl.Err(err),
		)
		h.sendError(client, err)
	}
}
