// Package ws доставляет события пользователям через WebSocket.
package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/okalab/okalab-backend/internal/goroutine"
	"github.com/okalab/okalab-backend/internal/logger"
)

// Hub управляет всеми WebSocket клиентами. Клиенты группируются по email,
// у одного пользователя может быть несколько вкладок.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	ctx        context.Context
}

type message struct {
	email   string
	payload []byte
}

// Envelope формат сообщения клиенту: "type" имя события, "data" полезная нагрузка.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// NewHub создаёт новый хаб. Хаб работает, пока не отменён ctx.
func NewHub(ctx context.Context) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 256),
		ctx:        ctx,
	}
}

// Run запускает главный цикл хаба.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.send(msg.email, msg.payload)
		case <-h.ctx.Done():
			h.closeAll()
			return
		}
	}
}

// Register добавляет клиента.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// Notify реализует notify.Notifier. Если очередь переполнена, событие теряется:
// доставка best-effort и не должна тормозить команды.
func (h *Hub) Notify(email, event string, data any) {
	raw, err := json.Marshal(Envelope{Type: event, Data: data})
	if err != nil {
		logger.Log.WithError(err).WithField("event", event).Error("ws: failed to encode event")
		return
	}

	select {
	case h.broadcast <- message{email: email, payload: raw}:
	case <-h.ctx.Done():
	default:
		logger.Log.WithFields(map[string]interface{}{
			"email": email,
			"event": event,
		}).Warn("ws: broadcast queue full, event dropped")
	}
}

// Connected число подключений пользователя.
func (h *Hub) Connected(email string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[email])
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.email]; !ok {
		h.clients[client.email] = make(map[*Client]struct{})
	}
	h.clients[client.email][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.email]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)
		}
		if len(clients) == 0 {
			delete(h.clients, client.email)
		}
	}
}

func (h *Hub) send(email string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[email] {
		select {
		case client.send <- payload:
		default:
			// Медленный клиент отключается.
			c := client
			goroutine.SafeGo("ws.close", c.Close)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for email, clients := range h.clients {
		for client := range clients {
			close(client.send)
		}
		delete(h.clients, email)
	}
}
