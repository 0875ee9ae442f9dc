// internal/ws/hub.go
package ws

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"arrears-service/internal/domain/auth"
)

type principalKey struct {
	kind auth.PrincipalKind
	id   int64
}

// Hub fans task lifecycle events out to connected clients. A principal may
// hold several connections; events go to all of them.
type Hub struct {
	clients map[principalKey]map[*Client]bool
	mu      sync.RWMutex

	Register   chan *Client
	unregister chan *Client
	broadcast  chan *targetedMessage

	logger *zap.Logger
}

type targetedMessage struct {
	target  principalKey
	message *Message
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[principalKey]map[*Client]bool),
		Register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *targetedMessage, 256),
		logger:     logger,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	key := principalKey{kind: client.principal.Kind, id: client.principal.ID}

	h.mu.Lock()
	if h.clients[key] == nil {
		h.clients[key] = make(map[*Client]bool)
	}
	h.clients[key][client] = true
	h.mu.Unlock()

	h.logger.Info("ws client connected",
		zap.String("kind", string(key.kind)),
		zap.Int64("principal_id", key.id),
	)

	client.Send(NewMessage(EventConnected, map[string]interface{}{
		"kind": client.principal.Kind,
		"id":   client.principal.ID,
		"role": client.principal.Role,
	}))
}

func (h *Hub) unregisterClient(client *Client) {
	key := principalKey{kind: client.principal.Kind, id: client.principal.ID}

	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[key]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			close(client.send)
			if len(clients) == 0 {
				delete(h.clients, key)
			}
		}
	}
}

func (h *Hub) deliver(msg *targetedMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[msg.target] {
		client.Send(msg.message)
	}
}

// TaskAssigned notifies a caller that a new batch is waiting.
func (h *Hub) TaskAssigned(callerID int64, taskID string, customers int) {
	h.broadcast <- &targetedMessage{
		target: principalKey{kind: auth.KindCaller, id: callerID},
		message: NewMessage(EventTaskAssigned, TaskEventData{
			TaskID:    taskID,
			Customers: customers,
		}),
	}
}

// TaskCompleted notifies a caller that one of their batches finished.
func (h *Hub) TaskCompleted(callerID int64, taskID string) {
	h.broadcast <- &targetedMessage{
		target:  principalKey{kind: auth.KindCaller, id: callerID},
		message: NewMessage(EventTaskCompleted, TaskEventData{TaskID: taskID}),
	}
}

// TotalClients reports the number of open connections.
func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for key, clients := range h.clients {
		for client := range clients {
			close(client.send)
			client.conn.Close()
		}
		delete(h.clients, key)
	}
}
