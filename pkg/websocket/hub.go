package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Hub управляет всеми клиентами и адресной рассылкой: по пользователю
// и по роли (уведомления workflow адресуются ролям).
type Hub struct {
	clients     map[*Client]bool
	userClients map[uint64][]*Client
	roleClients map[string][]*Client
	Register    chan *Client
	unregister  chan *Client
	mu          sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		userClients: make(map[uint64][]*Client),
		roleClients: make(map[string][]*Client),
		Register:    make(chan *Client),
		unregister:  make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			h.userClients[client.UserID] = append(h.userClients[client.UserID], client)
			h.roleClients[client.Role] = append(h.roleClients[client.Role], client)
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.userClients[client.UserID] = removeClient(h.userClients[client.UserID], client)
				if len(h.userClients[client.UserID]) == 0 {
					delete(h.userClients, client.UserID)
				}
				h.roleClients[client.Role] = removeClient(h.roleClients[client.Role], client)
				if len(h.roleClients[client.Role]) == 0 {
					delete(h.roleClients, client.Role)
				}
			}
			h.mu.Unlock()
		}
	}
}

func removeClient(clients []*Client, target *Client) []*Client {
	for i, c := range clients {
		if c == target {
			return append(clients[:i], clients[i+1:]...)
		}
	}
	return clients
}

// SendMessageToUser отправляет уведомление конкретному пользователю.
func (h *Hub) SendMessageToUser(userID uint64, payload interface{}, messageType string) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.send(h.userClients[userID], payload, messageType)
}

// SendMessageToRole отправляет уведомление всем подключенным пользователям
// с данной ролью.
func (h *Hub) SendMessageToRole(role string, payload interface{}, messageType string) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.send(h.roleClients[role], payload, messageType)
}

func (h *Hub) send(clients []*Client, payload interface{}, messageType string) error {
	envelope := Envelope{
		Type:      messageType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}

	messageBytes, err := json.Marshal(envelope)
	if err != nil {
		log.Printf("Ошибка сериализации сообщения для WebSocket: %v", err)
		return err
	}

	for _, client := range clients {
		select {
		case client.Send <- messageBytes:
		default:
			// Переполненный буфер клиента не должен блокировать рассылку.
		}
	}
	return nil
}
