package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager представляет центральный менеджер для всех WebSocket соединений
type Manager struct {
	clients      map[uuid.UUID]*Client
	clientsMutex sync.RWMutex
	userClients  map[string]map[uuid.UUID]bool // userID -> map[clientID]bool
	userMutex    sync.RWMutex
	log          *zap.Logger
}

// EventType определяет тип события WebSocket
type EventType string

const (
	EventNewMessage          EventType = "new_message"
	EventConversationDeleted EventType = "conversation_deleted"
	EventTradeRequested      EventType = "trade_requested"
	EventTradeAccepted       EventType = "trade_accepted"
	EventTyping              EventType = "typing"
	EventStopTyping          EventType = "stop_typing"
)

// Event представляет структуру сообщения для WebSocket
type Event struct {
	Type            EventType       `json:"type"`
	ConversationKey string          `json:"conversation_key,omitempty"`
	UserID          string          `json:"user_id,omitempty"`
	ToUserID        string          `json:"to_user_id,omitempty"`
	Timestamp       time.Time       `json:"timestamp"`
	Payload         json.RawMessage `json:"payload,omitempty"`
}

// NewEvent собирает событие с полезной нагрузкой в JSON
func NewEvent(eventType EventType, conversationKey string, payload interface{}) Event {
	event := Event{Type: eventType, ConversationKey: conversationKey, Timestamp: time.Now()}
	if payload != nil {
		if data, err := json.Marshal(payload); err == nil {
			event.Payload = data
		}
	}
	return event
}

// NewManager создает новый экземпляр Manager
func NewManager(log *zap.Logger) *Manager {
	return &Manager{
		clients:     make(map[uuid.UUID]*Client),
		userClients: make(map[string]map[uuid.UUID]bool),
		log:         log,
	}
}

// AddClient регистрирует нового клиента
func (m *Manager) AddClient(client *Client) {
	m.clientsMutex.Lock()
	m.clients[client.ID] = client
	m.clientsMutex.Unlock()

	// Связываем клиент с пользователем
	m.userMutex.Lock()
	if _, exists := m.userClients[client.UserID]; !exists {
		m.userClients[client.UserID] = make(map[uuid.UUID]bool)
	}
	m.userClients[client.UserID][client.ID] = true
	m.userMutex.Unlock()

	m.log.Debug("websocket клиент подключен",
		zap.String("client_id", client.ID.String()),
		zap.String("user_id", client.UserID),
	)
}

// RemoveClient удаляет клиента
func (m *Manager) RemoveClient(clientID uuid.UUID) {
	m.clientsMutex.Lock()
	client, exists := m.clients[clientID]
	delete(m.clients, clientID)
	m.clientsMutex.Unlock()

	if !exists {
		return
	}

	m.userMutex.Lock()
	if clients, ok := m.userClients[client.UserID]; ok {
		delete(clients, clientID)
		// Если это был последний клиент пользователя, удаляем запись пользователя
		if len(clients) == 0 {
			delete(m.userClients, client.UserID)
		}
	}
	m.userMutex.Unlock()

	m.log.Debug("websocket клиент отключен",
		zap.String("client_id", clientID.String()),
		zap.String("user_id", client.UserID),
	)
}

// ConnectionCount возвращает число открытых соединений пользователя
func (m *Manager) ConnectionCount(userID string) int {
	m.userMutex.RLock()
	defer m.userMutex.RUnlock()
	return len(m.userClients[userID])
}

// SendToUser отправляет событие всем соединениям конкретного пользователя.
// Если пользователь не в сети, событие отбрасывается.
func (m *Manager) SendToUser(userID string, event Event) {
	if userID == "" {
		return
	}

	m.userMutex.RLock()
	clientIDs := make([]uuid.UUID, 0, len(m.userClients[userID]))
	for id := range m.userClients[userID] {
		clientIDs = append(clientIDs, id)
	}
	m.userMutex.RUnlock()

	if len(clientIDs) == 0 {
		return
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		m.log.Error("ошибка сериализации события", zap.Error(err))
		return
	}

	for _, clientID := range clientIDs {
		m.clientsMutex.RLock()
		client, exists := m.clients[clientID]
		m.clientsMutex.RUnlock()

		if !exists {
			continue
		}

		if !client.enqueue(eventJSON) {
			// Клиент не успевает читать, соединение закрывается
			m.log.Warn("очередь клиента переполнена, соединение закрыто",
				zap.String("client_id", client.ID.String()),
			)
			client.close()
		}
	}
}

// Shutdown закрывает все соединения
func (m *Manager) Shutdown() {
	m.clientsMutex.RLock()
	clients := make([]*Client, 0, len(m.clients))
	for _, client := range m.clients {
		clients = append(clients, client)
	}
	m.clientsMutex.RUnlock()

	for _, client := range clients {
		client.close()
	}
}
