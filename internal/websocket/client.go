package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Максимальное время ожидания для pong от клиента
	pongWait = 60 * time.Second

	// Отправлять ping-сообщения клиенту с этим интервалом
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер сообщения от клиента
	maxMessageSize = 16 * 1024

	// Время на запись одного кадра
	writeWait = 10 * time.Second

	// Размер буфера для отправляемых сообщений
	writeBufferSize = 256
)

// Client представляет одно WebSocket соединение пользователя.
// Соединение закрывается один раз: при ошибке чтения или записи,
// переполнении очереди или остановке менеджера.
type Client struct {
	ID      uuid.UUID
	UserID  string
	conn    *websocket.Conn
	send    chan []byte // исходящие события
	manager *Manager

	done      chan struct{}
	closeOnce sync.Once
}

// NewClient создает новый экземпляр Client
func NewClient(userID string, conn *websocket.Conn, manager *Manager) *Client {
	return &Client{
		ID:      uuid.New(),
		UserID:  userID,
		conn:    conn,
		send:    make(chan []byte, writeBufferSize),
		manager: manager,
		done:    make(chan struct{}),
	}
}

// Start регистрирует клиента и запускает чтение и запись
func (c *Client) Start() {
	c.manager.AddClient(c)

	go c.readPump()
	go c.writePump()
}

// enqueue ставит событие в очередь. false, если очередь заполнена
// или клиент уже закрыт.
func (c *Client) enqueue(message []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// close снимает клиента с учёта и закрывает соединение
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.manager.RemoveClient(c.ID)
		c.conn.Close()
	})
}

func (c *Client) write(messageType int, data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}

// readPump читает события клиента до ошибки или закрытия соединения
func (c *Client) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.manager.log.Warn("неожиданное закрытие соединения", zap.String("user_id", c.UserID), zap.Error(err))
			}
			return
		}
		c.handleIncomingMessage(message)
	}
}

// writePump отправляет события из очереди и держит соединение ping-ами
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case message := <-c.send:
			if err := c.write(websocket.TextMessage, message); err != nil {
				c.manager.log.Debug("ошибка записи в соединение", zap.String("client_id", c.ID.String()), zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// handleIncomingMessage обрабатывает входящие сообщения от клиента
func (c *Client) handleIncomingMessage(message []byte) {
	var event Event
	if err := json.Unmarshal(message, &event); err != nil {
		c.manager.log.Debug("некорректное событие от клиента", zap.String("user_id", c.UserID), zap.Error(err))
		return
	}

	// Проверяем, что userID в сообщении соответствует userID клиента
	// для предотвращения подделки отправителя
	if event.UserID != "" && event.UserID != c.UserID {
		c.manager.log.Warn("подмена отправителя в событии",
			zap.String("claimed", event.UserID),
			zap.String("actual", c.UserID),
		)
		return
	}

	event.UserID = c.UserID
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	switch event.Type {
	case EventTyping, EventStopTyping:
		// Индикатор набора пересылается собеседнику как есть
		if event.ToUserID != "" && event.ToUserID != c.UserID {
			c.manager.SendToUser(event.ToUserID, event)
		}
	default:
		c.manager.log.Debug("необрабатываемый тип события", zap.String("type", string(event.Type)))
	}
}
