package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rajivgeraev/skillswap-api/internal/apperr"
	"github.com/rajivgeraev/skillswap-api/internal/models"
	"github.com/rajivgeraev/skillswap-api/internal/websocket"
)

// StorageKey задаёт префикс ключа, под которым хранится карта диалогов пользователя
const StorageKey = "skillswap_chat_histories_v2"

// PartnerReply содержит автоматический ответ собеседника
const PartnerReply = "Thanks for reaching out! I'll get back to you about this job soon."

const timestampLayout = "15:04"

// BlobStore хранит сериализованную карту диалогов
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Notifier доставляет события в открытые соединения пользователя
type Notifier interface {
	SendToUser(userID string, event websocket.Event)
}

type nopNotifier struct{}

func (nopNotifier) SendToUser(string, websocket.Event) {}

// Store ведёт историю диалогов пользователей, ключ диалога составлен из собеседника и работы.
//
// Карта диалогов пользователя целиком перезаписывается при каждом изменении.
// Внутри процесса чтение-изменение-запись сериализуется мьютексом; между
// несколькими экземплярами сервиса побеждает последняя запись.
type Store struct {
	blobs      BlobStore
	notifier   Notifier
	log        *zap.Logger
	replyDelay time.Duration
	afterFunc  func(time.Duration, func())
	now        func() time.Time

	mu     sync.Mutex
	active map[string]string // userID -> ключ активного диалога
}

// Option настраивает Store
type Option func(*Store)

// WithNotifier задаёт получателя событий чата
func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithReplyDelay задаёт задержку автоматического ответа
func WithReplyDelay(d time.Duration) Option {
	return func(s *Store) { s.replyDelay = d }
}

// WithScheduler подменяет планировщик отложенного ответа
func WithScheduler(afterFunc func(time.Duration, func())) Option {
	return func(s *Store) { s.afterFunc = afterFunc }
}

// WithClock подменяет источник текущего времени
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore создаёт хранилище диалогов
func NewStore(blobs BlobStore, log *zap.Logger, opts ...Option) *Store {
	s := &Store{
		blobs:      blobs,
		notifier:   nopNotifier{},
		log:        log,
		replyDelay: 1500 * time.Millisecond,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		now:    time.Now,
		active: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func storageKey(userID string) string {
	return StorageKey + ":" + userID
}

// load читает карту диалогов. Повреждённые данные дают пустую карту.
func (s *Store) load(ctx context.Context, userID string) (map[string]*models.ChatHistory, error) {
	data, err := s.blobs.Get(ctx, storageKey(userID))
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения истории чатов: %w", err)
	}

	histories := make(map[string]*models.ChatHistory)
	if len(data) == 0 {
		return histories, nil
	}
	if err := json.Unmarshal(data, &histories); err != nil {
		s.log.Warn("повреждённая история чатов заменена пустой",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return make(map[string]*models.ChatHistory), nil
	}
	if histories == nil {
		// "null" разбирается без ошибки, но обнуляет карту
		histories = make(map[string]*models.ChatHistory)
	}
	for key, h := range histories {
		if h == nil {
			delete(histories, key)
		}
	}
	return histories, nil
}

func (s *Store) save(ctx context.Context, userID string, histories map[string]*models.ChatHistory) error {
	data, err := json.Marshal(histories)
	if err != nil {
		return fmt.Errorf("ошибка сериализации истории чатов: %w", err)
	}
	if err := s.blobs.Set(ctx, storageKey(userID), data); err != nil {
		return fmt.Errorf("ошибка сохранения истории чатов: %w", err)
	}
	return nil
}

// Open делает диалог активным. Если диалог уже есть, а данные собеседника
// изменились, снимок собеседника обновляется, сообщения сохраняются.
func (s *Store) Open(ctx context.Context, userID string, partner models.ChatPartner) (*models.ChatHistory, error) {
	if strings.TrimSpace(partner.Identifier) == "" || strings.TrimSpace(partner.JobID) == "" {
		return nil, apperr.BadRequest("Необходимо указать собеседника и работу")
	}
	if partner.Identifier == userID {
		return nil, apperr.BadRequest("Нельзя открыть чат с самим собой")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	histories, err := s.load(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Ошибка загрузки чатов", err)
	}

	key := partner.Key()
	history, exists := histories[key]
	changed := false
	switch {
	case !exists:
		history = &models.ChatHistory{Partner: partner, Messages: []models.ChatMessage{}}
		histories[key] = history
		changed = true
	case history.Partner != partner:
		history.Partner = partner
		changed = true
	}

	if changed {
		if err := s.save(ctx, userID, histories); err != nil {
			return nil, apperr.Internal("Ошибка сохранения чатов", err)
		}
	}

	s.active[userID] = key
	return cloneHistory(history), nil
}

// Send добавляет сообщение пользователя в активный диалог и планирует ответ
// собеседника. Пустой текст или отсутствие активного диалога ничего не меняют, тогда
// возвращается nil.
func (s *Store) Send(ctx context.Context, userID, text string) (*models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.active[userID]
	if !ok {
		return nil, nil
	}

	histories, err := s.load(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Ошибка загрузки чатов", err)
	}
	history, exists := histories[key]
	if !exists {
		return nil, nil
	}

	msg := models.ChatMessage{
		Sender:    models.SenderUser,
		Text:      text,
		Timestamp: s.now().Format(timestampLayout),
	}
	history.Messages = append(history.Messages, msg)
	history.LastMessage = msg.Text

	if err := s.save(ctx, userID, histories); err != nil {
		return nil, apperr.Internal("Ошибка сохранения сообщения", err)
	}

	s.notifier.SendToUser(userID, websocket.NewEvent(websocket.EventNewMessage, key, msg))
	s.afterFunc(s.replyDelay, func() { s.reply(userID, key) })

	return &msg, nil
}

// reply добавляет автоматический ответ в диалог key, если он ещё существует
func (s *Store) reply(userID, key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	histories, err := s.load(ctx, userID)
	if err != nil {
		s.log.Error("ошибка загрузки чатов для ответа", zap.String("user_id", userID), zap.Error(err))
		return
	}
	history, exists := histories[key]
	if !exists {
		return
	}

	msg := models.ChatMessage{
		Sender:    models.SenderPartner,
		Text:      PartnerReply,
		Timestamp: s.now().Format(timestampLayout),
	}
	history.Messages = append(history.Messages, msg)
	history.LastMessage = msg.Text

	if err := s.save(ctx, userID, histories); err != nil {
		s.log.Error("ошибка сохранения ответа", zap.String("user_id", userID), zap.Error(err))
		return
	}

	s.notifier.SendToUser(userID, websocket.NewEvent(websocket.EventNewMessage, key, msg))
}

// Delete удаляет диалог; если он был активным, активный выбор сбрасывается.
// Возвращает false, если диалога не было.
func (s *Store) Delete(ctx context.Context, userID, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	histories, err := s.load(ctx, userID)
	if err != nil {
		return false, apperr.Internal("Ошибка загрузки чатов", err)
	}
	if _, exists := histories[key]; !exists {
		return false, nil
	}

	delete(histories, key)
	if err := s.save(ctx, userID, histories); err != nil {
		return false, apperr.Internal("Ошибка удаления чата", err)
	}

	if s.active[userID] == key {
		delete(s.active, userID)
	}

	s.notifier.SendToUser(userID, websocket.NewEvent(websocket.EventConversationDeleted, key, nil))
	return true, nil
}

// List возвращает все диалоги пользователя
func (s *Store) List(ctx context.Context, userID string) (map[string]models.ChatHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	histories, err := s.load(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Ошибка загрузки чатов", err)
	}

	result := make(map[string]models.ChatHistory, len(histories))
	for key, h := range histories {
		result[key] = *cloneHistory(h)
	}
	return result, nil
}

// Get возвращает один диалог
func (s *Store) Get(ctx context.Context, userID, key string) (*models.ChatHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	histories, err := s.load(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Ошибка загрузки чатов", err)
	}
	history, exists := histories[key]
	if !exists {
		return nil, apperr.NotFound("Чат не найден")
	}
	return cloneHistory(history), nil
}

// Active возвращает ключ активного диалога пользователя
func (s *Store) Active(userID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.active[userID]
	return key, ok
}

func cloneHistory(h *models.ChatHistory) *models.ChatHistory {
	c := *h
	c.Messages = append([]models.ChatMessage{}, h.Messages...)
	return &c
}
