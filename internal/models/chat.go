package models

import "fmt"

// Отправители сообщений в чате
const (
	SenderUser    = "user"
	SenderPartner = "partner"
)

// ChatPartner описывает собеседника и работу, к которой привязан диалог
type ChatPartner struct {
	Identifier     string `json:"identifier"`
	DisplayName    string `json:"display_name"`
	JobID          string `json:"job_id"`
	JobTitle       string `json:"job_title"`
	JobDescription string `json:"job_description"`
	AvatarColor    string `json:"avatar_color"`
}

// Key возвращает ключ диалога: один собеседник и одна работа
func (p ChatPartner) Key() string {
	return ConversationKey(p.Identifier, p.JobID)
}

// ConversationKey формирует ключ вида "<identifier>_job_<jobID>"
func ConversationKey(identifier, jobID string) string {
	return fmt.Sprintf("%s_job_%s", identifier, jobID)
}

// ChatMessage представляет сообщение; после добавления не изменяется
type ChatMessage struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// ChatHistory хранит диалог с одним собеседником по одной работе
type ChatHistory struct {
	Partner     ChatPartner   `json:"partner"`
	Messages    []ChatMessage `json:"messages"`
	LastMessage string        `json:"last_message"`
}
