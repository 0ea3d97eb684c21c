package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rajivgeraev/skillswap-api/internal/utils"
)

// TokenAuthenticator проверяет токен сессии
type TokenAuthenticator interface {
	Authenticate(tokenString string) (*utils.Claims, error)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler принимает соединения вида /ws?token=<jwt>
func Handler(manager *Manager, auth TokenAuthenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := auth.Authenticate(r.URL.Query().Get("token"))
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			manager.log.Warn("ошибка апгрейда соединения", zap.Error(err))
			return
		}

		NewClient(claims.UserID, conn, manager).Start()
	}
}
