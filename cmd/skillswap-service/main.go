package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/zap"

	"github.com/rajivgeraev/skillswap-api/internal/apperr"
	"github.com/rajivgeraev/skillswap-api/internal/cache"
	"github.com/rajivgeraev/skillswap-api/internal/config"
	"github.com/rajivgeraev/skillswap-api/internal/db"
	applog "github.com/rajivgeraev/skillswap-api/internal/logger"
	"github.com/rajivgeraev/skillswap-api/internal/middleware"
	"github.com/rajivgeraev/skillswap-api/internal/services/auth"
	"github.com/rajivgeraev/skillswap-api/internal/services/chat"
	"github.com/rajivgeraev/skillswap-api/internal/services/job"
	"github.com/rajivgeraev/skillswap-api/internal/services/profile"
	"github.com/rajivgeraev/skillswap-api/internal/services/purchase"
	"github.com/rajivgeraev/skillswap-api/internal/services/trade"
	"github.com/rajivgeraev/skillswap-api/internal/services/wishlist"
	"github.com/rajivgeraev/skillswap-api/internal/storage"
	"github.com/rajivgeraev/skillswap-api/internal/utils"
	"github.com/rajivgeraev/skillswap-api/internal/websocket"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Ошибка конфигурации: %v", err)
	}

	zlog := applog.New(cfg.AppEnv, cfg.LogLevel)
	defer zlog.Sync()

	// Применяем миграции и подключаемся к базе данных
	if err := db.Migrate(cfg.DatabaseURL, zlog); err != nil {
		zlog.Fatal("ошибка миграции базы данных", zap.Error(err))
	}
	store, err := db.Connect(cfg, zlog)
	if err != nil {
		zlog.Fatal("ошибка при инициализации базы данных", zap.Error(err))
	}
	defer store.Close()

	chatBlobs, err := newChatBlobStore(cfg, zlog)
	if err != nil {
		zlog.Fatal("ошибка инициализации хранилища чатов", zap.Error(err))
	}

	documents, err := storage.New(cfg, zlog.Named("storage"))
	if err != nil {
		zlog.Fatal("ошибка инициализации хранилища документов", zap.Error(err))
	}

	jwtService := utils.NewJWTService(cfg.JWTSecret, cfg.SessionTTL)
	authenticator := middleware.NewAuthenticator(jwtService, store)
	authMiddleware := middleware.AuthMiddleware(authenticator)

	// WebSocket работает на отдельном порту
	wsManager := websocket.NewManager(zlog.Named("websocket"))
	mux := http.NewServeMux()
	mux.Handle("/ws", websocket.Handler(wsManager, authenticator))
	wsServer := &http.Server{
		Addr:              ":" + cfg.WSPort,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Создаём экземпляр Fiber
	app := fiber.New(fiber.Config{
		AppName:      "SkillSwap API",
		ErrorHandler: apperr.ErrorHandler(zlog),
		BodyLimit:    profile.MaxDocumentSize + 1<<20,
	})

	// Добавляем middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))

	// Создаём сервисы
	chatStore := chat.NewStore(chatBlobs, zlog.Named("chat"),
		chat.WithNotifier(wsManager),
		chat.WithReplyDelay(cfg.ChatReplyDelay),
	)
	authService := auth.NewAuthService(store, jwtService, auth.TelegramParser(cfg.TelegramBotToken),
		!cfg.IsDevelopment(), zlog.Named("auth"))
	chatService := chat.NewChatService(chatStore)
	jobService := job.NewJobService(store, zlog.Named("job"))
	tradeService := trade.NewTradeService(store, wsManager, zlog.Named("trade"))
	profileService := profile.NewProfileService(store, documents, zlog.Named("profile"))
	wishlistService := wishlist.NewWishlistService(store)
	purchaseService := purchase.NewPurchaseService(store, zlog.Named("purchase"))

	// Регистрируем маршруты
	app.Get("/api/session", middleware.SessionStatus(authenticator))
	authService.SetupRoutes(app, authMiddleware)
	chatService.SetupRoutes(app, authMiddleware)
	jobService.SetupRoutes(app, authMiddleware)
	tradeService.SetupRoutes(app, authMiddleware)
	profileService.SetupRoutes(app, authMiddleware)
	wishlistService.SetupRoutes(app, authMiddleware)
	purchaseService.SetupRoutes(app, authMiddleware)

	// SPA регистрируется последним: перехватывает все остальные GET
	app.Get("/*", middleware.RouteGate(authenticator), spaHandler(cfg.SPADir))

	go func() {
		zlog.Info("✅ WebSocket сервер запущен", zap.String("port", cfg.WSPort))
		if err := wsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("ошибка WebSocket сервера", zap.Error(err))
		}
	}()

	go func() {
		zlog.Info("✅ SkillSwap API запущен", zap.String("port", cfg.Port))
		if err := app.Listen(":"+cfg.Port, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
			zlog.Fatal("ошибка HTTP сервера", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	zlog.Info("остановка сервера")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Error("ошибка остановки HTTP сервера", zap.Error(err))
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		zlog.Error("ошибка остановки WebSocket сервера", zap.Error(err))
	}
	wsManager.Shutdown()
	if err := chatBlobs.Close(); err != nil {
		zlog.Error("ошибка закрытия хранилища чатов", zap.Error(err))
	}
}

// chatBlobStore хранит историю чатов и закрывается при остановке сервера
type chatBlobStore interface {
	chat.BlobStore
	io.Closer
}

// newChatBlobStore подключает Redis; без REDIS_ADDR история чатов живёт в памяти
func newChatBlobStore(cfg *config.Config, zlog *zap.Logger) (chatBlobStore, error) {
	if cfg.RedisConfig.Addr == "" {
		zlog.Warn("REDIS_ADDR не задан, история чатов хранится в памяти процесса")
		return cache.NewMemoryStore(), nil
	}
	redisStore, err := cache.NewRedisStore(cfg.RedisConfig)
	if err != nil {
		return nil, err
	}
	return redisStore, nil
}
