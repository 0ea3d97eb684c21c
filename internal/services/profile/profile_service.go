package profile

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rajivgeraev/skillswap-api/internal/apperr"
	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/middleware"
	"github.com/rajivgeraev/skillswap-api/internal/models"
	"github.com/rajivgeraev/skillswap-api/internal/storage"
	"github.com/rajivgeraev/skillswap-api/internal/utils"
)

// MaxDocumentSize ограничивает размер загружаемого документа
const MaxDocumentSize = 10 << 20

var documentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// Store описывает операции с профилем и настройками
type Store interface {
	GetProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, p *models.Profile) error
	SetIdentityDocument(ctx context.Context, userID uuid.UUID, url string) error
	GetSettings(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error)
	SaveSettings(ctx context.Context, st *models.UserSettings) error
	GetDashboardSummary(ctx context.Context, userID uuid.UUID) (*models.DashboardSummary, error)
}

// UploadSigner выдаёт параметры прямой загрузки из браузера
type UploadSigner interface {
	UploadParams(userID uuid.UUID, now time.Time) (map[string]string, error)
}

// ProfileService представляет сервис профиля, настроек и дашборда
type ProfileService struct {
	store     Store
	documents storage.DocumentStore
	log       *zap.Logger
}

// NewProfileService создает новый экземпляр ProfileService
func NewProfileService(store Store, documents storage.DocumentStore, log *zap.Logger) *ProfileService {
	return &ProfileService{store: store, documents: documents, log: log}
}

func (s *ProfileService) loadProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	profile, err := s.store.GetProfileByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("Профиль не найден")
		}
		return nil, apperr.Internal("Ошибка получения профиля", err)
	}
	return profile, nil
}

// GetProfile возвращает профиль текущего пользователя
func (s *ProfileService) GetProfile(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"profile": profile})
}

// GetPublicProfile возвращает профиль другого пользователя без приватных полей
func (s *ProfileService) GetPublicProfile(c fiber.Ctx) error {
	id, err := utils.ParseID(c.Params("id"), "ID пользователя")
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	profile, err := s.loadProfile(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"profile": profile.PublicProfile()})
}

type updateProfileRequest struct {
	FullName   string `json:"full_name" validate:"required,max=120"`
	Username   string `json:"username" validate:"max=64"`
	University string `json:"university" validate:"max=200"`
	Bio        string `json:"bio" validate:"max=2000"`
	AvatarURL  string `json:"avatar_url" validate:"omitempty,url"`
	Role       string `json:"role" validate:"omitempty,oneof=contributor seeker"`
}

// UpdateProfile обновляет редактируемые поля профиля
func (s *ProfileService) UpdateProfile(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind().Body(&req); err != nil {
		return apperr.BadRequest("Неверный формат данных")
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Username = strings.TrimSpace(req.Username)
	if err := utils.Validate(req); err != nil {
		return apperr.BadRequest(err.Error())
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return err
	}

	profile.FullName = req.FullName
	profile.Username = req.Username
	profile.University = strings.TrimSpace(req.University)
	profile.Bio = strings.TrimSpace(req.Bio)
	profile.AvatarURL = req.AvatarURL
	if req.Role != "" {
		profile.Role = req.Role
	}

	if err := s.store.UpdateProfile(ctx, profile); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return apperr.Conflict("Имя пользователя уже занято")
		}
		return apperr.Internal("Ошибка обновления профиля", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"profile": profile,
	})
}

// UploadIdentityDocument сохраняет документ, удостоверяющий личность
func (s *ProfileService) UploadIdentityDocument(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	header, err := c.FormFile("document")
	if err != nil {
		return apperr.BadRequest("Файл document обязателен")
	}
	if header.Size > MaxDocumentSize {
		return apperr.BadRequest("Размер файла превышает 10 МБ")
	}
	contentType := header.Header.Get("Content-Type")
	if !documentTypes[contentType] {
		return apperr.BadRequest("Допустимы только JPEG, PNG, WEBP или PDF")
	}

	file, err := header.Open()
	if err != nil {
		return apperr.Internal("Ошибка чтения файла", err)
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	url, err := s.documents.Put(ctx, userID, header.Filename, contentType, file)
	if err != nil {
		return apperr.Internal("Ошибка загрузки документа", err)
	}

	if err := s.store.SetIdentityDocument(ctx, userID, url); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return apperr.NotFound("Профиль не найден")
		}
		return apperr.Internal("Ошибка сохранения документа", err)
	}

	s.log.Info("документ личности загружен", zap.String("user_id", userID.String()))

	return c.JSON(fiber.Map{
		"success":         true,
		"id_document_url": url,
	})
}

// GetUploadParams выдаёт подписанные параметры прямой загрузки в Cloudinary
func (s *ProfileService) GetUploadParams(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	signer, ok := s.documents.(UploadSigner)
	if !ok {
		return apperr.NotFound("Прямая загрузка не поддерживается хранилищем")
	}

	params, err := signer.UploadParams(userID, time.Now())
	if err != nil {
		return apperr.Internal("Ошибка подписи параметров загрузки", err)
	}
	return c.JSON(params)
}

// GetSettings возвращает настройки пользователя
func (s *ProfileService) GetSettings(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	settings, err := s.store.GetSettings(ctx, userID)
	if err != nil {
		return apperr.Internal("Ошибка получения настроек", err)
	}
	return c.JSON(fiber.Map{"settings": settings})
}

type updateSettingsRequest struct {
	NotificationsEnabled *bool  `json:"notifications_enabled"`
	Theme                string `json:"theme" validate:"omitempty,oneof=light dark"`
	Language             string `json:"language" validate:"omitempty,oneof=en ru"`
}

// UpdateSettings частично обновляет настройки; пустые поля не меняются
func (s *ProfileService) UpdateSettings(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req updateSettingsRequest
	if err := c.Bind().Body(&req); err != nil {
		return apperr.BadRequest("Неверный формат данных")
	}
	if err := utils.Validate(req); err != nil {
		return apperr.BadRequest(err.Error())
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	settings, err := s.store.GetSettings(ctx, userID)
	if err != nil {
		return apperr.Internal("Ошибка получения настроек", err)
	}
	if req.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *req.NotificationsEnabled
	}
	if req.Theme != "" {
		settings.Theme = req.Theme
	}
	if req.Language != "" {
		settings.Language = req.Language
	}

	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return apperr.Internal("Ошибка сохранения настроек", err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"settings": settings,
	})
}

// GetDashboard возвращает счётчики для вкладок дашборда
func (s *ProfileService) GetDashboard(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return err
	}

	summary, err := s.store.GetDashboardSummary(ctx, userID)
	if err != nil {
		return apperr.Internal("Ошибка получения дашборда", err)
	}

	return c.JSON(fiber.Map{
		"profile": profile,
		"summary": summary,
	})
}
