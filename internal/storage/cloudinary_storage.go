package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rajivgeraev/skillswap-api/internal/config"
)

// CloudinaryStorage хранит документы в Cloudinary
type CloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	cfg    config.CloudinaryConfig
	log    *zap.Logger
	folder string
}

// NewCloudinaryStorage создает новый экземпляр CloudinaryStorage
func NewCloudinaryStorage(cfg config.CloudinaryConfig, log *zap.Logger) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации Cloudinary: %w", err)
	}
	return &CloudinaryStorage{
		cld:    cld,
		cfg:    cfg,
		log:    log,
		folder: strings.Trim(cfg.UploadFolder, "/") + "/identity",
	}, nil
}

// Put загружает документ в папку документов пользователя
func (s *CloudinaryStorage) Put(ctx context.Context, userID uuid.UUID, _, _ string, body io.Reader) (string, error) {
	// расширение не нужно: формат Cloudinary определяет сам
	publicID := objectName(userID, "")

	result, err := s.cld.Upload.Upload(ctx, body, uploader.UploadParams{
		Folder:   s.folder,
		PublicID: publicID,
	})
	if err != nil {
		return "", fmt.Errorf("ошибка загрузки в Cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("ошибка загрузки в Cloudinary: %s", result.Error.Message)
	}

	s.log.Debug("документ загружен в Cloudinary",
		zap.String("user_id", userID.String()),
		zap.String("public_id", result.PublicID),
	)
	return result.SecureURL, nil
}

// UploadParams возвращает подписанные параметры прямой загрузки из браузера
func (s *CloudinaryStorage) UploadParams(userID uuid.UUID, now time.Time) (map[string]string, error) {
	params := url.Values{}
	params.Set("folder", s.folder)
	params.Set("public_id", objectName(userID, ""))
	params.Set("timestamp", strconv.FormatInt(now.Unix(), 10))

	signature, err := api.SignParameters(params, s.cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("ошибка подписи параметров: %w", err)
	}

	return map[string]string{
		"folder":     params.Get("folder"),
		"public_id":  params.Get("public_id"),
		"timestamp":  params.Get("timestamp"),
		"signature":  signature,
		"api_key":    s.cfg.APIKey,
		"cloud_name": s.cfg.CloudName,
	}, nil
}
