package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rajivgeraev/skillswap-api/internal/config"
)

// DocumentStore сохраняет загруженные файлы и возвращает их URL
type DocumentStore interface {
	Put(ctx context.Context, userID uuid.UUID, fileName, contentType string, body io.Reader) (string, error)
}

// New создает хранилище документов по STORAGE_DRIVER
func New(cfg *config.Config, log *zap.Logger) (DocumentStore, error) {
	switch cfg.StorageDriver {
	case "cloudinary":
		return NewCloudinaryStorage(cfg.CloudinaryConfig, log)
	case "s3":
		return NewS3Storage(context.Background(), cfg.S3Config, log)
	default:
		return nil, fmt.Errorf("неизвестный драйвер хранилища: %q", cfg.StorageDriver)
	}
}

// objectName формирует имя объекта: <userID>/<uuid><ext>
func objectName(userID uuid.UUID, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return userID.String() + "/" + uuid.NewString() + ext
}
