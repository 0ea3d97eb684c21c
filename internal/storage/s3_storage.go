package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rajivgeraev/skillswap-api/internal/config"
)

// S3Storage хранит документы в S3-совместимом бакете (AWS S3, MinIO)
type S3Storage struct {
	client   *s3.Client
	bucket   string
	endpoint string
	log      *zap.Logger
}

// NewS3Storage создает клиент бакета документов
func NewS3Storage(ctx context.Context, cfg config.S3Config, log *zap.Logger) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("не указан S3_BUCKET")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("не указаны ключи доступа S3")
	}

	endpoint := strings.TrimSuffix(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://s3.%s.amazonaws.com", cfg.Region)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка конфигурации AWS: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String(endpoint)
	})

	return &S3Storage{client: client, bucket: cfg.Bucket, endpoint: endpoint, log: log}, nil
}

// Put загружает документ и возвращает его адрес в бакете
func (s *S3Storage) Put(ctx context.Context, userID uuid.UUID, fileName, contentType string, body io.Reader) (string, error) {
	key := objectName(userID, fileName)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("ошибка загрузки в S3: %w", err)
	}

	s.log.Debug("документ загружен в S3",
		zap.String("user_id", userID.String()),
		zap.String("key", key),
	)
	return s.objectURL(key), nil
}

func (s *S3Storage) objectURL(key string) string {
	return s.endpoint + "/" + s.bucket + "/" + key
}
