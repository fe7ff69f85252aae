package minio

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/shop-backend/internal/cfg"
	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/internal/infrastructure"
	"github.com/DRSN-tech/shop-backend/internal/usecase"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/jitter"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
	"github.com/google/uuid"
)

const (
	cleanupAttempts  = 3
	cleanupTimeout   = 30 * time.Second
	cleanupBaseDelay = time.Second
	cleanupMaxDelay  = 8 * time.Second
)

// MinioInfrastructure управляет загрузкой и очисткой изображений в MinIO.
type MinioInfrastructure struct {
	imageRepo   usecase.ImageRepository
	cfg         *cfg.MinIOCfg
	logger      logger.Logger
	shutdownCtx context.Context
	wg          sync.WaitGroup
	baseDelay   time.Duration
}

func NewMinioInfrastructure(imageRepo usecase.ImageRepository, cfg *cfg.MinIOCfg, logger logger.Logger, shutdownCtx context.Context) *MinioInfrastructure {
	return &MinioInfrastructure{
		imageRepo:   imageRepo,
		cfg:         cfg,
		logger:      logger,
		shutdownCtx: shutdownCtx,
		baseDelay:   cleanupBaseDelay,
	}
}

// UploadImage загружает изображение под префиксом req.Prefix и возвращает ключ и публичный URL.
func (m *MinioInfrastructure) UploadImage(ctx context.Context, req *usecase.UploadImageReq) (*usecase.UploadImageRes, error) {
	const op = "MinioInfrastructure.UploadImage"

	image := req.Image
	if m.cfg.MaxImageSize > 0 && int64(len(image.Data)) > m.cfg.MaxImageSize {
		return nil, e.Wrap(op, e.ErrFileTooLarge)
	}

	imageID := uuid.NewString()
	objKey, err := infrastructure.ImageObjectKey(req.Prefix, imageID, image.MimeType)
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("invalid mime type %s for %s: %w", image.MimeType, image.Name, err))
	}

	key, err := m.imageRepo.Upload(ctx, domain.NewImage(imageID, m.cfg.BucketName, objKey, image.Data, image.MimeType))
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("upload %s failed: %w", image.Name, err))
	}

	m.logger.Debugf("%s: uploaded image key=%s size=%d", op, key, len(image.Data))

	return usecase.NewUploadImageRes(key, m.URLForKey(key)), nil
}

// URLForKey публичный URL объекта.
func (m *MinioInfrastructure) URLForKey(key string) string {
	return m.cfg.PublicURL + "/" + key
}

// KeyFromURL извлекает ключ объекта из URL. Чужие URL не распознаются.
func (m *MinioInfrastructure) KeyFromURL(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, m.cfg.PublicURL+"/")
	if !ok || key == "" {
		return "", false
	}

	return key, true
}

// CleanupImages запускает фоновую очистку указанных ключей MinIO
func (m *MinioInfrastructure) CleanupImages(keys []string) {
	if len(keys) == 0 {
		return
	}
	m.wg.Add(1)
	go m.cleanupUploadedKeys(keys)
}

// cleanupUploadedKeys удаляет указанные объекты из MinIO с экспоненциальной задержкой и jitter.
func (m *MinioInfrastructure) cleanupUploadedKeys(keys []string) {
	defer m.wg.Done()
	const op = "MinioInfrastructure.cleanupUploadedKeys"
	m.logger.Infof("%s: Cleaning up %d keys", op, len(keys))

	ctx, cancel := context.WithTimeout(m.shutdownCtx, cleanupTimeout)
	defer cancel()

	for _, key := range keys {
		for attempt := 0; attempt < cleanupAttempts; attempt++ {
			err := m.imageRepo.Delete(ctx, key)
			if err == nil {
				break
			}

			if attempt == cleanupAttempts-1 {
				m.logger.Errorf(err, "%s: giving up on key=%s", op, key)
				break
			}

			select {
			case <-time.After(jitter.ExponentialBackoff(m.baseDelay, cleanupMaxDelay, attempt, jitter.DefaultJitter)):
			case <-ctx.Done():
				m.logger.Warnf("cleanup interrupted by shutdown, key=%v", key)
				return
			}
		}
	}
}

// WaitForCleanup ожидает завершения всех фоновых задач очистки с учётом таймаута завершения приложения.
func (m *MinioInfrastructure) WaitForCleanup(shutdownTimeoutCtx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-shutdownTimeoutCtx.Done():
		return fmt.Errorf("minio cleanup timeout during shutdown: %w", shutdownTimeoutCtx.Err())
	}
}
