package usecase

import (
	"context"

	"github.com/google/uuid"
)

// TxManager выполняет fn в одной транзакции БД. Ошибка из fn откатывает транзакцию.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type ImagesInfra interface {
	UploadImage(ctx context.Context, req *UploadImageReq) (*UploadImageRes, error)
	CleanupImages(keys []string)
	// KeyFromURL извлекает ключ объекта из публичного URL, если URL указывает на наше хранилище.
	KeyFromURL(url string) (string, bool)
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

type TokenIssuer interface {
	Generate(userID uuid.UUID, role string) (string, error)
}
