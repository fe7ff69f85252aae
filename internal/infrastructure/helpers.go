package infrastructure

import (
	"fmt"
	"strings"

	"github.com/DRSN-tech/shop-backend/pkg/e"
)

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// GetExtensionFromMIME возвращает расширение файла по MIME-типу изображения.
// Для неподдерживаемых типов возвращает e.ErrUnsupportedMediaType.
func GetExtensionFromMIME(mime string) (string, error) {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}

	ext, ok := imageExtensions[mime]
	if !ok {
		return "", e.ErrUnsupportedMediaType
	}
	return ext, nil
}

// ImageObjectKey собирает ключ объекта вида <prefix>/<id>.<ext>.
func ImageObjectKey(prefix, id, mime string) (string, error) {
	ext, err := GetExtensionFromMIME(mime)
	if err != nil {
		return "", err
	}

	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return fmt.Sprintf("%s.%s", id, ext), nil
	}
	return fmt.Sprintf("%s/%s.%s", prefix, id, ext), nil
}
