// Package storage хранит фотографии людей в объектном хранилище.
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
)

var ErrEmptyKey = errors.New("storage: object key is empty")

// UploadResult - что вернуло хранилище после записи объекта.
type UploadResult struct {
	Key      string
	Location string // публичный URL
	ETag     string
}

// FileUploader пишет и удаляет объекты по ключу вида "people/<id>/<name>.<ext>".
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}

// normalizeKey убирает ведущие слэши; пустой ключ - ошибка.
func normalizeKey(key string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", ErrEmptyKey
	}
	return key, nil
}
