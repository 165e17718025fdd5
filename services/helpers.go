package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/sports-registry/models"
	"github.com/Dosada05/sports-registry/storage"
)

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// trimOptional обрезает пробелы; пустая строка превращается в nil.
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func fullName(firstName, lastName string, middleName *string) string {
	name := strings.TrimSpace(lastName + " " + firstName)
	if m := derefString(middleName); m != "" {
		name += " " + m
	}
	return name
}

// dateOnly отбрасывает время суток в UTC.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func populatePersonPhotoURLFunc(person *models.Person, uploader storage.FileUploader) {
	if person != nil && person.PhotoKey != nil && *person.PhotoKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*person.PhotoKey)
		if url != "" {
			person.PhotoURL = &url
		}
	}
}

func GetExtensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		// SVG и прочие image/* не принимаем: бакет публичный.
		return "", fmt.Errorf("unsupported content type: '%s'", contentType)
	}
}
