package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

var ErrUnsupportedContentType = errors.New("unsupported image content type")

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

// ExtensionFromContentType принимает только растровые картинки, которые
// браузер покажет в <img>.
func ExtensionFromContentType(contentType string) (string, error) {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch mediaType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
	}
}

// TeamLogoKey builds a fresh object key so a new upload never overwrites an
// object that a cached URL still points to.
func TeamLogoKey(teamID uuid.UUID, contentType string) (string, error) {
	ext, err := ExtensionFromContentType(contentType)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("teams/%s/logo-%s%s", teamID, uuid.New(), ext), nil
}
