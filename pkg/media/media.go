// Package media stores uploaded images and hands back the URL they are
// served from.
package media

import (
	"context"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"campusnet/pkg/apperr"
	"campusnet/pkg/model"

	"github.com/google/uuid"
)

const (
	MAX_POST_IMAGE_BYTES = 1000000
	MAX_AVATAR_BYTES     = 500000
)

// Host stores blobs and serves them back by name.
type Host interface {
	Upload(ctx context.Context, kind model.MediaKind, file model.Upload) (string, error)
	Fetch(ctx context.Context, name string) (model.Upload, error)
}

// Check enforces the size cap of kind.
func Check(kind model.MediaKind, file model.Upload) error {
	switch kind {
	case model.MEDIA_AVATAR:
		if file.Empty() {
			return apperr.Validation("Please choose an image")
		}
		if len(file.Data) > MAX_AVATAR_BYTES {
			return apperr.Validation("Profile picture is too big. Need to be less than 500kB")
		}
	default:
		if file.Empty() {
			return apperr.Validation("Please choose an image")
		}
		if len(file.Data) > MAX_POST_IMAGE_BYTES {
			return apperr.Validation("File size too large (Max 1MB)")
		}
	}
	return nil
}

// contentType returns the declared type of file or sniffs it from the bytes.
func contentType(file model.Upload) string {
	if file.ContentType != "" && file.ContentType != "application/octet-stream" {
		return file.ContentType
	}
	if t := mime.TypeByExtension(filepath.Ext(file.Name)); t != "" {
		return t
	}
	return http.DetectContentType(file.Data)
}

// BlobName returns a fresh "<uuid>.<ext>" name, keeping the original extension.
func BlobName(file model.Upload) string {
	ext := strings.ToLower(filepath.Ext(file.Name))
	if ext == "" {
		if exts, err := mime.ExtensionsByType(contentType(file)); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}
	return uuid.NewString() + ext
}

// URL joins the public base url and a blob name.
func URL(baseURL string, name string) string {
	return strings.TrimRight(baseURL, "/") + "/" + name
}
