// Package storage keeps uploaded evidence photos, compliance documents and
// saved MOT reports.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"melhado-backend/internal/inspection"
)

//go:generate mockgen -source=store.go -destination=../handlers/filestore_mock_test.go -package=handlers

var (
	ErrNotFound    = errors.New("file not found")
	ErrInvalidName = errors.New("invalid file name")
)

// FileStore saves and serves files by object key.
type FileStore interface {
	// Save writes r under key and returns the public URL and byte count.
	Save(ctx context.Context, key, contentType string, r io.Reader) (string, int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeFilename keeps the base name of an uploaded file with anything
// outside [a-zA-Z0-9._-] replaced.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "file"
	}
	return name
}

// Key joins path segments into an object key. Every segment is sanitized.
func Key(segments ...string) string {
	clean := make([]string, 0, len(segments))
	for _, s := range segments {
		clean = append(clean, SanitizeFilename(s))
	}
	return strings.Join(clean, "/")
}

func validKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || path.Clean(key) != key || strings.HasPrefix(key, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidName, key)
	}
	return nil
}

// MediaTypeOf classifies a MIME type.
func MediaTypeOf(contentType string) inspection.MediaType {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return inspection.MediaImage
	case strings.HasPrefix(contentType, "video/"):
		return inspection.MediaVideo
	default:
		return inspection.MediaDocument
	}
}

// NewMediaFile describes a stored evidence attachment.
func NewMediaFile(itemID, filename, url, contentType string, size int64, now time.Time) inspection.MediaFile {
	return inspection.MediaFile{
		ID:              uuid.NewString(),
		URL:             url,
		Type:            MediaTypeOf(contentType),
		Filename:        filename,
		UploadedAt:      now,
		FileSize:        size,
		MimeType:        contentType,
		ChecklistItemID: itemID,
	}
}
