// Package storage archives exported report images.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/anime-shed/mindtrack-report/pkg/models"
)

var (
	// ErrNotFound indicates the requested report does not exist.
	ErrNotFound = errors.New("report not found")
	// ErrEmptyKey indicates an empty storage key was provided.
	ErrEmptyKey = errors.New("storage key must not be empty")
	// ErrInvalidKey indicates the storage key contains a path traversal segment.
	ErrInvalidKey = errors.New("storage key contains invalid path segment")
)

// ReportArchive stores encoded report images under opaque keys
type ReportArchive interface {
	// Init prepares the backend, e.g. creating a container.
	Init(ctx context.Context) error
	// Save streams data to the given key.
	Save(ctx context.Context, key string, reader io.Reader, contentType string) error
	// Load returns a stream for the report at key. The caller must close it.
	// Returns ErrNotFound if there is no such report.
	Load(ctx context.Context, key string) (io.ReadCloser, error)
	// Exists reports whether a report is stored at key.
	Exists(ctx context.Context, key string) (bool, error)
	// Backend names the implementation, for logs.
	Backend() string
}

// NewReportKey builds the archive key "<mode>/<uuid>-<filename>"
func NewReportKey(mode models.ReportMode, filename string) string {
	return path.Join(string(mode), fmt.Sprintf("%s-%s", uuid.NewString(), path.Base(filename)))
}

// MapHTTPStatus maps storage errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrEmptyKey) || errors.Is(err, ErrInvalidKey) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	return nil
}
