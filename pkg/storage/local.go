package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage persists media objects on disk under a base directory and
// issues signed download URLs served by the API's own media endpoint.
type LocalStorage struct {
	baseDir   string
	signer    *SignedURLSigner
	urlPrefix string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string, signer *SignedURLSigner, urlPrefix string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./media"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}
	if urlPrefix == "" {
		urlPrefix = "/api/v1"
	}
	return &LocalStorage{baseDir: baseDir, signer: signer, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Upload copies the reader into a new file at path. An existing object at the
// same path is never overwritten.
func (s *LocalStorage) Upload(ctx context.Context, path string, r io.Reader, contentType string) error {
	target := s.resolve(path)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("prepare media directory: %w", err)
	}
	file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create media file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return fmt.Errorf("write media file: %w", err)
	}
	return nil
}

// List returns object paths under the given prefix.
func (s *LocalStorage) List(ctx context.Context, prefix string) ([]string, error) {
	root := s.resolve(prefix)
	entries := make([]string, 0)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			rel = path
		}
		entries = append(entries, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list media objects: %w", err)
	}
	return entries, nil
}

// SignedURL returns a time-limited download link routed through the API.
func (s *LocalStorage) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	if s.signer == nil {
		return "", fmt.Errorf("download signer unavailable")
	}
	token, _, err := s.signer.Generate(path, ttl)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/media/download?token=%s", s.urlPrefix, url.QueryEscape(token)), nil
}

// Open returns a read-only handle for a stored object. Used by the media
// download endpoint after token validation.
func (s *LocalStorage) Open(path string) (*os.File, error) {
	file, err := os.Open(s.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("open media file: %w", err)
	}
	return file, nil
}

func (s *LocalStorage) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(path))
}
