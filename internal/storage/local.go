// Package storage persists uploaded profile images on local disk.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const maxImageSizeBytes = 5 * 1024 * 1024

// Sentinel errors callers map to client-facing validation failures.
var (
	ErrEmptyFile       = errors.New("storage: empty file")
	ErrFileTooLarge    = errors.New("storage: file too large")
	ErrUnsupportedType = errors.New("storage: unsupported content type")
	ErrInvalidKey      = errors.New("storage: invalid key")
)

var extByMIME = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageStore saves and resolves uploaded profile images.
type ImageStore interface {
	SaveProfileImage(userID uint, content []byte) (string, error)
	Path(key string) (string, error)
	Remove(key string) error
}

// LocalStore keeps images as flat files under a configured directory. Keys
// are content-addressed, so re-uploading the same bytes is a no-op.
type LocalStore struct {
	dir string
}

// NewLocalStore ensures the upload directory exists and returns a store over it.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// SaveProfileImage validates and writes the image, returning its storage key.
// The content type is sniffed from the bytes, never trusted from the request.
func (s *LocalStore) SaveProfileImage(userID uint, content []byte) (string, error) {
	if len(content) == 0 {
		return "", ErrEmptyFile
	}
	if len(content) > maxImageSizeBytes {
		return "", ErrFileTooLarge
	}

	ext, ok := extByMIME[http.DetectContentType(content)]
	if !ok {
		return "", ErrUnsupportedType
	}

	sum := sha256.Sum256(append([]byte(fmt.Sprintf("u%d:", userID)), content...))
	key := hex.EncodeToString(sum[:16]) + ext

	path := filepath.Join(s.dir, key)
	if _, err := os.Stat(path); err == nil {
		return key, nil
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return key, nil
}

// Path resolves a key to an absolute file path, rejecting traversal attempts.
func (s *LocalStore) Path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", ErrInvalidKey
	}
	path := filepath.Join(s.dir, key)
	if _, err := os.Stat(path); err != nil {
		return "", ErrInvalidKey
	}
	return path, nil
}

// Remove deletes a stored image. Missing files are not an error.
func (s *LocalStore) Remove(key string) error {
	path, err := s.Path(key)
	if errors.Is(err, ErrInvalidKey) {
		return nil
	}
	if err != nil {
		return err
	}
	return os.Remove(path)
}
