// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"image"
	"image/png"
	"net/http"

	"wavelength/internal/storage"
)

// MemoryImageStore is an in-memory storage.ImageStore implementation for tests.
type MemoryImageStore struct {
	files map[string][]byte
}

// NewMemoryImageStore creates an empty in-memory image store.
func NewMemoryImageStore() *MemoryImageStore {
	return &MemoryImageStore{files: make(map[string][]byte)}
}

var _ storage.ImageStore = (*MemoryImageStore)(nil)

// SaveProfileImage validates and stores image bytes keyed by a content hash.
func (s *MemoryImageStore) SaveProfileImage(userID uint, content []byte) (string, error) {
	if len(content) == 0 {
		return "", storage.ErrEmptyFile
	}
	if http.DetectContentType(content) != "image/png" &&
		http.DetectContentType(content) != "image/jpeg" {
		return "", storage.ErrUnsupportedType
	}
	sum := sha256.Sum256(content)
	key := hex.EncodeToString(sum[:8])
	s.files[key] = content
	return key, nil
}

// Path reports whether a key exists; the returned path is synthetic.
func (s *MemoryImageStore) Path(key string) (string, error) {
	if _, ok := s.files[key]; !ok {
		return "", storage.ErrInvalidKey
	}
	return "/memory/" + key, nil
}

// Remove deletes a stored image. Missing keys are not an error.
func (s *MemoryImageStore) Remove(key string) error {
	delete(s.files, key)
	return nil
}

// Bytes returns the stored content for a key, or nil.
func (s *MemoryImageStore) Bytes(key string) []byte {
	return s.files[key]
}

// TinyPNG returns a minimal valid PNG for upload tests.
func TinyPNG(t interface{ Fatalf(format string, args ...any) }) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png fixture: %v", err)
	}
	return buf.Bytes()
}
