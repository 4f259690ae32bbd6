// Package blobstore stores uploaded profile images. It defines the ImageStore
// interface and an in-memory implementation used in development and tests.
package blobstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrImageNotFound      = errors.New("image not found")
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")
	ErrInvalidContentType = errors.New("content type is not allowed")
	ErrMissingFileName    = errors.New("file name is required")
)

// MaxImageSize caps profile image uploads at 5 MB.
const MaxImageSize = 5 * 1024 * 1024

// AllowedContentTypes lists accepted image MIME types.
var AllowedContentTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

// ImageMetadata describes a stored image.
type ImageMetadata struct {
	ID          string    `json:"id"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	OwnerID     string    `json:"ownerId,omitempty"`
	Hash        string    `json:"hash"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ImageStore is the contract for image storage backends.
type ImageStore interface {
	Upload(ctx context.Context, meta ImageMetadata, content io.Reader) (*ImageMetadata, error)
	Download(ctx context.Context, id string) (io.ReadCloser, *ImageMetadata, error)
	Delete(ctx context.Context, id string) error
}

type storedImage struct {
	metadata ImageMetadata
	content  []byte
}

// InMemoryImageStore is a thread-safe ImageStore backed by a map.
type InMemoryImageStore struct {
	mu     sync.RWMutex
	images map[string]*storedImage
}

// NewInMemoryImageStore returns a ready-to-use InMemoryImageStore.
func NewInMemoryImageStore() *InMemoryImageStore {
	return &InMemoryImageStore{images: make(map[string]*storedImage)}
}

// Upload validates the file name, content type, and size, then stores the
// image under a fresh id.
func (s *InMemoryImageStore) Upload(_ context.Context, meta ImageMetadata, content io.Reader) (*ImageMetadata, error) {
	if meta.FileName == "" {
		return nil, ErrMissingFileName
	}
	if !AllowedContentTypes[meta.ContentType] {
		return nil, ErrInvalidContentType
	}

	data, err := io.ReadAll(io.LimitReader(content, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}
	if int64(len(data)) > MaxImageSize {
		return nil, ErrFileTooLarge
	}

	h := sha256.Sum256(data)
	meta.ID = uuid.New().String()
	meta.Size = int64(len(data))
	meta.Hash = fmt.Sprintf("%x", h)
	meta.CreatedAt = time.Now().UTC()

	s.mu.Lock()
	s.images[meta.ID] = &storedImage{metadata: meta, content: data}
	s.mu.Unlock()

	out := meta
	return &out, nil
}

// Download returns a reader over the image content and its metadata.
func (s *InMemoryImageStore) Download(_ context.Context, id string) (io.ReadCloser, *ImageMetadata, error) {
	s.mu.RLock()
	img, ok := s.images[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, ErrImageNotFound
	}
	meta := img.metadata
	return io.NopCloser(bytes.NewReader(img.content)), &meta, nil
}

// Delete removes an image by id.
func (s *InMemoryImageStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.images[id]; !ok {
		return ErrImageNotFound
	}
	delete(s.images, id)
	return nil
}
