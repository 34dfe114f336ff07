// Package media validates listing images and stores them in object storage.
package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/nitrmart-api/internal/domain"
	"github.com/nitrmart-api/internal/pkg/id"
)

const (
	MaxImageSize        = 10 << 20
	MaxImagesPerListing = 8
	sniffLen            = 512
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// File is one uploaded image as received from the client.
type File struct {
	Name string
	Size int64
	Body io.Reader

	// contentType is set once the head of Body has been sniffed.
	contentType string
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type Service interface {
	Validate(files []File) error
	Store(ctx context.Context, productID string, f File) (*domain.ProductImage, error)
	Remove(ctx context.Context, images []domain.ProductImage)
}

type service struct {
	store objectStore
	now   func() time.Time
}

func NewService(store objectStore) Service {
	return &service{store: store, now: time.Now}
}

// Validate checks count, size and content type before anything is written.
// Each file's head is sniffed in place, so files must be passed on to Store
// from the same slice.
func (s *service) Validate(files []File) error {
	if len(files) > MaxImagesPerListing {
		return imagesErr(fmt.Sprintf("Ensure this field has no more than %d images.", MaxImagesPerListing))
	}
	for i := range files {
		f := &files[i]
		switch {
		case f.Size <= 0:
			return imagesErr(fmt.Sprintf("The submitted file %q is empty.", f.Name))
		case f.Size > MaxImageSize:
			return imagesErr(fmt.Sprintf("The submitted file %q exceeds the 10 MB limit.", f.Name))
		}
		if err := sniff(f); err != nil {
			return err
		}
	}
	return nil
}

// Store uploads f under products/<productID>/. Files that did not go through
// Validate are sniffed here.
func (s *service) Store(ctx context.Context, productID string, f File) (*domain.ProductImage, error) {
	if f.contentType == "" {
		if err := sniff(&f); err != nil {
			return nil, err
		}
	}

	imageID := id.New()
	key := fmt.Sprintf("products/%s/%s-%s", productID, imageID, sanitizeFilename(f.Name))
	url, err := s.store.Upload(ctx, key, f.Body, f.Size, f.contentType)
	if err != nil {
		return nil, err
	}
	return &domain.ProductImage{
		ImageID:     imageID,
		ProductID:   productID,
		Object:      key,
		URL:         url,
		ContentType: f.contentType,
		Size:        f.Size,
		CreatedAt:   s.now().UTC(),
	}, nil
}

// sniff detects the content type from the first bytes of f.Body and rejects
// anything that is not a supported image. The head is stitched back onto Body.
func sniff(f *File) error {
	if f.Body == nil {
		return imagesErr(fmt.Sprintf("The submitted file %q is empty.", f.Name))
	}
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	if !allowedTypes[contentType] {
		return imagesErr("Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}
	f.Body = io.MultiReader(bytes.NewReader(head), f.Body)
	f.contentType = contentType
	return nil
}

// Remove deletes stored objects. Failures are logged and skipped.
func (s *service) Remove(ctx context.Context, images []domain.ProductImage) {
	for _, img := range images {
		if err := s.store.Delete(ctx, img.Object); err != nil {
			slog.Warn("failed to delete image object", "product_id", img.ProductID, "key", img.Object, "err", err)
		}
	}
}

func imagesErr(msg string) error {
	return domain.NewFieldError(domain.ErrBadRequest, "images", msg)
}

// sanitizeFilename strips directory components and keeps only safe characters
// (alphanumeric, dot, dash, underscore) to prevent path traversal in S3 keys.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if result := b.String(); result != "" && result != "." && result != ".." {
		return result
	}
	return "image"
}
