package services

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrUploadFailed is surfaced to the submitter when the blob store cannot
	// take the image. No shop record exists at that point.
	ErrUploadFailed = errors.New("image upload failed")
	// ErrImageRejected is returned when SafeSearch flags an image as unsafe.
	ErrImageRejected = errors.New("image rejected: violates community guidelines")
)

// BlobStore hands raw image bytes to an opaque store and returns a reference
// (URL or key) to record on the shop.
type BlobStore interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}
