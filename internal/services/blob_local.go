package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// LocalBlobStore keeps uploaded images on local disk under uploadDir. Files
// get uuid names and are served back at /uploads/<name>.
type LocalBlobStore struct {
	uploadDir string
}

func NewLocalBlobStore(uploadDir string) (*LocalBlobStore, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalBlobStore{uploadDir: uploadDir}, nil
}

func (s *LocalBlobStore) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".jpg"
	}
	newFilename := uuid.New().String() + ext
	filePath := filepath.Join(s.uploadDir, newFilename)

	dst, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: create file: %v", ErrUploadFailed, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(filePath) // Clean up on error
		return "", fmt.Errorf("%w: save file: %v", ErrUploadFailed, err)
	}

	return "/uploads/" + newFilename, nil
}
