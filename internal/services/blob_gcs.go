package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"path/filepath"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// GCSBlobStore uploads shop images to a Cloud Storage bucket and returns a
// public download URL. When a screener is set, images are checked with
// SafeSearch right after upload; unsafe ones are deleted again and the upload
// reports ErrImageRejected.
type GCSBlobStore struct {
	gcs      *storage.Client
	bucket   string
	screener *SafeSearchScreener
}

// NewGCSBlobStore creates a storage client once at server startup.
// screener may be nil if image screening is not wanted.
func NewGCSBlobStore(ctx context.Context, bucket string, screener *SafeSearchScreener) (*GCSBlobStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("blob store: storage client: %w", err)
	}
	return &GCSBlobStore{
		gcs:      client,
		bucket:   bucket,
		screener: screener,
	}, nil
}

func (s *GCSBlobStore) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".jpg"
	}
	objectName := "shops/" + uuid.New().String() + ext

	w := s.gcs.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("%w: write object: %v", ErrUploadFailed, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%w: finalize object: %v", ErrUploadFailed, err)
	}

	if s.screener != nil {
		gcsURI := fmt.Sprintf("gs://%s/%s", s.bucket, objectName)
		ss, err := s.screener.Detect(ctx, gcsURI)
		if err != nil {
			log.Printf("[blob] SafeSearch error object=%s err=%v", objectName, err)
			s.deleteObject(ctx, objectName)
			return "", fmt.Errorf("%w: safesearch: %v", ErrUploadFailed, err)
		}
		if ss.IsUnsafe() {
			log.Printf("[blob] image unsafe, deleting %s (adult=%s violence=%s racy=%s)",
				objectName, ss.Adult, ss.Violence, ss.Racy)
			s.deleteObject(ctx, objectName)
			return "", ErrImageRejected
		}
	}

	return s.downloadURL(objectName), nil
}

func (s *GCSBlobStore) deleteObject(ctx context.Context, name string) {
	if err := s.gcs.Bucket(s.bucket).Object(name).Delete(ctx); err != nil {
		log.Printf("[blob] delete failed object=%s err=%v", name, err)
	}
}

func (s *GCSBlobStore) downloadURL(objectName string) string {
	return fmt.Sprintf(
		"https://storage.googleapis.com/%s/%s",
		s.bucket,
		url.PathEscape(objectName),
	)
}
