package imagestore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// GCSStore writes images to one bucket. Objects are expected to be publicly
// readable through uniform bucket IAM, so the URL is derived from the path.
type GCSStore struct {
	client        *storage.Client
	bucket        string
	publicBaseURL string
}

func NewGCSStore(ctx context.Context, bucket, publicBaseURL string, opts ...option.ClientOption) (*GCSStore, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("imagestore: bucket is empty")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("imagestore: new storage client: %w", err)
	}
	if publicBaseURL == "" {
		publicBaseURL = "https://storage.googleapis.com"
	}
	return &GCSStore{client: client, bucket: bucket, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

func (s *GCSStore) Upload(ctx context.Context, folder string, data []byte, contentType string) (Image, error) {
	objectPath := path.Join(strings.Trim(folder, "/"), uuid.NewString())
	w := s.client.Bucket(s.bucket).Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{"folder": folder}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return Image{}, err
	}
	if err := w.Close(); err != nil {
		return Image{}, err
	}
	return Image{
		PublicID: objectPath,
		URL:      fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, objectPath),
	}, nil
}

func (s *GCSStore) Delete(ctx context.Context, publicID string) error {
	err := s.client.Bucket(s.bucket).Object(publicID).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return err
	}
	return nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
