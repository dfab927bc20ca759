package s3

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Well-known key prefixes. Uploads are grouped by what they belong to so
// bucket lifecycle rules can treat them differently.
const (
	PrefixProofs     = "proofs"
	PrefixThumbnails = "thumbnails"
	PrefixIcons      = "icons"
	PrefixAvatars    = "avatars"
	PrefixTrailers   = "trailers"
)

// FileStore is the object storage surface used by the service layer:
// payment proofs, course thumbnails, category icons, and avatars.
type FileStore interface {
	Upload(ctx context.Context, prefix, filename, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

type Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
}

// Store implements FileStore against any S3-compatible endpoint.
type Store struct {
	client   *s3.Client
	bucket   string
	endpoint string
}

// NewStore builds an S3 client with static credentials and a custom
// endpoint. Path-style addressing keeps MinIO and other S3-compatible
// backends working.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(aws.CredentialsProviderFunc(
			func(ctx context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     cfg.AccessKeyID,
					SecretAccessKey: cfg.SecretAccessKey,
				}, nil
			},
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		o.Region = cfg.Region
	})

	return &Store{
		client:   client,
		bucket:   cfg.Bucket,
		endpoint: cfg.Endpoint,
	}, nil
}

// Upload stores data under a generated key and returns the public URL.
// The original filename only contributes its extension; the key itself
// is a UUID so uploads can never collide or be guessed.
func (s *Store) Upload(ctx context.Context, prefix, filename, contentType string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	key := fmt.Sprintf("%s/%s%s", prefix, uuid.New().String(), ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key), nil
}

// Delete removes an object by key. Missing keys are not an error on S3,
// which makes delete idempotent for free.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// ===== MOCK FILE STORE =====

// MockFileStore records uploads in memory for tests.
type MockFileStore struct {
	mu      sync.Mutex
	uploads map[string][]byte
	err     error
}

func NewMockFileStore() *MockFileStore {
	return &MockFileStore{uploads: make(map[string][]byte)}
}

func (m *MockFileStore) Upload(ctx context.Context, prefix, filename, contentType string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	key := fmt.Sprintf("%s/%s", prefix, filename)
	m.uploads[key] = data
	return "https://storage.test/" + key, nil
}

func (m *MockFileStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.uploads, strings.TrimPrefix(key, "https://storage.test/"))
	return nil
}

// SetError makes every subsequent call fail with err.
func (m *MockFileStore) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// UploadCount returns how many objects the mock currently holds.
func (m *MockFileStore) UploadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.uploads)
}
