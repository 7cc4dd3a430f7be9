package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"academy_go/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// Object is a stored blob: where it can be fetched and the key to delete it by.
type Object struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// ObjectStore is the binary storage used for teacher photos and gallery images.
type ObjectStore interface {
	Upload(ctx context.Context, data []byte, folder, filename string) (*Object, error)
	Delete(ctx context.Context, key string) error
}

// StorageService stores objects in S3.
type StorageService struct {
	s3Client   *s3.Client
	bucket     string
	region     string
	publicBase string
	now        func() time.Time
}

// NewStorageService creates a new storage service from the application config.
func NewStorageService(ctx context.Context, cfg *config.Config) (*StorageService, error) {
	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}
	awsConfig, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &StorageService{
		s3Client:   s3.NewFromConfig(awsConfig),
		bucket:     cfg.S3BucketName,
		region:     cfg.AWSRegion,
		publicBase: strings.TrimRight(cfg.S3PublicBaseURL, "/"),
		now:        time.Now,
	}, nil
}

// Upload stores data under folder/yyyy/mm/<random>.<ext>, converting images to WebP when possible.
func (s *StorageService) Upload(ctx context.Context, data []byte, folder, filename string) (*Object, error) {
	ext := getFileExtension(filename)
	if isImageExtension(ext) {
		if converted, ok := convertToWebP(data); ok {
			data = converted
			ext = "webp"
		}
	}

	key := objectKey(folder, ext, s.now())
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(getContentType(ext)),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}
	return &Object{URL: s.publicURL(key), Key: key}, nil
}

// Delete removes an object by key.
func (s *StorageService) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

func (s *StorageService) publicURL(key string) string {
	if s.publicBase != "" {
		return s.publicBase + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

func objectKey(folder, ext string, now time.Time) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		folder = "uploads"
	}
	name := strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	if ext != "" {
		name += "." + ext
	}
	return fmt.Sprintf("%s/%d/%02d/%s", folder, now.Year(), now.Month(), name)
}

func isImageExtension(ext string) bool {
	switch ext {
	case "jpg", "jpeg", "png", "gif", "bmp", "tiff":
		return true
	}
	return false
}

func getFileExtension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 1 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

// convertToWebP shells out to cwebp when it is installed.
func convertToWebP(imageBytes []byte) ([]byte, bool) {
	cwebpPath, err := exec.LookPath("cwebp")
	if err != nil {
		return nil, false
	}

	inFile, err := os.CreateTemp("", "img-input-*")
	if err != nil {
		return nil, false
	}
	defer func() {
		inFile.Close()
		os.Remove(inFile.Name())
	}()
	if _, err := inFile.Write(imageBytes); err != nil {
		return nil, false
	}

	outFile, err := os.CreateTemp("", "img-out-*.webp")
	if err != nil {
		return nil, false
	}
	outFile.Close()
	defer os.Remove(outFile.Name())

	if err := exec.Command(cwebpPath, "-q", "80", inFile.Name(), "-o", outFile.Name()).Run(); err != nil {
		return nil, false
	}
	out, err := os.ReadFile(outFile.Name())
	if err != nil {
		return nil, false
	}
	return out, true
}

func getContentType(extension string) string {
	switch strings.ToLower(extension) {
	case "webp":
		return "image/webp"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}

// MemoryStore keeps objects in process. It backs local development without a bucket.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte), now: time.Now}
}

func (m *MemoryStore) Upload(_ context.Context, data []byte, folder, filename string) (*Object, error) {
	key := objectKey(folder, getFileExtension(filename), m.now())
	m.mu.Lock()
	m.objects[key] = append([]byte(nil), data...)
	m.mu.Unlock()
	return &Object{URL: "memory://" + key, Key: key}, nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// Has reports whether key is currently stored.
func (m *MemoryStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

// Len returns the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
