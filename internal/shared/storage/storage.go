package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/bitfantasy/nimo-build/internal/config"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrNotConfigured 未配置对象存储
var ErrNotConfigured = errors.New("storage not configured")

// Store MinIO对象存储，用于归档导入源文件和导出报表
type Store struct {
	client *minio.Client
	bucket string
}

// New 未配置endpoint时返回nil Store，调用方需按可选依赖处理
func New(cfg config.MinIOConfig) (*Store, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	return &Store{client: client, bucket: cfg.Bucket}, nil
}

func (s *Store) Enabled() bool {
	return s != nil && s.client != nil
}

// EnsureBucket 启动时创建bucket
func (s *Store) EnsureBucket(ctx context.Context) error {
	if !s.Enabled() {
		return ErrNotConfigured
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("make bucket: %w", err)
	}
	return nil
}

// ObjectName 生成对象路径: <kind>/<company>/<yyyy/mm/dd>/<uuid8><ext>
func ObjectName(kind, companyID, fileName string, now time.Time) string {
	return fmt.Sprintf("%s/%s/%s/%s%s", kind, companyID, now.Format("2006/01/02"),
		uuid.New().String()[:8], filepath.Ext(fileName))
}

// Put 上传对象，返回对象路径
func (s *Store) Put(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	if !s.Enabled() {
		return "", ErrNotConfigured
	}
	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload object: %w", err)
	}
	return objectName, nil
}

// PutBytes 上传内存中的文件
func (s *Store) PutBytes(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	return s.Put(ctx, objectName, bytes.NewReader(data), int64(len(data)), contentType)
}

// Get 下载对象，调用方负责Close
func (s *Store) Get(ctx context.Context, objectName string) (io.ReadCloser, error) {
	if !s.Enabled() {
		return nil, ErrNotConfigured
	}
	obj, err := s.client.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	return obj, nil
}
