package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"pyland_backend/internal/config"
	"pyland_backend/internal/util"
	"pyland_backend/pkg/logger"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageProvider 对象存储抽象，local / minio / oss 三种实现
type StorageProvider interface {
	Save(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	SaveFile(ctx context.Context, key string, localPath string, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
	PublicURL(key string) string
}

// StorageService 媒体文件存取。provider 初始化失败时退回本地磁盘。
type StorageService struct {
	Provider StorageProvider
}

func NewStorageService(cfg *config.Config) *StorageService {
	var provider StorageProvider

	switch cfg.Storage.Type {
	case util.StorageMinio:
		p, err := newMinioProvider(&cfg.Storage)
		if err != nil {
			logger.Log.Warn("minio init failed, falling back to local storage", zap.Error(err))
		} else {
			provider = p
		}
	case util.StorageOSS:
		p, err := newOSSProvider(&cfg.Storage)
		if err != nil {
			logger.Log.Warn("oss init failed, falling back to local storage", zap.Error(err))
		} else {
			provider = p
		}
	}

	if provider == nil {
		provider = &localProvider{root: cfg.Storage.LocalPath}
	}

	return &StorageService{Provider: provider}
}

// ObjectKey 生成带日期目录的对象键，如 covers/2026/09/uuid.png
func ObjectKey(prefix, filename string) string {
	ext := filepath.Ext(filename)
	now := time.Now()
	return fmt.Sprintf("%s/%d/%02d/%s%s", prefix, now.Year(), now.Month(), uuid.NewString(), ext)
}

func (s *StorageService) Save(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	return s.Provider.Save(ctx, key, reader, size, contentType)
}

func (s *StorageService) SaveFile(ctx context.Context, key string, localPath string, contentType string) (string, error) {
	return s.Provider.SaveFile(ctx, key, localPath, contentType)
}

func (s *StorageService) Remove(ctx context.Context, key string) error {
	return s.Provider.Remove(ctx, key)
}

func (s *StorageService) PublicURL(key string) string {
	return s.Provider.PublicURL(key)
}

// localProvider 本地磁盘，开发环境默认
type localProvider struct {
	root string
}

func (p *localProvider) Save(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	dst := filepath.Join(p.root, key)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return "", err
	}
	return p.PublicURL(key), nil
}

func (p *localProvider) SaveFile(ctx context.Context, key string, localPath string, contentType string) (string, error) {
	src, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer src.Close()
	return p.Save(ctx, key, src, 0, contentType)
}

func (p *localProvider) Remove(ctx context.Context, key string) error {
	return os.Remove(filepath.Join(p.root, key))
}

func (p *localProvider) PublicURL(key string) string {
	return "/uploads/" + key
}

type minioProvider struct {
	cfg    *config.StorageConfig
	client *minio.Client
}

func newMinioProvider(cfg *config.StorageConfig) (*minioProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: false,
	})
	if err != nil {
		return nil, err
	}
	return &minioProvider{cfg: cfg, client: client}, nil
}

func (p *minioProvider) Save(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.client.PutObject(ctx, p.cfg.MinioBucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.PublicURL(key), nil
}

func (p *minioProvider) SaveFile(ctx context.Context, key string, localPath string, contentType string) (string, error) {
	_, err := p.client.FPutObject(ctx, p.cfg.MinioBucket, key, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.PublicURL(key), nil
}

func (p *minioProvider) Remove(ctx context.Context, key string) error {
	return p.client.RemoveObject(ctx, p.cfg.MinioBucket, key, minio.RemoveObjectOptions{})
}

func (p *minioProvider) PublicURL(key string) string {
	return "/" + p.cfg.MinioBucket + "/" + key
}

type ossProvider struct {
	cfg    *config.StorageConfig
	client *oss.Client
}

func newOSSProvider(cfg *config.StorageConfig) (*ossProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	return &ossProvider{cfg: cfg, client: client}, nil
}

func (p *ossProvider) Save(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	bucket, err := p.client.Bucket(p.cfg.OSSBucket)
	if err != nil {
		return "", err
	}
	if err := bucket.PutObject(key, reader); err != nil {
		return "", err
	}
	return p.PublicURL(key), nil
}

func (p *ossProvider) SaveFile(ctx context.Context, key string, localPath string, contentType string) (string, error) {
	bucket, err := p.client.Bucket(p.cfg.OSSBucket)
	if err != nil {
		return "", err
	}
	if err := bucket.PutObjectFromFile(key, localPath); err != nil {
		return "", err
	}
	return p.PublicURL(key), nil
}

func (p *ossProvider) Remove(ctx context.Context, key string) error {
	bucket, err := p.client.Bucket(p.cfg.OSSBucket)
	if err != nil {
		return err
	}
	return bucket.DeleteObject(key)
}

func (p *ossProvider) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.%s/%s", p.cfg.OSSBucket, p.cfg.OSSEndpoint, key)
}
