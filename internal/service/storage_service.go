package service

import (
	"context"
	"fmt"
	"io"
	"os"

	"quiz_admin_backend/internal/config"
	"quiz_admin_backend/internal/util"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// BankSource 题库CSV与学生名单文件的读取来源
type BankSource interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// LocalBankSource 本地磁盘实现
type LocalBankSource struct{}

func (LocalBankSource) Fetch(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}

// MinioBankSource 对象存储实现，key为桶内对象名
type MinioBankSource struct {
	Client *minio.Client
	Bucket string
}

func NewMinioBankSource(cfg *config.StorageConfig) (*MinioBankSource, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioBankSource{
		Client: client,
		Bucket: cfg.MinioBucket,
	}, nil
}

func (s *MinioBankSource) Fetch(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.Client.GetObject(ctx, s.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return io.ReadAll(obj)
}

func NewBankSource(cfg *config.Config) (BankSource, error) {
	switch cfg.Storage.Type {
	case util.StorageMinio:
		return NewMinioBankSource(&cfg.Storage)
	case util.StorageLocal, "":
		return LocalBankSource{}, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
}
