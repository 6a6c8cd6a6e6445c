package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/lucontre/expense-tracker-pro-sub000/config"
)

// Client MinIO 对象存储封装（票据图片 / 用户头像）
// 构造时注入，避免包级单例
type Client struct {
	mc         *minio.Client
	bucket     string
	presignTTL time.Duration
	logger     *zap.Logger
}

// NewClient 创建 MinIO 客户端并确保 bucket 存在
func NewClient(cfg *config.StorageConfig, logger *zap.Logger) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 MinIO 客户端失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := mc.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("检查 bucket 失败: %w", err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("创建 bucket 失败: %w", err)
		}
		logger.Info("已创建对象存储 bucket", zap.String("bucket", cfg.Bucket))
	}

	logger.Info("对象存储连接成功", zap.String("endpoint", cfg.Endpoint))

	return &Client{
		mc:         mc,
		bucket:     cfg.Bucket,
		presignTTL: cfg.PresignTTL,
		logger:     logger,
	}, nil
}

// Put 上传对象
func (c *Client) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, err := c.mc.PutObject(ctx, c.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// PresignedGetURL 生成限时下载链接
func (c *Client) PresignedGetURL(ctx context.Context, key string) (string, error) {
	u, err := c.mc.PresignedGetObject(ctx, c.bucket, key, c.presignTTL, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// Remove 删除对象
func (c *Client) Remove(ctx context.Context, key string) error {
	return c.mc.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{})
}
