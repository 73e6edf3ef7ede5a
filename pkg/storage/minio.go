// Package storage 提供了与对象存储服务（如 MinIO）交互的功能，用于在实例间共享训练好的模型文件。
package storage

import (
	"context"
	"fmt"

	"game-recommender-go/internal/config"
	"game-recommender-go/pkg/log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioClient 是一个全局的 MinIO 客户端实例。
var MinioClient *minio.Client

// InitMinIO 初始化 MinIO 客户端并确保指定的存储桶存在。
func InitMinIO(cfg config.MinIOConfig) {
	var err error

	MinioClient, err = minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		log.Fatal("初始化 MinIO 客户端失败", err)
	}
	log.Info("MinIO 客户端初始化成功")

	ctx := context.Background()
	bucketName := cfg.BucketName
	exists, err := MinioClient.BucketExists(ctx, bucketName)
	if err != nil {
		log.Fatal("检查 MinIO 存储桶失败", err)
	}
	if !exists {
		log.Infof("存储桶 '%s' 不存在，正在创建...", bucketName)
		if err := MinioClient.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			log.Fatal("创建 MinIO 存储桶失败", err)
		}
		log.Infof("存储桶 '%s' 创建成功", bucketName)
	} else {
		log.Infof("存储桶 '%s' 已存在", bucketName)
	}
}

// ModelObjectStore 在存储桶中保存单个模型对象。
type ModelObjectStore struct {
	client     *minio.Client
	bucketName string
	objectName string
}

// NewModelObjectStore 创建一个新的 ModelObjectStore 实例。
func NewModelObjectStore(client *minio.Client, cfg config.MinIOConfig) *ModelObjectStore {
	return &ModelObjectStore{
		client:     client,
		bucketName: cfg.BucketName,
		objectName: cfg.ObjectName,
	}
}

// Publish 上传本地模型文件，覆盖已有对象。
func (s *ModelObjectStore) Publish(ctx context.Context, localPath string) error {
	info, err := s.client.FPutObject(ctx, s.bucketName, s.objectName, localPath, minio.PutObjectOptions{
		ContentType: "application/gzip",
	})
	if err != nil {
		return fmt.Errorf("上传模型到 MinIO 失败: %w", err)
	}
	log.Infof("模型已上传到 MinIO: %s/%s (%d 字节)", s.bucketName, s.objectName, info.Size)
	return nil
}

// Fetch 将模型对象下载到 localPath。
func (s *ModelObjectStore) Fetch(ctx context.Context, localPath string) error {
	if err := s.client.FGetObject(ctx, s.bucketName, s.objectName, localPath, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("从 MinIO 下载模型失败: %w", err)
	}
	log.Infof("已从 MinIO 下载模型: %s/%s -> %s", s.bucketName, s.objectName, localPath)
	return nil
}
