package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"

	"videogen-service/ddd/domain/gateway"
	"videogen-service/internal/resource"
	"videogen-service/pkg/logger"
)

// MinioStorage stores finished renders in object storage.
type MinioStorage struct {
	minioResource *resource.MinioResource
	publicBase    string
}

func NewMinioStorage(minioResource *resource.MinioResource, publicBase string) gateway.StorageGateway {
	return &MinioStorage{
		minioResource: minioResource,
		publicBase:    strings.TrimRight(publicBase, "/"),
	}
}

// UploadProcessedFile uploads a finished artifact and returns its object key.
func (s *MinioStorage) UploadProcessedFile(ctx context.Context, localPath, objectKey, contentType string) (string, error) {
	client := s.minioResource.GetClient()
	bucketName := s.minioResource.GetBucketName()

	file, err := os.Open(localPath)
	if err != nil {
		logger.Error("Failed to open local file", map[string]interface{}{
			"local_path": localPath,
			"error":      err.Error(),
		})
		return "", fmt.Errorf("open local file failed: %w", err)
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("get file info failed: %w", err)
	}

	if contentType == "" {
		contentType = getContentTypeFromExtension(objectKey)
	}

	_, err = client.PutObject(ctx, bucketName, objectKey, file, fileInfo.Size(), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		logger.Error("Failed to upload processed file to MinIO", map[string]interface{}{
			"local_path": localPath,
			"object_key": objectKey,
			"error":      err.Error(),
		})
		return "", fmt.Errorf("upload processed file to minio failed: %w", err)
	}

	logger.Info("Processed file uploaded", map[string]interface{}{
		"local_path": localPath,
		"object_key": objectKey,
		"size":       fileInfo.Size(),
	})

	return objectKey, nil
}

// PublicURL resolves the externally reachable URL for an object key.
func (s *MinioStorage) PublicURL(objectKey string) string {
	return s.publicBase + "/" + strings.TrimLeft(objectKey, "/")
}

func getContentTypeFromExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".mp4":
		return "video/mp4"
	case ".gif":
		return "image/gif"
	case ".png":
		return "image/png"
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	default:
		return "application/octet-stream"
	}
}
