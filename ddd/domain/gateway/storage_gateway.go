package gateway

import "context"

// StorageGateway stores finished artifacts in object storage and resolves
// their public URLs.
type StorageGateway interface {
	UploadProcessedFile(ctx context.Context, localPath, objectKey, contentType string) (string, error)
	PublicURL(objectKey string) string
}
