package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"trekora_back_end/internal/database"
)

// UploadTourImage pousse une image de tour dans le bucket MinIO et retourne
// son URL publique. Le nom est préfixé d'un UUID pour éviter les collisions.
func UploadTourImage(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}

	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	bucket := os.Getenv("MINIO_BUCKET")
	objectName := path.Join("tours", uuid.New().String()+"-"+file.Filename)

	_, err = database.MinIO.PutObject(ctx, bucket, objectName, f, file.Size,
		minio.PutObjectOptions{ContentType: file.Header.Get("Content-Type")})
	if err != nil {
		return "", err
	}

	scheme := "http"
	if os.Getenv("MINIO_USE_SSL") == "true" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, os.Getenv("MINIO_ENDPOINT"), bucket, objectName), nil
}
