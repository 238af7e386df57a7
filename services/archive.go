package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/bytedance/sonic"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"

	"github.com/lac-hong-legacy/authguard/dto"
	"github.com/lac-hong-legacy/authguard/model"
)

// ArchiveService ships aged login history to object storage before the
// cleanup job purges it from the database.
type ArchiveService struct {
	appContext.DefaultService

	client     *minio.Client
	bucketName string
	endpoint   string
	accessKey  string
	secretKey  string
	useSSL     bool
	enabled    bool
}

const ARCHIVE_SVC = "archive_svc"

func (svc ArchiveService) Id() string {
	return ARCHIVE_SVC
}

func (svc *ArchiveService) Configure(ctx *appContext.Context) error {
	svc.enabled = os.Getenv("ARCHIVE_ENABLED") != "false"

	svc.endpoint = os.Getenv("MINIO_ENDPOINT")
	if svc.endpoint == "" {
		svc.endpoint = "localhost:9000"
	}

	svc.accessKey = os.Getenv("MINIO_ACCESS_KEY")
	if svc.accessKey == "" {
		svc.accessKey = "admin"
	}

	svc.secretKey = os.Getenv("MINIO_SECRET_KEY")
	if svc.secretKey == "" {
		svc.secretKey = "password123"
	}

	svc.useSSL = os.Getenv("MINIO_USE_SSL") == "true"

	svc.bucketName = os.Getenv("MINIO_BUCKET_NAME")
	if svc.bucketName == "" {
		svc.bucketName = "authguard-audit"
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *ArchiveService) Start() error {
	if !svc.enabled {
		log.Info("audit archiving disabled")
		return nil
	}

	client, err := minio.New(svc.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(svc.accessKey, svc.secretKey, ""),
		Secure: svc.useSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %v", err)
	}

	svc.client = client

	if err := svc.ensureBucket(); err != nil {
		return fmt.Errorf("failed to ensure bucket exists: %v", err)
	}

	log.WithField("endpoint", svc.endpoint).Info("archive service started")
	return nil
}

func (svc *ArchiveService) Enabled() bool {
	return svc.enabled
}

func (svc *ArchiveService) ensureBucket() error {
	ctx := context.Background()

	exists, err := svc.client.BucketExists(ctx, svc.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %v", err)
	}

	if !exists {
		err = svc.client.MakeBucket(ctx, svc.bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %v", err)
		}
		log.WithField("bucket", svc.bucketName).Info("created MinIO bucket")
	}

	return nil
}

// ArchiveLoginHistory writes a batch of history rows as one JSON object,
// keyed by the day the batch was taken. Returns the object name.
func (svc *ArchiveService) ArchiveLoginHistory(rows []model.LoginHistory) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}
	if svc.client == nil {
		return "", errors.New("archive client not initialized")
	}

	payload, err := sonic.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("failed to encode history batch: %v", err)
	}

	objectName := fmt.Sprintf("login-history/%s/%d.json", time.Now().Format("2006-01-02"), time.Now().UnixNano())

	ctx := context.Background()
	_, err = svc.client.PutObject(ctx, svc.bucketName, objectName, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload archive to MinIO: %v", err)
	}

	return objectName, nil
}

// ArchiveURL returns a presigned link to a stored archive object.
func (svc *ArchiveService) ArchiveURL(objectName string, expiry time.Duration) (string, error) {
	if svc.client == nil {
		return "", errors.New("archive client not initialized")
	}
	ctx := context.Background()

	presignedURL, err := svc.client.PresignedGetObject(ctx, svc.bucketName, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %v", err)
	}

	return presignedURL.String(), nil
}

// ListArchives enumerates stored archive objects under a prefix.
func (svc *ArchiveService) ListArchives(prefix string) ([]dto.ArchiveObject, error) {
	if svc.client == nil {
		return nil, errors.New("archive client not initialized")
	}
	ctx := context.Background()

	var objects []dto.ArchiveObject
	objectCh := svc.client.ListObjects(ctx, svc.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %v", object.Err)
		}
		objects = append(objects, dto.ArchiveObject{
			Name:         object.Key,
			SizeBytes:    object.Size,
			LastModified: object.LastModified,
		})
	}

	return objects, nil
}
