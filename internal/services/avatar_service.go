package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const avatarBucket = "member-avatars"

// AvatarService stores member profile pictures in object storage and
// hands out short-lived presigned URLs for the admin UI.
type AvatarService interface {
	UploadAvatar(ctx context.Context, memberID uuid.UUID, reader io.Reader, size int64, contentType string) (string, error)
	GetAvatarURL(objectName string, expiry time.Duration) (string, error)
	DeleteAvatar(ctx context.Context, objectName string) error
	EnsureBucketExists(ctx context.Context) error
	Ping(ctx context.Context) error
}

type avatarService struct {
	client *minio.Client
}

func NewAvatarService(endpoint, accessKey, secretKey string, useSSL bool) (AvatarService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &avatarService{client: client}, nil
}

func (s *avatarService) UploadAvatar(ctx context.Context, memberID uuid.UUID, reader io.Reader, size int64, contentType string) (string, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	objectName := fmt.Sprintf("%s/%d", memberID.String(), time.Now().UnixNano())

	_, err := s.client.PutObject(ctx, avatarBucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return objectName, nil
}

func (s *avatarService) GetAvatarURL(objectName string, expiry time.Duration) (string, error) {
	url, err := s.client.PresignedGetObject(context.Background(), avatarBucket, objectName, expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (s *avatarService) DeleteAvatar(ctx context.Context, objectName string) error {
	return s.client.RemoveObject(ctx, avatarBucket, objectName, minio.RemoveObjectOptions{})
}

func (s *avatarService) EnsureBucketExists(ctx context.Context) error {
	found, err := s.client.BucketExists(ctx, avatarBucket)
	if err != nil {
		return err
	}
	if !found {
		return s.client.MakeBucket(ctx, avatarBucket, minio.MakeBucketOptions{})
	}
	return nil
}

func (s *avatarService) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, avatarBucket)
	return err
}
