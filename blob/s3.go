package blob

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// Store keeps uploaded receipt images and hands back their keys.
type Store interface {
	PutReceipt(ctx context.Context, userID, mimeType string, data []byte) (string, error)
	DeleteReceipt(ctx context.Context, key string) error
}

// S3API is the part of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

type S3Store struct {
	api    S3API
	bucket string
}

func NewS3Store(api S3API, bucket string) *S3Store {
	return &S3Store{api: api, bucket: bucket}
}

// ReceiptKey returns receipts/<user>/<uuid>.<ext> for an upload.
func ReceiptKey(userID, mimeType string) string {
	ext, ok := extensions[mimeType]
	if !ok {
		ext = "bin"
	}
	return fmt.Sprintf("receipts/%s/%s.%s", userID, uuid.NewString(), ext)
}

func (s *S3Store) PutReceipt(ctx context.Context, userID, mimeType string, data []byte) (string, error) {
	key := ReceiptKey(userID, mimeType)
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(data),
		ContentLength:        aws.Int64(int64(len(data))),
		ContentType:          aws.String(mimeType),
		ServerSideEncryption: types.ServerSideEncryptionAes256,
	})
	if err != nil {
		return "", fmt.Errorf("failed to store receipt: %w", err)
	}
	return key, nil
}

func (s *S3Store) DeleteReceipt(ctx context.Context, key string) error {
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete receipt %s: %w", key, err)
	}
	return nil
}
