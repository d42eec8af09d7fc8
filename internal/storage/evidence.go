// Package storage uploads incident evidence images to S3 and hands back a
// retrievable object key.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path"

	"waterline/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type EvidenceStore struct {
	client *s3.Client
	bucket string
}

func NewEvidenceStore(client *s3.Client, bucket string) *EvidenceStore {
	return &EvidenceStore{client: client, bucket: bucket}
}

// Upload stores the file under issue_images/ and returns the object key.
func (s *EvidenceStore) Upload(ctx context.Context, filename string, file multipart.File, contentType string) (string, error) {
	key := fmt.Sprintf("issue_images/%s%s", utils.NanoIDSize(21), path.Ext(filename))

	body, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload evidence image: %w", err)
	}

	return key, nil
}

// URL returns the public object URL for an evidence key.
func (s *EvidenceStore) URL(key string) string {
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
}

func (s *EvidenceStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete evidence image: %w", err)
	}

	return nil
}
