package storage

import (
	"bytes"
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const s3KeyPrefix = "photos/"

// S3 uploads under a fixed prefix and derives the public URL from
// bucket/region/key.
type S3 struct {
	api    *s3.Client
	bucket string
	region string
}

func NewS3(region, accessKey, secretKey, bucket string) (*S3, error) {
	if bucket == "" {
		return nil, fmt.Errorf("storage: AWS_S3_BUCKET_NAME is required")
	}
	if region == "" {
		region = "us-east-1"
	}

	cfg, err := awsconfig.LoadDefaultConfig(
		context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
	if err != nil {
		return nil, err
	}

	return &S3{api: s3.NewFromConfig(cfg), bucket: bucket, region: region}, nil
}

func (s *S3) Upload(ctx context.Context, buf []byte, fileName, mimeType string) Result {
	key := s3KeyPrefix + fileName

	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(buf),
		ContentType: &mimeType,
	})
	if err != nil {
		return Result{Error: err.Error()}
	}

	return Result{Success: true, URL: s.objectURL(key), FileID: key}
}

func (s *S3) PhotoURL(fileID, _ string) string {
	if fileID == "" {
		return ""
	}
	return s.objectURL(fileID)
}

func (s *S3) objectURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
