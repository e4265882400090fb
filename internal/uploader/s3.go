package uploader

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"photo-journal-backend/internal/models"
)

// S3Config holds S3 backend settings. Endpoint is for S3-compatible
// providers; leave it empty for AWS proper.
type S3Config struct {
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"`
}

// S3Uploader stores images in an S3 bucket.
type S3Uploader struct {
	client   *s3.Client
	bucket   string
	region   string
	endpoint string
}

// NewS3Uploader creates an S3 uploader from static credentials.
func NewS3Uploader(cfg S3Config) (*S3Uploader, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Uploader{
		client:   client,
		bucket:   cfg.Bucket,
		region:   cfg.Region,
		endpoint: cfg.Endpoint,
	}, nil
}

// Upload puts the image under photos/<ownerID>/<uuid>.jpg and returns its
// public URL.
func (u *S3Uploader) Upload(ctx context.Context, data []byte, contentType, ownerID string) (*Result, error) {
	key := fmt.Sprintf("photos/%s/%s.jpg", ownerID, uuid.New().String())

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUploadFailed, err)
	}

	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key)
	if u.endpoint != "" {
		url = fmt.Sprintf("%s/%s/%s", u.endpoint, u.bucket, key)
	}

	return &Result{PublicID: key, URL: url}, nil
}
