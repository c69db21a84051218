package reportstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gofiber/fiber/v2/log"

	"github.com/yfkiwi/growthPartnerAI/internal/pkg/config"
)

// Uploader stores an object and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, objectKey string, body io.Reader, size int64, contentType string) (*UploadResult, error)
}

// UploadResult contains the result of a successful upload
type UploadResult struct {
	BucketName  string
	ObjectKey   string
	Size        int64
	ContentType string
	URL         string
}

// Client wraps the S3 client for report documents
type Client struct {
	s3Client *s3.Client
	cfg      config.ReportStoreConfig
}

// NewClient creates an S3 client for cfg. It does not touch the network.
func NewClient(ctx context.Context, cfg config.ReportStoreConfig) (*Client, error) {
	if !cfg.Enabled() {
		return nil, errors.New("report storage is not configured")
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.UsePathStyle
		}
	})

	log.Infof("[ReportStore] Initialized S3 client for bucket: %s", cfg.Bucket)
	return &Client{s3Client: s3Client, cfg: cfg}, nil
}

// Ping checks that the bucket is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.cfg.Bucket),
	})
	if err != nil {
		return fmt.Errorf("bucket %s not accessible: %w", c.cfg.Bucket, err)
	}
	return nil
}

// Upload writes body to objectKey with public-read visibility.
func (c *Client) Upload(ctx context.Context, objectKey string, body io.Reader, size int64, contentType string) (*UploadResult, error) {
	log.Infof("[ReportStore] Starting upload: s3://%s/%s (Size: %d bytes)", c.cfg.Bucket, objectKey, size)

	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.cfg.Bucket),
		Key:           aws.String(objectKey),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
		ACL:           types.ObjectCannedACLPublicRead,
		Metadata: map[string]string{
			"upload-source": "growthpartner-admin",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	log.Infof("[ReportStore] Successfully uploaded: s3://%s/%s", c.cfg.Bucket, objectKey)
	return &UploadResult{
		BucketName:  c.cfg.Bucket,
		ObjectKey:   objectKey,
		Size:        size,
		ContentType: contentType,
		URL:         PublicURL(c.cfg, objectKey),
	}, nil
}

// PublicURL is where a stored object can be downloaded from.
func PublicURL(cfg config.ReportStoreConfig, objectKey string) string {
	if base := strings.TrimRight(cfg.PublicBaseURL, "/"); base != "" {
		return base + "/" + objectKey
	}
	if endpoint := strings.TrimRight(cfg.Endpoint, "/"); endpoint != "" {
		if cfg.UsePathStyle {
			return fmt.Sprintf("%s/%s/%s", endpoint, cfg.Bucket, objectKey)
		}
		scheme, host, ok := strings.Cut(endpoint, "://")
		if ok {
			return fmt.Sprintf("%s://%s.%s/%s", scheme, cfg.Bucket, host, objectKey)
		}
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", cfg.Bucket, cfg.Region, objectKey)
}
