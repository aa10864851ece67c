package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config configures the S3 backend. Endpoint is set for MinIO and other
// S3-compatible services.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// S3 stores files as objects whose keys are the URL without its leading slash.
type S3 struct {
	client *s3.Client
	bucket string
}

// NewS3 creates an S3 backend.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("S3 region is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Endpoint != "" {
		if cfg.AccessKey == "" || cfg.SecretKey == "" {
			return nil, fmt.Errorf("access key and secret key are required for a custom S3 endpoint")
		}
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3{client: client, bucket: cfg.Bucket}, nil
}

func objectKey(u string) (string, error) {
	folder, name, err := split(u)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(URL(folder, name), "/"), nil
}

func (s *S3) Save(ctx context.Context, folder, name, contentType string, r io.Reader) (string, error) {
	u := URL(folder, name)
	key, err := objectKey(u)
	if err != nil {
		return "", err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return u, nil
}

func (s *S3) Move(ctx context.Context, u, folder string) (string, error) {
	_, name, err := split(u)
	if err != nil {
		return "", err
	}
	srcKey, _ := objectKey(u)
	dstURL := URL(folder, name)
	dstKey, _ := objectKey(dstURL)
	if srcKey == dstKey {
		return u, nil
	}

	srcExists, err := s.head(ctx, srcKey)
	if err != nil {
		return "", err
	}
	if !srcExists {
		dstExists, err := s.head(ctx, dstKey)
		if err != nil {
			return "", err
		}
		if dstExists {
			return dstURL, nil
		}
		return "", fmt.Errorf("%s: %w", u, ErrNotExist)
	}

	_, err = s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(url.PathEscape(s.bucket + "/" + srcKey)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to copy object: %w", err)
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(srcKey),
	}); err != nil {
		return "", fmt.Errorf("failed to delete source object: %w", err)
	}
	return dstURL, nil
}

func (s *S3) Delete(ctx context.Context, u string) error {
	key, err := objectKey(u)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

func (s *S3) Exists(ctx context.Context, u string) (bool, error) {
	key, err := objectKey(u)
	if err != nil {
		return false, err
	}
	return s.head(ctx, key)
}

func (s *S3) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}

func (s *S3) head(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat object: %w", err)
}
