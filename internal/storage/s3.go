package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type S3Config struct {
	Region    string
	Endpoint  string // non-empty for MinIO or other S3-compatible stores
	AccessKey string
	SecretKey string
	Bucket    string
	CDN       string // optional public base URL, served instead of the raw endpoint
}

// S3Storage talks to AWS S3 or MinIO. With an endpoint override it switches
// to path-style addressing, which MinIO requires.
type S3Storage struct {
	client *s3.Client
	cfg    S3Config
}

func NewS3(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{client: client, cfg: cfg}, nil
}

func (s *S3Storage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", &Error{Op: "upload", Key: key, Err: err}
	}
	return s.publicURL(key), nil
}

func (s *S3Storage) Delete(ctx context.Context, fileURL string) error {
	key := s.keyFromURL(fileURL)
	if key == "" {
		return &Error{Op: "delete", Key: fileURL, Err: errors.New("url does not belong to this bucket")}
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return &Error{Op: "delete", Key: key, Err: err}
	}
	return nil
}

func (s *S3Storage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, &Error{Op: "head", Key: key, Err: err}
	}
	return true, nil
}

func (s *S3Storage) publicURL(key string) string {
	if s.cfg.CDN != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.CDN, "/"), key)
	}
	if s.cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.cfg.Endpoint, "/"), s.cfg.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.cfg.Bucket, key)
}

// keyFromURL reverses publicURL. Returns "" when the URL was not produced by
// this backend's configuration.
func (s *S3Storage) keyFromURL(fileURL string) string {
	var bases []string
	if s.cfg.CDN != "" {
		bases = append(bases, strings.TrimRight(s.cfg.CDN, "/")+"/")
	}
	if s.cfg.Endpoint != "" {
		bases = append(bases, fmt.Sprintf("%s/%s/", strings.TrimRight(s.cfg.Endpoint, "/"), s.cfg.Bucket))
	}
	bases = append(bases, fmt.Sprintf("https://%s.s3.amazonaws.com/", s.cfg.Bucket))

	for _, base := range bases {
		if strings.HasPrefix(fileURL, base) {
			return strings.TrimPrefix(fileURL, base)
		}
	}
	return ""
}
