// Package archive keeps a copy of uploaded resumes in S3-compatible storage.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const DefaultPrefix = "resumes"

// Archiver stores an uploaded document and returns its object key.
type Archiver interface {
	Archive(ctx context.Context, filename string, data []byte) (string, error)
}

type S3Config struct {
	Bucket      string
	EndpointURL string
	Region      string
	AccessKey   string
	SecretKey   string
	Prefix      string
}

// Enabled reports whether enough is configured to archive at all.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

type S3Archiver struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewS3Archiver(ctx context.Context, conf S3Config) (*S3Archiver, error) {
	if conf.Bucket == "" {
		return nil, errors.New("archive bucket is required")
	}
	if conf.Region == "" {
		conf.Region = "auto"
	}
	if conf.Prefix == "" {
		conf.Prefix = DefaultPrefix
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(conf.Region),
		// R2 and MinIO reject the newer default checksum trailers.
		config.WithRequestChecksumCalculation(aws.RequestChecksumCalculationWhenRequired),
	}
	if conf.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conf.AccessKey, conf.SecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}

	if conf.EndpointURL != "" {
		cfg.BaseEndpoint = aws.String(conf.EndpointURL)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	return &S3Archiver{client: client, bucket: conf.Bucket, prefix: conf.Prefix}, nil
}

func (a *S3Archiver) Archive(ctx context.Context, filename string, data []byte) (string, error) {
	key, err := ObjectKey(a.prefix, filename)
	if err != nil {
		return "", err
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(ContentType(filename)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	return key, nil
}

// ObjectKey builds "<prefix>/<uuidv7><.ext>", keeping only the lower-cased
// extension of the client-supplied name.
func ObjectKey(prefix, filename string) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate object id: %w", err)
	}
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(filename, `\`, "/")))
	return strings.Trim(prefix, "/") + "/" + id.String() + ext, nil
}

func ContentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}
