package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"file-parser-service/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Store keeps uploads in an S3-compatible bucket. Parse jobs get a temp
// local copy through Materialize since decoders work on file paths.
type S3Store struct {
	client *s3.S3
	bucket string
}

func NewS3Store(cfg *config.Config) (*S3Store, error) {
	s3Config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(cfg.Storage.S3.AccessKey, cfg.Storage.S3.SecretKey, ""),
		Endpoint:         aws.String(cfg.Storage.S3.Endpoint),
		Region:           aws.String(cfg.Storage.S3.Region),
		DisableSSL:       aws.Bool(!cfg.Storage.S3.UseSSL),
		S3ForcePathStyle: aws.Bool(true),
	}

	sess, err := session.NewSession(s3Config)
	if err != nil {
		return nil, err
	}

	return &S3Store{
		client: s3.New(sess),
		bucket: cfg.Storage.S3.Bucket,
	}, nil
}

func (s *S3Store) Save(ctx context.Context, key string, data io.Reader) (int64, error) {
	// PutObject needs a seekable body; spool the stream to a temp file first
	tmp, err := os.CreateTemp("", "upload-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	written, err := io.Copy(tmp, data)
	if err != nil {
		return written, fmt.Errorf("spool %s: %w", key, err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return written, err
	}

	_, err = s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   tmp,
	})
	if err != nil {
		return written, fmt.Errorf("put %s: %w", key, err)
	}
	return written, nil
}

func (s *S3Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	result, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	return result.Body, nil
}

func (s *S3Store) Materialize(ctx context.Context, key string) (string, func(), error) {
	body, err := s.Open(ctx, key)
	if err != nil {
		return "", nil, err
	}
	defer body.Close()

	// keep the extension so decoder sniffing still works
	tmp, err := os.CreateTemp("", "parse-*"+filepath.Ext(key))
	if err != nil {
		return "", nil, err
	}

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("download %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, err
	}

	path := tmp.Name()
	return path, func() { os.Remove(path) }, nil
}

func (s *S3Store) Remove(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}
