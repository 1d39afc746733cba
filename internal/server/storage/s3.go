// Package storage implements the upload adapter: store picture bytes in an
// S3-compatible backend and hand back an opaque object key.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	sc "github.com/dkarklins/tradepost/internal/server/config"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
)

// Uploader turns raw file bytes into stored-file references.
type Uploader interface {
	Save(ctx context.Context, filename string, data io.Reader) (string, error)
}

// S3Uploader stores objects in the bucket configured in Config.
type S3Uploader struct {
	config *sc.Config
}

func NewS3Uploader(config *sc.Config) *S3Uploader {
	return &S3Uploader{config: config}
}

// randomStorageKey spreads objects by date and keeps the original filename
// for operator friendliness; uniqueness comes from the uuid.
func randomStorageKey(filename string) string {
	d := time.Now()
	return fmt.Sprintf("items/%d/%d/%d/%v-%s", d.Year(), d.Month(), d.Day(), uuid.New(), filename)
}

func (u *S3Uploader) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(u.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			u.config.S3RootUser,
			u.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(u.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, nil
}

// Save writes the object and returns its key.
func (u *S3Uploader) Save(ctx context.Context, filename string, data io.Reader) (string, error) {
	client, err := u.getClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := u.config.S3Bucket
	key := randomStorageKey(filename)

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
		Body:   data,
	})
	if err != nil {
		return "", err
	}

	return key, nil
}
