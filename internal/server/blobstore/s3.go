// Package blobstore mints short-lived presigned S3 URLs for invoice
// documents. Document bytes never pass through the API server: clients PUT
// and GET directly against the object store, and the database keeps only
// the storage key.
package blobstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

const urlValidity = 15 * time.Minute

// Config carries the connection settings for the document bucket. The
// credential fields match a MinIO root account in development and a regular
// IAM pair in production.
type Config struct {
	Region       string
	Bucket       string
	RootUser     string // MINIO_ROOT_USER
	RootPassword string // MINIO_ROOT_PASSWORD
	BaseEndpoint string
}

// S3Store issues presigned upload and download URLs against a single bucket.
type S3Store struct {
	config Config
}

func NewS3Store(cfg Config) *S3Store {
	return &S3Store{config: cfg}
}

// GetRandomStorageKey returns a fresh object key, sharded by upload date so
// bucket listings stay usable.
func GetRandomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("users/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *S3Store) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.RootUser,
			s.config.RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// GetPresignedPutURL mints a storage key and a URL that accepts one document
// upload until the URL expires.
func (s *S3Store) GetPresignedPutURL(ctx context.Context) (string, string, error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", "", err
	}

	bucket := s.config.Bucket
	key := GetRandomStorageKey()

	// Presigned PUT
	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(urlValidity))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// GetPresignedGetURL mints a download URL for an already stored key.
func (s *S3Store) GetPresignedGetURL(ctx context.Context, key string) (string, error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.Bucket

	// Presigned GET
	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(urlValidity))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
