package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	sc "github.com/dmitrijs2005/gophchat/internal/server/config"
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

	now = time.Now
)

// UploadParams tells the client where and how to upload one image.
type UploadParams struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expiresAt"`
	Bucket    string    `json:"bucket"`
}

// UploadService signs direct-to-store image uploads.
type UploadService struct {
	config *sc.Config
}

func NewUploadService(config *sc.Config) *UploadService {
	return &UploadService{config: config}
}

// GetRandomStorageKey returns a fresh object key under uploads/YYYY/M/D/.
func GetRandomStorageKey(t time.Time) string {
	return fmt.Sprintf("uploads/%d/%d/%d/%v", t.Year(), t.Month(), t.Day(), uuid.New())
}

func (s *UploadService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// Sign returns presigned PUT parameters for a new object key.
func (s *UploadService) Sign(ctx context.Context) (*UploadParams, error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("presign client: %w", err)
	}

	issued := now()
	bucket := s.config.S3Bucket
	key := GetRandomStorageKey(issued)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.UploadURLValidity))
	if err != nil {
		return nil, fmt.Errorf("presign put: %w", err)
	}

	method := req.Method
	if method == "" {
		method = http.MethodPut
	}

	return &UploadParams{
		Key:       key,
		URL:       req.URL,
		Method:    method,
		ExpiresAt: issued.Add(s.config.UploadURLValidity).UTC(),
		Bucket:    bucket,
	}, nil
}
