package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ArchiveService keeps a copy of every exported statement in S3 and
// hands out presigned download links.
type ArchiveService struct {
	s3Client *s3.Client
	bucket   string
	region   string
}

// NewArchiveService creates an archive backed by the given bucket.
// For LocalStack pass the endpoint (e.g. "http://localhost:4566");
// leave it empty for production AWS.
func NewArchiveService(bucket, region, endpoint string) (*ArchiveService, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket cannot be empty")
	}
	if region == "" {
		return nil, fmt.Errorf("region cannot be empty")
	}

	ctx := context.Background()

	if endpoint != "" {
		// LocalStack accepts any static credentials.
		cfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client := s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true // required for LocalStack
		})
		return &ArchiveService{s3Client: client, bucket: bucket, region: region}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &ArchiveService{s3Client: s3.NewFromConfig(cfg), bucket: bucket, region: region}, nil
}

// StatementKey builds the archive key for one exported statement.
// Format: statements/{orgID}/{period}-{uniqueID}.xlsx
func (s *ArchiveService) StatementKey(orgID, periodLabel string) (string, error) {
	if orgID == "" {
		return "", fmt.Errorf("orgID cannot be empty")
	}
	if periodLabel == "" {
		return "", fmt.Errorf("periodLabel cannot be empty")
	}
	uniqueID := uuid.New().String()[:8]
	return fmt.Sprintf("statements/%s/%s-%s.xlsx", orgID, periodLabel, uniqueID), nil
}

// StoreStatement uploads an exported workbook under the given key.
func (s *ArchiveService) StoreStatement(ctx context.Context, key string, workbook []byte) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	if len(workbook) == 0 {
		return fmt.Errorf("workbook cannot be empty")
	}
	if s.s3Client == nil {
		return fmt.Errorf("s3 client is not initialized")
	}

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(workbook),
		ContentType: aws.String(xlsxContentType),
	})
	if err != nil {
		return fmt.Errorf("failed to store statement in S3: %w", err)
	}
	return nil
}

// PresignDownloadURL generates a presigned GET URL for an archived
// statement.
func (s *ArchiveService) PresignDownloadURL(ctx context.Context, key string, expiryMinutes int) (string, error) {
	if key == "" {
		return "", fmt.Errorf("key cannot be empty")
	}
	if expiryMinutes <= 0 {
		return "", fmt.Errorf("expiryMinutes must be greater than 0")
	}
	if s.s3Client == nil {
		return "", fmt.Errorf("s3 client is not initialized")
	}

	presignClient := s3.NewPresignClient(s.s3Client)
	presignedReq, err := presignClient.PresignGetObject(ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		},
		s3.WithPresignExpires(time.Duration(expiryMinutes)*time.Minute),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return presignedReq.URL, nil
}

// Delete removes an archived statement.
func (s *ArchiveService) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	if s.s3Client == nil {
		return fmt.Errorf("s3 client is not initialized")
	}

	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete archived statement: %w", err)
	}
	return nil
}
