package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const photoURLExpiry = 5 * time.Minute

// Presigner is the subset of *s3.PresignClient used here
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// PhotoService turns stored photo keys into readable URLs
type PhotoService struct {
	Presigner Presigner
	Bucket    string
}

// NewPhotoService builds a presigning PhotoService for bucket
func NewPhotoService(ctx context.Context, region, bucket string) (*PhotoService, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &PhotoService{
		Presigner: s3.NewPresignClient(s3.NewFromConfig(cfg)),
		Bucket:    bucket,
	}, nil
}

// GenerateReadURL generates a presigned URL for reading a photo
func (p *PhotoService) GenerateReadURL(ctx context.Context, key string) (string, error) {
	params := &s3.GetObjectInput{
		Bucket: aws.String(p.Bucket),
		Key:    aws.String(key),
	}
	presigned, err := p.Presigner.PresignGetObject(ctx, params, s3.WithPresignExpires(photoURLExpiry))
	if err != nil {
		return "", err
	}
	return presigned.URL, nil
}

// ResolvePhotos presigns every key that is not already a URL.
// A key that fails to presign is returned unchanged.
func (p *PhotoService) ResolvePhotos(ctx context.Context, keys []string) []string {
	if len(keys) == 0 {
		return keys
	}
	out := make([]string, len(keys))
	for i, key := range keys {
		if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
			out[i] = key
			continue
		}
		url, err := p.GenerateReadURL(ctx, key)
		if err != nil {
			log.Printf("⚠️ Warning: Failed to presign photo %s: %v", key, err)
			out[i] = key
			continue
		}
		out[i] = url
	}
	return out
}
