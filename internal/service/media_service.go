package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	cfg "github.com/jitenkr2030/onetap-repost/configs"
	"github.com/jitenkr2030/onetap-repost/internal/models"
)

// MediaService turns stored listing media into URLs the platforms can fetch.
// Media uploaded through the dashboard lives in Cloudflare R2 under a storage
// key and needs a presigned GET; externally hosted media already has a URL.
type MediaService struct {
	config cfg.Config
}

func NewMediaService(config cfg.Config) *MediaService {
	return &MediaService{config: config}
}

func (m *MediaService) r2Client(ctx context.Context) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(m.config.R2.AccessKey, m.config.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", m.config.R2.AccountID))
	}), nil
}

// ResolveURL returns a fetchable URL for one media record, presigning the R2
// object when only a storage key is present.
func (m *MediaService) ResolveURL(ctx context.Context, media *models.ListingMedia) (string, error) {
	if strings.HasPrefix(media.URL, "http") {
		return media.URL, nil
	}
	if media.StorageKey == "" {
		return "", fmt.Errorf("media %s has neither URL nor storage key", media.ID)
	}

	client, err := m.r2Client(ctx)
	if err != nil {
		return "", err
	}

	presigner := s3.NewPresignClient(client)
	req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.config.R2.BucketName),
		Key:    aws.String(media.StorageKey),
	}, s3.WithPresignExpires(1*time.Hour))
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return req.URL, nil
}
