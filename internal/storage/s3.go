// Package storage publishes pipeline artifacts to S3-compatible
// object storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/bioastra/spacekg/internal/util"
	"github.com/bioastra/spacekg/pkg/logger"
)

// NewS3Client builds an S3 client from the AWS_* environment. Returns
// nil when the configuration cannot be loaded.
func NewS3Client(ctx context.Context) *s3.Client {
	region := util.GetEnv("AWS_REGION")
	endpoint := util.GetEnv("AWS_ENDPOINT")
	accessKey := util.GetEnv("AWS_ACCESS_KEY")
	secretKey := util.GetEnv("AWS_SECRET_KEY")

	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(region),
		config.WithBaseEndpoint(endpoint),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey,
			secretKey,
			"",
		)),
	)
	if err != nil {
		logger.Error("loading aws config", "error", err)
		return nil
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
}

// PutFile uploads one local file under the given key prefix and
// returns the stored key.
func PutFile(ctx context.Context, client *s3.Client, prefix string, path string) (string, error) {
	bucket := util.GetEnv("AWS_BUCKET")

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	name := filepath.Base(path)
	mimeType := mime.TypeByExtension(filepath.Ext(name))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	key := fmt.Sprintf("%s/%s", prefix, name)

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}
	return key, nil
}

// PublishArtifacts uploads every named artifact file, skipping ones
// that do not exist on disk.
func PublishArtifacts(ctx context.Context, client *s3.Client, prefix string, paths []string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			logger.Warn("artifact missing, skipping upload", "path", path)
			continue
		}
		key, err := PutFile(ctx, client, prefix, path)
		if err != nil {
			return err
		}
		logger.Info("artifact published", "key", key)
	}
	return nil
}
