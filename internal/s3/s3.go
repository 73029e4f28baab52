package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/windoze95/forkful-api/internal/config"
)

// Store uploads and deletes recipe images in one bucket.
type Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
}

// newS3Client creates a new S3 client from the app config.
// When AWS access key and secret are provided, static credentials are used;
// otherwise the default credential chain is preserved (IAM role, instance
// profile, etc.) so ECS/EC2 task roles work without explicit keys.
func newS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.EnvVars.AWSRegion),
	}

	if cfg.EnvVars.AWSAccessKeyID != "" && cfg.EnvVars.AWSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.EnvVars.AWSAccessKeyID,
			cfg.EnvVars.AWSSecretAccessKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(awsCfg), nil
}

// NewStore creates a Store for the configured bucket. The client is built
// once and shared by all requests.
func NewStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	client, err := newS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   cfg.EnvVars.S3Bucket,
	}, nil
}

// Upload stores data under key and returns the object's location URL.
func (s *Store) Upload(ctx context.Context, key string, data []byte) (string, error) {
	result, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(http.DetectContentType(data)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return result.Location, nil
}

// Delete removes the object stored under key.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}

	return nil
}

// GenerateS3Key generates the S3 key for a recipe image, given the recipe ID.
func GenerateS3Key(recipeID uint) string {
	return fmt.Sprintf("recipes/%d/images/recipe_image_%d.jpg", recipeID, recipeID)
}

// IsRecipeImageURL reports whether imageURL points at the stored image of
// recipeID rather than an external or social thumbnail.
func IsRecipeImageURL(imageURL string, recipeID uint) bool {
	return imageURL != "" && strings.HasSuffix(imageURL, "/"+GenerateS3Key(recipeID))
}
