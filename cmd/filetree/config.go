package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"filetree/internal/render"
)

// Config holds settings resolved from flags, the environment and .env.
type Config struct {
	ProjectRoot string
	IgnoreFile  string
	Output      string
	AddonsFile  string

	S3 S3Config
}

// S3Config configures publishing and remote rule files.
type S3Config struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	Region       string
	UsePathStyle bool
}

var (
	config           Config
	s3ClientInstance *s3.Client
	s3ClientMutex    sync.Mutex
)

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// resolveConfig fills config from flags first, then FILETREE_* variables,
// then defaults derived from the project root and target.
func resolveConfig(targetDir string) (Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg := Config{
		ProjectRoot: firstNonEmpty(projectRoot, getEnvOrDefault("FILETREE_PROJECT_ROOT", cwd)),
		S3: S3Config{
			Endpoint:     getEnvOrDefault("FILETREE_S3_ENDPOINT", ""),
			AccessKey:    getEnvOrDefault("FILETREE_S3_ACCESS_KEY", ""),
			SecretKey:    getEnvOrDefault("FILETREE_S3_SECRET_KEY", ""),
			Region:       getEnvOrDefault("FILETREE_S3_REGION", "us-east-1"),
			UsePathStyle: getEnvOrDefault("FILETREE_S3_USE_PATH_STYLE", "false") == "true",
		},
	}

	cfg.IgnoreFile = firstNonEmpty(ignoreFile,
		getEnvOrDefault("FILETREE_IGNORE_FILE", filepath.Join(cfg.ProjectRoot, ".gitignore")))
	cfg.Output = firstNonEmpty(outputPath,
		getEnvOrDefault("FILETREE_OUTPUT", filepath.Join(targetDir, render.DefaultDocumentName)))
	cfg.AddonsFile = firstNonEmpty(addonsFile, filepath.Join(cfg.ProjectRoot, render.DefaultAddonsName))

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func createS3Config(ctx context.Context) (aws.Config, error) {
	configOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.S3.Region),
		awsconfig.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(retry.NewStandard(), retries)
		}),
	}

	if config.S3.AccessKey != "" && config.S3.SecretKey != "" {
		configOptions = append(configOptions, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.S3.AccessKey, config.S3.SecretKey, "")))
	}

	if config.S3.Endpoint != "" {
		configOptions = append(configOptions, awsconfig.WithBaseEndpoint(config.S3.Endpoint))
	}

	return awsconfig.LoadDefaultConfig(ctx, configOptions...)
}

func getS3Client(ctx context.Context) (*s3.Client, error) {
	s3ClientMutex.Lock()
	defer s3ClientMutex.Unlock()

	if s3ClientInstance != nil {
		return s3ClientInstance, nil
	}

	cfg, err := createS3Config(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 config: %w", err)
	}

	clientOptions := []func(*s3.Options){}
	if config.S3.UsePathStyle {
		clientOptions = append(clientOptions, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	s3ClientInstance = s3.NewFromConfig(cfg, clientOptions...)
	return s3ClientInstance, nil
}

// resetS3Client drops the cached client. Tests use it after changing config.
func resetS3Client() {
	s3ClientMutex.Lock()
	defer s3ClientMutex.Unlock()
	s3ClientInstance = nil
}
