package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/minio"
)

func setupMinIOTest(t *testing.T, ctx context.Context, bucketName string) (*s3.Client, func()) {
	if testing.Short() {
		t.Skip("skipping MinIO container test in short mode")
	}

	minioContainer, err := minio.Run(ctx, "minio/minio:RELEASE.2025-09-07T16-13-09Z")
	require.NoError(t, err)

	cleanup := func() {
		testcontainers.CleanupContainer(t, minioContainer)
	}

	endpoint, err := minioContainer.Endpoint(ctx, "")
	require.NoError(t, err)

	if !strings.HasPrefix(endpoint, "http://") {
		endpoint = "http://" + endpoint
	}

	t.Setenv("FILETREE_S3_ENDPOINT", endpoint)
	t.Setenv("FILETREE_S3_ACCESS_KEY", "minioadmin")
	t.Setenv("FILETREE_S3_SECRET_KEY", "minioadmin")
	t.Setenv("FILETREE_S3_REGION", "us-east-1")
	t.Setenv("FILETREE_S3_USE_PATH_STYLE", "true")
	resetS3Client()

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("minioadmin", "minioadmin", "")),
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithBaseEndpoint(endpoint),
	)
	require.NoError(t, err)

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	if bucketName != "" {
		_, err = s3Client.CreateBucket(ctx, &s3.CreateBucketInput{
			Bucket: aws.String(bucketName),
		})
		require.NoError(t, err)
	}

	return s3Client, cleanup
}

func captureStdout(fn func()) string {
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	fn()

	_ = w.Close()
	os.Stdout = oldStdout
	return <-done
}

// runApp runs the CLI with args and returns stdout.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var err error
	out := captureStdout(func() {
		err = newApp().Run(context.Background(), append([]string{"filetree"}, args...))
	})
	return out, err
}

// mkTree creates dirs (trailing "/") and files under root.
func mkTree(t *testing.T, root string, entries map[string]string) {
	t.Helper()
	for p, content := range entries {
		full := filepath.Join(root, filepath.FromSlash(p))
		if strings.HasSuffix(p, "/") {
			require.NoError(t, os.MkdirAll(full, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func preserveGlobalVars() func() {
	originalTarget := target
	originalProjectRoot := projectRoot
	originalIgnoreFile := ignoreFile
	originalIgnorePatterns := ignorePatterns
	originalRulesConfig := rulesConfig
	originalOutputPath := outputPath
	originalAddonsFile := addonsFile
	originalEnvFile := envFile
	originalExcludeNames := excludeNames
	originalExcludeExts := excludeExts
	originalForceInclusions := forceInclusions
	originalColorMode := colorMode
	originalGitignoreMode := gitignoreMode
	originalUploadDest := uploadDest
	originalMaxDepth := maxDepth
	originalNoWrite := noWrite
	originalJSONOutput := jsonOutput
	originalQuiet := quiet
	originalVerbose := verbose
	originalTimeout := timeout
	originalRetries := retries
	originalConfig := config

	return func() {
		target = originalTarget
		projectRoot = originalProjectRoot
		ignoreFile = originalIgnoreFile
		ignorePatterns = originalIgnorePatterns
		rulesConfig = originalRulesConfig
		outputPath = originalOutputPath
		addonsFile = originalAddonsFile
		envFile = originalEnvFile
		excludeNames = originalExcludeNames
		excludeExts = originalExcludeExts
		forceInclusions = originalForceInclusions
		colorMode = originalColorMode
		gitignoreMode = originalGitignoreMode
		uploadDest = originalUploadDest
		maxDepth = originalMaxDepth
		noWrite = originalNoWrite
		jsonOutput = originalJSONOutput
		quiet = originalQuiet
		verbose = originalVerbose
		timeout = originalTimeout
		retries = originalRetries
		config = originalConfig
		resetS3Client()
	}
}
