package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	manager "github.com/aws/aws-sdk-go-v2/feature/s3/transfermanager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"filetree/internal/render"
)

// digestMetadataKey stores the document digest on uploaded objects.
const digestMetadataKey = "content-digest"

func isS3Path(p string) bool {
	return strings.HasPrefix(p, "s3://")
}

// parseS3Path splits s3://bucket/key. An empty key or one ending in "/"
// gets the base name of localPath appended.
func parseS3Path(s3Path, localPath string) (bucket string, key string, err error) {
	s3Path = strings.TrimPrefix(s3Path, "s3://")

	bucket, key, _ = strings.Cut(s3Path, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("invalid S3 format, use s3://bucket/key")
	}

	if key == "" || strings.HasSuffix(key, "/") {
		if localPath == "" {
			return "", "", fmt.Errorf("invalid S3 format, object key is required: s3://%s/<key>", bucket)
		}
		key += filepath.Base(localPath)
	}

	return bucket, key, nil
}

// checkS3ObjectExists reports whether the object exists and returns its metadata.
func checkS3ObjectExists(ctx context.Context, s3Client *s3.Client, bucket, key string) (exists bool, metadata map[string]string, err error) {
	result, err := s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NoSuchKey
		if errors.As(err, &notFound) {
			return false, nil, nil
		}
		// MinIO answers HEAD misses with a bare 404.
		if strings.Contains(err.Error(), "404") || strings.Contains(err.Error(), "NotFound") {
			return false, nil, nil
		}
		return false, nil, err
	}

	return true, result.Metadata, nil
}

// publishDocument uploads the document at localPath to dest unless the
// remote object already carries the same content digest.
func publishDocument(ctx context.Context, localPath, dest string) error {
	bucketName, key, err := parseS3Path(dest, localPath)
	if err != nil {
		return err
	}

	s3Client, err := getS3Client(ctx)
	if err != nil {
		return fmt.Errorf("failed to get S3 client: %w", err)
	}

	digest, err := render.FileDigest(localPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", localPath, err)
	}

	exists, metadata, err := checkS3ObjectExists(ctx, s3Client, bucketName, key)
	if err != nil {
		log.WithError(err).WithField("key", key).Warn("Could not check S3 object existence")
	} else if exists && metadata[digestMetadataKey] == digest {
		log.WithField("key", key).Info("Skipping upload (remote document has the same digest)")
		return nil
	}

	log.Infof("Uploading %s to s3://%s/%s", localPath, bucketName, key)

	uploader := manager.New(s3Client)
	return retryOperation(func() error {
		file, err := os.Open(localPath)
		if err != nil {
			return fmt.Errorf("failed to open file %s: %w", localPath, err)
		}
		defer func() { _ = file.Close() }()

		_, err = uploader.UploadObject(ctx, &manager.UploadObjectInput{
			Bucket: aws.String(bucketName),
			Key:    aws.String(key),
			Body:   file,
			Metadata: map[string]string{
				digestMetadataKey: digest,
			},
		})
		return err
	}, "Upload", retries)
}

// localCopy returns a local path for source. s3:// sources are downloaded to
// a temp file that cleanup removes; local paths are returned as is.
func localCopy(ctx context.Context, source string) (path string, cleanup func(), err error) {
	if !isS3Path(source) {
		return source, func() {}, nil
	}

	bucketName, key, err := parseS3Path(source, "")
	if err != nil {
		return "", nil, err
	}

	s3Client, err := getS3Client(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("failed to get S3 client: %w", err)
	}

	tempFile, err := os.CreateTemp("", ".filetree-rules-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()
	cleanup = func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			log.WithError(err).WithField("path", tempPath).Warn("Failed to remove temp file")
		}
	}

	downloader := manager.New(s3Client)
	err = retryOperation(func() error {
		_, err := downloader.DownloadObject(ctx, &manager.DownloadObjectInput{
			Bucket:   aws.String(bucketName),
			Key:      aws.String(key),
			WriterAt: tempFile,
		})
		return err
	}, "Download", retries)
	_ = tempFile.Close()
	if err != nil {
		cleanup()
		return "", nil, err
	}

	log.WithField("source", source).Debug("Fetched remote rules file")
	return tempPath, cleanup, nil
}
