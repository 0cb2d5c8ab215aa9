package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// setupLogger sends logs to stderr so stdout carries only the tree.
func setupLogger() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})

	switch {
	case verbose:
		log.SetLevel(logrus.DebugLevel)
	case quiet:
		log.SetLevel(logrus.WarnLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}
}

// retryOperation executes an operation with retry logic
func retryOperation(operation func() error, operationType string, maxAttempts int) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempts := range maxAttempts {
		lastErr = operation()
		if lastErr == nil {
			return nil
		}
		if attempts < maxAttempts-1 {
			log.Debugf("%s attempt %d failed, retrying...", operationType, attempts+1)
		}
	}
	return fmt.Errorf("failed to %s after %d attempts: %v", strings.ToLower(operationType), maxAttempts, lastErr)
}

// splitList splits a comma-separated flag value, dropping empty items.
func splitList(value string) []string {
	var items []string
	for item := range strings.SplitSeq(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
