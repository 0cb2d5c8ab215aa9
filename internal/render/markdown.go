package render

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"

	"filetree/internal/tree"
)

// DefaultDocumentName is the file written into the target directory.
const DefaultDocumentName = "FILE-STRUCTURE.md"

// documentMode is the permission of a newly created document.
const documentMode fs.FileMode = 0o644

// Markdown renders the structure document: a title and a fenced block with
// the root name followed by every line.
func Markdown(rootName string, lines []tree.Line) []byte {
	var b bytes.Buffer
	b.WriteString("# Project File Structure\n\n")
	b.WriteString("```\n")
	b.WriteString(rootName + "/\n")
	for _, l := range lines {
		b.WriteString(l.Text)
		b.WriteByte('\n')
	}
	b.WriteString("```\n")
	return b.Bytes()
}

// Digest returns the hex blake2b-256 digest of data.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FileDigest returns the digest of the file at path.
func FileDigest(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Digest(data), nil
}

// WriteDocument writes content to path unless the file already holds the
// same bytes. It reports whether the file was written.
func WriteDocument(path string, content []byte, log logrus.FieldLogger) (bool, error) {
	if existing, err := FileDigest(path); err == nil {
		if existing == Digest(content) {
			if log != nil {
				log.WithField("path", path).Info("Document unchanged, skipping write")
			}
			return false, nil
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("read existing document %s: %w", path, err)
	}

	mode := documentMode
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".filetree-*")
	if err != nil {
		return false, fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) && log != nil {
			log.WithError(err).WithField("path", tmpPath).Warn("Failed to remove temp file")
		}
	}()

	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return false, fmt.Errorf("chmod %s: %w", path, err)
	}
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return false, fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return false, fmt.Errorf("move document into place: %w", err)
	}

	if log != nil {
		log.WithField("path", path).Info("Wrote file structure")
	}
	return true, nil
}
