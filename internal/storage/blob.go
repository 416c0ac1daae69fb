package storage

import (
	"errors"
	"io"
	"path"
	"strings"
)

var (
	ErrEmptyKey   = errors.New("empty key")
	ErrInvalidKey = errors.New("key escapes store root")
)

// BlobStore keeps rendered marking reports.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	URL(key string) (string, error) // fs returns "file://..."
}

// ReportKey is the canonical key of a document report inside a job.
func ReportKey(jobID, documentID string) string {
	return path.Join("reports", jobID, documentID+".md")
}

func cleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrEmptyKey
	}
	c := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	c = strings.TrimPrefix(c, "/")
	if c == "" || c == "." {
		return "", ErrInvalidKey
	}
	return c, nil
}
