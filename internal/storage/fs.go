package storage

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
)

type FSStore struct{ base string }

func NewFSStore(base string) (*FSStore, error) {
	if base == "" {
		base = "./data"
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{base: abs}, nil
}

func (s *FSStore) path(key string) (string, string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", "", err
	}
	return k, filepath.Join(s.base, filepath.FromSlash(k)), nil
}

// Put writes through a temp file so readers never see a partial report.
func (s *FSStore) Put(key string, r io.Reader) (string, error) {
	k, dst, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".put-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", k, err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", err
	}
	return k, nil
}

func (s *FSStore) Get(key string) (io.ReadCloser, error) {
	_, p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

func (s *FSStore) URL(key string) (string, error) {
	_, p, err := s.path(key)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(p)}
	return u.String(), nil
}
