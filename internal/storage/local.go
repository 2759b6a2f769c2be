// Package storage keeps uploaded objects on local disk when no hosted
// bucket is configured.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local writes objects under Dir and serves them from URLBase, which the
// HTTP server maps onto Dir.
type Local struct {
	Dir     string
	URLBase string
}

func NewLocal(dir, urlBase string) *Local {
	return &Local{Dir: dir, URLBase: strings.TrimRight(urlBase, "/")}
}

func (l *Local) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	rel, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	abs := filepath.Join(l.Dir, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	// Write to a temp file first so readers never see a partial object.
	tmp, err := os.CreateTemp(filepath.Dir(abs), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), abs); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("move file: %w", err)
	}

	return l.URLBase + "/" + filepath.ToSlash(rel), nil
}

func (l *Local) Delete(_ context.Context, key string) error {
	rel, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(l.Dir, rel)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// cleanKey rejects keys that would escape the upload directory.
func cleanKey(key string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(strings.TrimLeft(key, "/")))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return rel, nil
}
