package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Storage stores objects in one Supabase Storage bucket. The bucket must
// be public for the returned URLs to resolve.
type Storage struct {
	client *Client
	bucket string
}

func (c *Client) Storage(bucket string) *Storage {
	return &Storage{client: c, bucket: bucket}
}

// Put uploads data under key, replacing any existing object, and returns
// its public URL.
func (s *Storage) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("object key is required")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	body, status, err := s.client.do(ctx, http.MethodPost, s.objectURL(key), data, map[string]string{
		"Content-Type":  contentType,
		"Cache-Control": "3600",
		"x-upsert":      "true",
	})
	if err != nil {
		return "", fmt.Errorf("upload %s/%s: %w", s.bucket, key, err)
	}
	if status >= 400 {
		return "", fmt.Errorf("upload %s/%s: %w", s.bucket, key, parseError(body, status))
	}
	return s.PublicURL(key), nil
}

// Delete removes key. Deleting a missing object is not an error.
func (s *Storage) Delete(ctx context.Context, key string) error {
	body, status, err := s.client.do(ctx, http.MethodDelete, s.objectURL(key), nil, nil)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", s.bucket, key, err)
	}
	if status >= 400 {
		if err := parseError(body, status); !IsNotFound(err) {
			return fmt.Errorf("delete %s/%s: %w", s.bucket, key, err)
		}
	}
	return nil
}

func (s *Storage) PublicURL(key string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", s.client.storageURL, s.bucket, escapeKey(key))
}

func (s *Storage) objectURL(key string) string {
	return fmt.Sprintf("%s/object/%s/%s", s.client.storageURL, s.bucket, escapeKey(key))
}

// escapeKey escapes each path segment but keeps the separators.
func escapeKey(key string) string {
	parts := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
