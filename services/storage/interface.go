package storage

import (
	"context"
	"net/url"
	"path"
	"strings"
)

// ImageStore uploads and deletes public images.
type ImageStore interface {
	// Upload stores the file at localPath under folder/publicID and returns its URL.
	Upload(ctx context.Context, localPath, folder, publicID string) (string, error)
	// Delete removes an image by its public identifier.
	Delete(ctx context.Context, publicID string) error
}

// PublicIDFromURL recovers the public identifier of a delivered image, e.g.
// https://res.cloudinary.com/demo/image/upload/v17/reviews/abc-0.jpg -> reviews/abc-0.
// It returns "" for URLs that were not produced by the store.
func PublicIDFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	_, rest, found := strings.Cut(u.Path, "/upload/")
	if !found || rest == "" {
		return ""
	}
	if first, tail, ok := strings.Cut(rest, "/"); ok && isVersionSegment(first) {
		rest = tail
	}
	return strings.TrimSuffix(rest, path.Ext(rest))
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
