package storage

import (
	"context"
	"testing"

	"dinewise/utils"
)

func TestPublicIDFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://res.cloudinary.com/demo/image/upload/v1712345/reviews/abc-0.jpg", "reviews/abc-0"},
		{"https://res.cloudinary.com/demo/image/upload/reviews/abc-1.png", "reviews/abc-1"},
		{"https://res.cloudinary.com/demo/image/upload/businesses/logo", "businesses/logo"},
		{"https://example.com/picture.jpg", ""},
		{"::not a url", ""},
	}
	for _, tt := range tests {
		if got := PublicIDFromURL(tt.url); got != tt.want {
			t.Errorf("PublicIDFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestDisabledStoreRejectsUploads(t *testing.T) {
	_, err := DisabledStore{}.Upload(context.Background(), "/tmp/x.jpg", "reviews", "x")
	if !utils.IsKind(err, utils.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
