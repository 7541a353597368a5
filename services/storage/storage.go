package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dinewise/config"
	"dinewise/utils"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// CloudinaryStore implements ImageStore on Cloudinary. Calls go through a
// circuit breaker so an outage fails uploads fast instead of stalling requests.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	cb     *gobreaker.CircuitBreaker[string]
	logger *zap.Logger
}

// NewCloudinaryStore builds a Cloudinary client from the explicit config.
func NewCloudinaryStore(cfg *config.Config, logger *zap.Logger) (*CloudinaryStore, error) {
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "cloudinary",
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &CloudinaryStore{cld: cld, cb: cb, logger: logger}, nil
}

func (s *CloudinaryStore) execute(fn func() (string, error)) (string, error) {
	out, err := s.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", utils.Internal("image storage is temporarily unavailable", err)
	}
	return out, err
}

// Upload stores the file as folder/publicID, overwriting any previous version.
func (s *CloudinaryStore) Upload(ctx context.Context, localPath, folder, publicID string) (string, error) {
	return s.execute(func() (string, error) {
		result, err := s.cld.Upload.Upload(ctx, localPath, uploader.UploadParams{
			Folder:    folder,
			PublicID:  publicID,
			Overwrite: api.Bool(true),
		})
		if err != nil {
			return "", fmt.Errorf("failed to upload image: %w", err)
		}
		if result.SecureURL == "" {
			return "", fmt.Errorf("cloudinary returned no URL for %s/%s", folder, publicID)
		}
		return result.SecureURL, nil
	})
}

// Delete removes an image by public ID.
func (s *CloudinaryStore) Delete(ctx context.Context, publicID string) error {
	_, err := s.execute(func() (string, error) {
		if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
			return "", fmt.Errorf("failed to delete image %s: %w", publicID, err)
		}
		return "", nil
	})
	return err
}

// DisabledStore rejects uploads; used when Cloudinary is not configured.
type DisabledStore struct{}

func (DisabledStore) Upload(context.Context, string, string, string) (string, error) {
	return "", utils.Validation("image uploads are not configured on this server")
}

func (DisabledStore) Delete(context.Context, string) error { return nil }
