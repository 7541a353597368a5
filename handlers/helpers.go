package handlers

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"

	"dinewise/models"
	"dinewise/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// bindJSON decodes the body into dst, reporting malformed input as a validation error.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return utils.Validation("invalid request body: %v", err)
	}
	return nil
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, utils.Validation("%s must be an integer", key)
	}
	return v, nil
}

func queryFloat(c *gin.Context, key string) (float64, bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, utils.Validation("%s must be a number", key)
	}
	return v, true, nil
}

// queryLocation reads lat/lng (or latitude/longitude). Both or neither must be present.
func queryLocation(c *gin.Context) (*models.GeoPoint, error) {
	lat, hasLat, err := queryFloat(c, "lat")
	if err != nil {
		return nil, err
	}
	if !hasLat {
		if lat, hasLat, err = queryFloat(c, "latitude"); err != nil {
			return nil, err
		}
	}
	lng, hasLng, err := queryFloat(c, "lng")
	if err != nil {
		return nil, err
	}
	if !hasLng {
		if lng, hasLng, err = queryFloat(c, "longitude"); err != nil {
			return nil, err
		}
	}
	if !hasLat && !hasLng {
		return nil, nil
	}
	p := models.NewGeoPoint(lat, lng)
	if !hasLat || !hasLng || !p.Valid() {
		return nil, utils.Validation("lat and lng must both be valid coordinates")
	}
	return p, nil
}

// saveUploads writes multipart files to the temp dir. The returned cleanup
// removes them.
func saveUploads(c *gin.Context, files []*multipart.FileHeader) ([]string, func(), error) {
	paths := make([]string, 0, len(files))
	cleanup := func() {
		for _, p := range paths {
			_ = os.Remove(p)
		}
	}
	for _, fh := range files {
		p := filepath.Join(os.TempDir(), fmt.Sprintf("dinewise-%s%s", uuid.New().String(), filepath.Ext(fh.Filename)))
		if err := c.SaveUploadedFile(fh, p); err != nil {
			cleanup()
			return nil, func() {}, utils.Internal("failed to store upload", err)
		}
		paths = append(paths, p)
	}
	return paths, cleanup, nil
}
