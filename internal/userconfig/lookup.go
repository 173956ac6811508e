// Package userconfig reads per-user notification routing records from the
// configuration bucket. Every user of the promotion workflow is expected to
// be pre-registered there; a missing record is an explicit failure, never a
// silently degraded default.
package userconfig

import (
	"context"
	"errors"
	"fmt"

	"github.com/artifactops/promotion-service/internal/blobstore"
	"github.com/artifactops/promotion-service/internal/models"
)

// ErrConfigNotFound reports that no config record exists for the username.
var ErrConfigNotFound = errors.New("user config not found")

type Lookup struct {
	store  blobstore.Store
	bucket string
}

func NewLookup(store blobstore.Store, bucket string) *Lookup {
	return &Lookup{store: store, bucket: bucket}
}

// Get fetches {username}/config.json. It returns ErrConfigNotFound when the
// record is absent and a wrapped read error on any other backend failure.
func (l *Lookup) Get(ctx context.Context, username string) (models.UserConfig, error) {
	key := username + "/config.json"
	var cfg models.UserConfig
	err := l.store.GetJSON(ctx, l.bucket, key, &cfg)
	if errors.Is(err, blobstore.ErrNotFound) {
		return models.UserConfig{}, fmt.Errorf("%w: %s/%s", ErrConfigNotFound, l.bucket, key)
	}
	if err != nil {
		return models.UserConfig{}, fmt.Errorf("read user config %s/%s: %w", l.bucket, key, err)
	}
	return cfg, nil
}
