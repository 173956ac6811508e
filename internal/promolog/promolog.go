// Package promolog models the append-only promotion audit trail. Each
// (environment, model, version) triple owns one log object holding the JSON
// array of transition records for that artifact at that stage.
package promolog

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/artifactops/promotion-service/internal/blobstore"
	"github.com/artifactops/promotion-service/internal/models"
)

// Store reads and appends per-environment promotion logs. Environments map
// to buckets; the mapping is fixed at construction.
type Store struct {
	blobs   blobstore.Store
	buckets map[models.Environment]string
}

func NewStore(blobs blobstore.Store, buckets map[models.Environment]string) *Store {
	return &Store{blobs: blobs, buckets: buckets}
}

// Key returns the log object key for an artifact version.
func Key(model, version string) string {
	return model + "/" + version + "/logs.json"
}

// ArtifactPrefix returns the key prefix under which the artifact payload and
// its log live.
func ArtifactPrefix(model, version string) string {
	return model + "/" + version + "/"
}

// Bucket resolves the storage bucket for env.
func (s *Store) Bucket(env models.Environment) (string, error) {
	bucket, ok := s.buckets[env]
	if !ok {
		return "", fmt.Errorf("no bucket configured for environment %q", env)
	}
	return bucket, nil
}

// Read returns the log for (env, model, version). A log that has never been
// written reads as an empty slice, not an error.
func (s *Store) Read(ctx context.Context, env models.Environment, model, version string) ([]models.TransitionRecord, error) {
	bucket, err := s.Bucket(env)
	if err != nil {
		return nil, err
	}
	var recs []models.TransitionRecord
	err = s.blobs.GetJSON(ctx, bucket, Key(model, version), &recs)
	if errors.Is(err, blobstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s log for %s/%s: %w", env, model, version, err)
	}
	return recs, nil
}

// Append reads the current log, appends recs in order, and writes the whole
// array back. The read-modify-write is not protected against concurrent
// writers of the same key; simultaneous appends race and the last writer
// wins. Accepted for this low-concurrency workflow.
func (s *Store) Append(ctx context.Context, env models.Environment, model, version string, recs ...models.TransitionRecord) error {
	current, err := s.Read(ctx, env, model, version)
	if err != nil {
		return err
	}
	return s.Replace(ctx, env, model, version, append(current, recs...))
}

// Replace overwrites the log for (env, model, version) with recs.
func (s *Store) Replace(ctx context.Context, env models.Environment, model, version string, recs []models.TransitionRecord) error {
	bucket, err := s.Bucket(env)
	if err != nil {
		return err
	}
	if recs == nil {
		recs = []models.TransitionRecord{}
	}
	if err := s.blobs.PutJSON(ctx, bucket, Key(model, version), recs); err != nil {
		return fmt.Errorf("write %s log for %s/%s: %w", env, model, version, err)
	}
	return nil
}

// ReadAll unions the logs of every environment for (model, version) and
// returns them sorted by timestamp ascending. Timestamps are RFC 3339 UTC
// strings, so lexicographic comparison orders them correctly; a record
// without a timestamp sorts before all timestamped records. The sort is
// stable over a fixed concatenation order (develop, qa, prod), so repeated
// calls without intervening writes return identical output.
func (s *Store) ReadAll(ctx context.Context, model, version string) ([]models.TransitionRecord, error) {
	all := []models.TransitionRecord{}
	for _, env := range models.AllEnvironments {
		recs, err := s.Read(ctx, env, model, version)
		if err != nil {
			return nil, err
		}
		all = append(all, recs...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp < all[j].Timestamp
	})
	return all, nil
}
