package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"diskpanel/internal/logging"
	"diskpanel/internal/models"
)

// ErrSnapshotNotFound is returned for unknown or expired snapshot IDs
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotStore keeps recent snapshots so interaction events arriving after
// a page render can find the data that page was built from.
type SnapshotStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewSnapshotStore creates a store whose entries expire after ttl
func NewSnapshotStore(ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{
		cache: cache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// Put stores a snapshot under its ID
func (s *SnapshotStore) Put(snap *models.VolumeSnapshot) {
	s.cache.SetDefault(snap.ID, snap)
}

// Get returns a stored snapshot
func (s *SnapshotStore) Get(id string) (*models.VolumeSnapshot, error) {
	item, found := s.cache.Get(id)
	if !found {
		return nil, ErrSnapshotNotFound
	}
	snap, ok := item.(*models.VolumeSnapshot)
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	return snap, nil
}

// Len returns the number of stored snapshots, including expired ones not yet evicted
func (s *SnapshotStore) Len() int {
	return s.cache.ItemCount()
}

// TTL returns how long snapshots are kept
func (s *SnapshotStore) TTL() time.Duration {
	return s.ttl
}

// Pipeline runs fetch → summarize and stores the resulting snapshot
type Pipeline struct {
	source *DataSource
	store  *SnapshotStore
	now    func() time.Time
}

func NewPipeline(source *DataSource, store *SnapshotStore) *Pipeline {
	return &Pipeline{
		source: source,
		store:  store,
		now:    time.Now,
	}
}

// Store exposes the snapshot store sessions read from
func (p *Pipeline) Store() *SnapshotStore {
	return p.store
}

// Refresh fetches volumes once and builds a new immutable snapshot. A
// *DataSourceError aborts the refresh and nothing is stored.
func (p *Pipeline) Refresh(ctx context.Context) (*models.VolumeSnapshot, error) {
	result, err := p.source.FetchVolumes(ctx)
	if err != nil {
		logging.With("pipeline").Error().Err(err).Msg("Volume refresh failed")
		return nil, err
	}

	snap := &models.VolumeSnapshot{
		ID:       uuid.NewString(),
		Records:  result.Records,
		Totals:   Summarize(result.Records),
		Source:   result.Source,
		Fallback: result.Fallback,
		TakenAt:  p.now(),
	}

	if p.store != nil {
		p.store.Put(snap)
	}

	return snap, nil
}
