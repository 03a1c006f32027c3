package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diskpanel/internal/models"
)

func TestSnapshotStorePutGet(t *testing.T) {
	store := NewSnapshotStore(time.Minute)
	snap := &models.VolumeSnapshot{ID: uuid.NewString(), Records: FallbackVolumes()}

	store.Put(snap)

	got, err := store.Get(snap.ID)
	require.NoError(t, err)
	assert.Same(t, snap, got)
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, time.Minute, store.TTL())
}

func TestSnapshotStoreMissing(t *testing.T) {
	store := NewSnapshotStore(time.Minute)

	_, err := store.Get(uuid.NewString())
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestSnapshotStoreExpiry(t *testing.T) {
	store := NewSnapshotStore(20 * time.Millisecond)
	snap := &models.VolumeSnapshot{ID: uuid.NewString()}
	store.Put(snap)

	assert.Eventually(t, func() bool {
		_, err := store.Get(snap.ID)
		return errors.Is(err, ErrSnapshotNotFound)
	}, time.Second, 10*time.Millisecond)
}

func TestPipelineRefresh(t *testing.T) {
	store := NewSnapshotStore(time.Minute)
	pipeline := NewPipeline(NewDataSource(nil, time.Second, nil), store)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	pipeline.now = func() time.Time { return fixed }

	snap, err := pipeline.Refresh(context.Background())
	require.NoError(t, err)

	_, err = uuid.Parse(snap.ID)
	assert.NoError(t, err)
	assert.True(t, snap.Fallback)
	assert.Equal(t, SourceSample, snap.Source)
	assert.Equal(t, fixed, snap.TakenAt)
	assert.Equal(t, Summarize(snap.Records), snap.Totals)

	stored, err := pipeline.Store().Get(snap.ID)
	require.NoError(t, err)
	assert.Same(t, snap, stored)
}

func TestPipelineRefreshNewSnapshotEachRun(t *testing.T) {
	pipeline := NewPipeline(NewDataSource(nil, time.Second, nil), NewSnapshotStore(time.Minute))

	first, err := pipeline.Refresh(context.Background())
	require.NoError(t, err)
	second, err := pipeline.Refresh(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, pipeline.Store().Len())
}

func TestPipelineRefreshFailureStoresNothing(t *testing.T) {
	store := NewSnapshotStore(time.Minute)
	capability := &fakeCapability{name: "wmic", available: true, err: errors.New("rpc unavailable")}
	pipeline := NewPipeline(NewDataSource(capability, time.Second, nil), store)

	snap, err := pipeline.Refresh(context.Background())
	assert.Nil(t, snap)

	var dsErr *DataSourceError
	assert.ErrorAs(t, err, &dsErr)
	assert.Zero(t, store.Len())
}

func TestPipelineWithoutStore(t *testing.T) {
	snap, err := NewPipeline(NewDataSource(nil, 0, nil), nil).Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Records, 3)
}
