package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/straye-as/product-configurator/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotService_RecordAndLoad(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	dto := persistedConfiguratorDTO()
	snapshot, err := s.snapshots.Record(ctx, dto)
	require.NoError(t, err)

	assert.Equal(t, int64(7), snapshot.ConfiguratorID)
	assert.Regexp(t, `^configurators/7/[0-9a-f-]{36}\.json$`, snapshot.StorageKey)
	assert.Len(t, snapshot.Checksum, 64)
	assert.Positive(t, snapshot.Size)

	info, err := os.Stat(filepath.Join(s.storageDir, filepath.FromSlash(snapshot.StorageKey)))
	require.NoError(t, err)
	assert.Equal(t, snapshot.Size, info.Size())

	loaded, err := s.snapshots.Load(ctx, 7, snapshot.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.Name, loaded.Name)
	assert.Equal(t, dto.Steps[0].ID, loaded.Steps[0].ID)
	assert.Equal(t, dto.Steps[1].ProductChoices[0].QuantityRule, loaded.Steps[1].ProductChoices[0].QuantityRule)
}

func TestSnapshotService_RecordRequiresID(t *testing.T) {
	s := setupServices(t)

	_, err := s.snapshots.Record(context.Background(), newConfiguratorDTO())
	assert.Error(t, err)
}

func TestSnapshotService_List(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	dto := persistedConfiguratorDTO()
	first, err := s.snapshots.Record(ctx, dto)
	require.NoError(t, err)
	second, err := s.snapshots.Record(ctx, dto)
	require.NoError(t, err)

	other := persistedConfiguratorDTO()
	other.ID = int64Ptr(8)
	_, err = s.snapshots.Record(ctx, other)
	require.NoError(t, err)

	list, err := s.snapshots.List(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Equal(t, first.ID, list[1].ID)

	empty, err := s.snapshots.List(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSnapshotService_LoadUnknown(t *testing.T) {
	s := setupServices(t)

	_, err := s.snapshots.Load(context.Background(), 7, 1)
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}
