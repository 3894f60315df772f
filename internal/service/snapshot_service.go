package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/straye-as/product-configurator/internal/domain"
	"github.com/straye-as/product-configurator/internal/logger"
	"github.com/straye-as/product-configurator/internal/mapper"
	"github.com/straye-as/product-configurator/internal/repository"
	"github.com/straye-as/product-configurator/internal/storage"
	"go.uber.org/zap"
)

const snapshotContentType = "application/json"

// SnapshotService keeps a copy of every saved configurator in object storage
type SnapshotService struct {
	snapshotRepo *repository.SnapshotRepository
	storage      storage.Storage
	logger       *zap.Logger
}

// NewSnapshotService creates a new SnapshotService instance
func NewSnapshotService(snapshotRepo *repository.SnapshotRepository, store storage.Storage, logger *zap.Logger) *SnapshotService {
	return &SnapshotService{
		snapshotRepo: snapshotRepo,
		storage:      store,
		logger:       logger,
	}
}

// Record uploads dto and registers the snapshot
func (s *SnapshotService) Record(ctx context.Context, dto *domain.ConfiguratorDTO) (*domain.SnapshotDTO, error) {
	if dto.ID == nil {
		return nil, fmt.Errorf("cannot snapshot a configurator without id")
	}

	content, err := json.Marshal(dto)
	if err != nil {
		return nil, fmt.Errorf("failed to encode configurator: %w", err)
	}
	sum := sha256.Sum256(content)

	key := fmt.Sprintf("configurators/%d/%s.json", *dto.ID, uuid.New().String())
	size, err := s.storage.Put(ctx, key, snapshotContentType, bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to upload snapshot: %w", err)
	}

	snapshot := &domain.ConfiguratorSnapshot{
		ConfiguratorID: *dto.ID,
		StorageKey:     key,
		Checksum:       hex.EncodeToString(sum[:]),
		Size:           size,
	}
	if err := s.snapshotRepo.Create(ctx, snapshot); err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Warn("Failed to remove orphaned snapshot object", zap.String("key", key), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to record snapshot: %w", err)
	}

	logger.WithConfigurator(s.logger, *dto.ID).Info("Configurator snapshot stored",
		zap.Int64("snapshot_id", snapshot.ID),
		zap.Int64("size", size),
	)

	out := mapper.ToSnapshotDTO(snapshot)
	return &out, nil
}

// List returns the snapshots of a configurator, newest first
func (s *SnapshotService) List(ctx context.Context, configuratorID int64) ([]domain.SnapshotDTO, error) {
	snapshots, err := s.snapshotRepo.ListByConfigurator(ctx, configuratorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	dtos := make([]domain.SnapshotDTO, len(snapshots))
	for i := range snapshots {
		dtos[i] = mapper.ToSnapshotDTO(&snapshots[i])
	}
	return dtos, nil
}

// Load downloads a snapshot and checks it against its recorded checksum
func (s *SnapshotService) Load(ctx context.Context, configuratorID, snapshotID int64) (*domain.ConfiguratorDTO, error) {
	snapshot, err := s.snapshotRepo.GetByID(ctx, configuratorID, snapshotID)
	if err != nil {
		return nil, err
	}

	reader, err := s.storage.Get(ctx, snapshot.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotCorrupted, err)
		}
		return nil, fmt.Errorf("failed to download snapshot: %w", err)
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	sum := sha256.Sum256(content)
	if hex.EncodeToString(sum[:]) != snapshot.Checksum {
		logger.WithConfigurator(s.logger, configuratorID).Error("Snapshot checksum mismatch",
			zap.Int64("snapshot_id", snapshotID),
			zap.String("key", snapshot.StorageKey),
		)
		return nil, ErrSnapshotCorrupted
	}

	var dto domain.ConfiguratorDTO
	if err := json.Unmarshal(content, &dto); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotCorrupted, err)
	}
	return &dto, nil
}
