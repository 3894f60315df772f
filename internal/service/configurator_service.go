package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/straye-as/product-configurator/internal/domain"
	"github.com/straye-as/product-configurator/internal/mapper"
	"github.com/straye-as/product-configurator/internal/repository"
	"go.uber.org/zap"
)

// ConfiguratorService handles administration of configurator graphs
type ConfiguratorService struct {
	store     *repository.Store
	validator *ConfiguratorValidatorService
	factory   *ConfiguratorFactory
	snapshots *SnapshotService
	logger    *zap.Logger
}

// NewConfiguratorService creates a new ConfiguratorService instance
func NewConfiguratorService(
	store *repository.Store,
	validator *ConfiguratorValidatorService,
	factory *ConfiguratorFactory,
	snapshots *SnapshotService,
	logger *zap.Logger,
) *ConfiguratorService {
	return &ConfiguratorService{
		store:     store,
		validator: validator,
		factory:   factory,
		snapshots: snapshots,
		logger:    logger,
	}
}

// List returns a page of configurator summaries
func (s *ConfiguratorService) List(ctx context.Context, page, pageSize int, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	page, pageSize = repository.NormalizePage(page, pageSize)

	cfgs, total, err := s.store.Configurators.List(ctx, page, pageSize, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list configurators: %w", err)
	}

	dtos := make([]domain.ConfiguratorSummaryDTO, len(cfgs))
	for i := range cfgs {
		dtos[i] = mapper.ToConfiguratorSummaryDTO(&cfgs[i])
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// GetByID returns the full graph of a configurator
func (s *ConfiguratorService) GetByID(ctx context.Context, id int64) (*domain.ConfiguratorDTO, error) {
	cfg, err := s.store.Configurators.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToConfiguratorDTO(cfg)
	return &dto, nil
}

// Export returns the graph of a configurator in the shape accepted by Import
func (s *ConfiguratorService) Export(ctx context.Context, id int64) (*domain.ConfiguratorDTO, error) {
	return s.GetByID(ctx, id)
}

// Validate checks dto without writing anything
func (s *ConfiguratorService) Validate(dto *domain.ConfiguratorDTO) *domain.ValidationReport {
	err := s.validator.Validate(dto)
	if err == nil {
		return &domain.ValidationReport{Valid: true, Violations: []domain.Violation{}}
	}

	var ce *domain.ConstraintError
	if errors.As(err, &ce) {
		return &domain.ValidationReport{
			Code:       ce.Kind.Code(),
			Violations: []domain.Violation{ce.Violation()},
		}
	}
	return &domain.ValidationReport{
		Violations: []domain.Violation{{Path: []string{}, Message: err.Error()}},
	}
}

// Create stores a new configurator. Steps and choices must carry virtual or null ids.
func (s *ConfiguratorService) Create(ctx context.Context, dto *domain.ConfiguratorDTO) (*domain.ConfiguratorSaveResult, error) {
	return s.save(ctx, nil, dto, false)
}

// Update replaces the graph of a configurator. Steps and choices are matched by id; the ones
// missing from dto are removed.
func (s *ConfiguratorService) Update(ctx context.Context, id int64, dto *domain.ConfiguratorDTO) (*domain.ConfiguratorSaveResult, error) {
	return s.save(ctx, &id, dto, false)
}

// Import creates a new configurator from an exported graph
func (s *ConfiguratorService) Import(ctx context.Context, dto *domain.ConfiguratorDTO) (*domain.ConfiguratorSaveResult, error) {
	return s.save(ctx, nil, dto, true)
}

// Restore replaces the graph of a configurator with one of its snapshots
func (s *ConfiguratorService) Restore(ctx context.Context, id, snapshotID int64) (*domain.ConfiguratorSaveResult, error) {
	dto, err := s.snapshots.Load(ctx, id, snapshotID)
	if err != nil {
		return nil, err
	}
	result, err := s.save(ctx, &id, dto, true)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Configurator restored from snapshot",
		zap.Int64("configurator_id", id),
		zap.Int64("snapshot_id", snapshotID),
	)
	return result, nil
}

// Delete removes a configurator with its steps and choices
func (s *ConfiguratorService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Configurators.Delete(ctx, id); err != nil {
		if isClientError(err) {
			return err
		}
		return fmt.Errorf("failed to delete configurator: %w", err)
	}

	s.logger.Info("Configurator deleted", zap.Int64("configurator_id", id))
	return nil
}

// save validates dto, writes the graph in one transaction and snapshots the result.
// rebase stores every step and choice as a new record (import and restore).
func (s *ConfiguratorService) save(ctx context.Context, id *int64, dto *domain.ConfiguratorDTO, rebase bool) (*domain.ConfiguratorSaveResult, error) {
	if err := s.validator.Validate(dto); err != nil {
		return nil, err
	}

	var rec *Reconciliation
	err := s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		var existing *domain.Configurator
		if id != nil {
			cfg, err := tx.Configurators.GetByID(ctx, *id)
			if err != nil {
				return err
			}
			existing = cfg
		}

		var err error
		if rebase {
			rec, err = s.factory.Rebase(existing, dto)
		} else {
			rec, err = s.factory.Reconcile(existing, dto)
		}
		if err != nil {
			return err
		}

		if err := tx.Configurators.SaveGraph(ctx, rec.Configurator, rec.RemovedStepIDs, rec.RemovedChoiceIDs); err != nil {
			return err
		}
		if !rec.Rebased() {
			return nil
		}
		if err := rec.RewriteReferences(); err != nil {
			return err
		}
		return tx.Configurators.UpdateChoiceReferences(ctx, rec.Configurator)
	})
	if err != nil {
		if isClientError(err) {
			return nil, err
		}
		s.logger.Error("Failed to save configurator", zap.Error(err))
		return nil, fmt.Errorf("failed to save configurator: %w", err)
	}

	saved, err := s.store.Configurators.GetByID(ctx, rec.Configurator.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload configurator: %w", err)
	}
	out := mapper.ToConfiguratorDTO(saved)

	if _, err := s.snapshots.Record(ctx, &out); err != nil {
		s.logger.Warn("Failed to snapshot configurator",
			zap.Int64("configurator_id", saved.ID),
			zap.Error(err),
		)
	}

	s.logger.Info("Configurator saved",
		zap.Int64("configurator_id", saved.ID),
		zap.Int("steps", len(saved.Steps)),
		zap.Int("removed_steps", len(rec.RemovedStepIDs)),
		zap.Int("removed_choices", len(rec.RemovedChoiceIDs)),
	)

	return &domain.ConfiguratorSaveResult{
		Configurator: out,
		IDMap:        rec.IDMap(),
	}, nil
}

// isClientError reports errors that describe the request rather than a failure
func isClientError(err error) bool {
	var ce *domain.ConstraintError
	var nf *domain.NotFoundError
	return errors.As(err, &ce) || errors.As(err, &nf)
}
