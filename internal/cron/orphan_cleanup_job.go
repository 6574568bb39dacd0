package cron

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/grupomotriz/catalogo-backend/pkg/db/models"
	"github.com/grupomotriz/catalogo-backend/pkg/logger"
	"github.com/grupomotriz/catalogo-backend/pkg/storage/gcs"
)

const (
	defaultOrphanMaxAttempts = 10
	orphanBatchSize          = 100
)

type OrphanCleanupJobParams struct {
	Logger      *logger.Logger
	Repo        orphanLedgerRepo
	ObjectStore objectDeleter
	MaxAttempts int
}

type orphanLedgerRepo interface {
	ListOrphans(ctx context.Context, maxAttempts, limit int) ([]models.OrphanObject, error)
	DeleteOrphanByKey(ctx context.Context, gcsKey string) error
	MarkOrphanAttempt(ctx context.Context, id uuid.UUID, cause string) error
}

type objectDeleter interface {
	Delete(ctx context.Context, key string) error
}

// NewOrphanCleanupJob builds the job that retries bucket deletes recorded in
// the orphan ledger. Entries past the attempt cap are left for manual review.
func NewOrphanCleanupJob(params OrphanCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("orphan repository required")
	}
	if params.ObjectStore == nil {
		return nil, fmt.Errorf("object store required")
	}
	maxAttempts := params.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultOrphanMaxAttempts
	}
	return &orphanCleanupJob{
		logg:        params.Logger,
		repo:        params.Repo,
		store:       params.ObjectStore,
		maxAttempts: maxAttempts,
	}, nil
}

type orphanCleanupJob struct {
	logg        *logger.Logger
	repo        orphanLedgerRepo
	store       objectDeleter
	maxAttempts int
}

func (j *orphanCleanupJob) Name() string { return "orphan-object-cleanup" }

func (j *orphanCleanupJob) Run(ctx context.Context) error {
	orphans, err := j.repo.ListOrphans(ctx, j.maxAttempts, orphanBatchSize)
	if err != nil {
		return fmt.Errorf("list orphans: %w", err)
	}

	var cleaned, failed int
	for _, orphan := range orphans {
		if err := j.store.Delete(ctx, orphan.GCSKey); err != nil && !errors.Is(err, gcs.ErrObjectNotFound) {
			failed++
			if markErr := j.repo.MarkOrphanAttempt(ctx, orphan.ID, err.Error()); markErr != nil {
				j.logg.Error(ctx, "failed to record orphan attempt", markErr)
			}
			continue
		}
		// Deleted, or already gone. Either way the ledger entry is settled.
		if err := j.repo.DeleteOrphanByKey(ctx, orphan.GCSKey); err != nil {
			return fmt.Errorf("clear orphan ledger entry: %w", err)
		}
		cleaned++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"candidates": len(orphans),
		"cleaned":    cleaned,
		"failed":     failed,
	})
	j.logg.Info(logCtx, "orphan object cleanup complete")
	return nil
}
