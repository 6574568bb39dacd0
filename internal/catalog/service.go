package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/grupomotriz/catalogo-backend/pkg/db/models"
	pkgerrors "github.com/grupomotriz/catalogo-backend/pkg/errors"
	"github.com/grupomotriz/catalogo-backend/pkg/logger"
	"github.com/grupomotriz/catalogo-backend/pkg/metrics"
	"github.com/grupomotriz/catalogo-backend/pkg/storage/gcs"
)

// Service is the façade the HTTP layer calls for the mutations with
// cross-system coupling: color reassignment and the vehicle cascade delete.
type Service interface {
	ReassignColors(ctx context.Context, vehicleID uuid.UUID, desiredColorIDs []uuid.UUID) (*ReassignResult, error)
	ListColors(ctx context.Context, vehicleID uuid.UUID) ([]ColorLinkDTO, error)
	DeleteVehicleCascade(ctx context.Context, vehicleID uuid.UUID) (*CascadeResult, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type detailInvalidator interface {
	Invalidate(ctx context.Context, vehicleIDs ...uuid.UUID)
}

type service struct {
	repo     *Repository
	dbClient txRunner
	store    gcs.ObjectStore
	metrics  *metrics.CatalogMetrics
	cache    detailInvalidator
	logg     *logger.Logger
}

// NewService constructs the catalog mutation service. cache may be nil.
func NewService(repo *Repository, dbClient txRunner, store gcs.ObjectStore, catalogMetrics *metrics.CatalogMetrics, cache detailInvalidator, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		dbClient: dbClient,
		store:    store,
		metrics:  catalogMetrics,
		cache:    cache,
		logg:     logg,
	}, nil
}

// ListColors returns the vehicle's color links in display order.
func (s *service) ListColors(ctx context.Context, vehicleID uuid.UUID) ([]ColorLinkDTO, error) {
	if _, err := s.repo.FindVehicle(ctx, vehicleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	links, err := s.repo.ListColorLinks(ctx, vehicleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list color links")
	}
	return linkDTOs(links), nil
}

// ReassignColors replaces the vehicle's color set with desiredColorIDs using
// a set diff: untouched colors keep their order and images. The whole request
// is atomic; any link still owning images vetoes it entirely.
func (s *service) ReassignColors(ctx context.Context, vehicleID uuid.UUID, desiredColorIDs []uuid.UUID) (*ReassignResult, error) {
	ctx = s.logg.WithVehicleID(ctx, vehicleID.String())

	if _, err := s.repo.FindVehicle(ctx, vehicleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}

	result := &ReassignResult{Created: []ColorLinkDTO{}, Removed: []uuid.UUID{}}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		// Row lock serializes concurrent reassignments for this vehicle so
		// interleaved diffs cannot corrupt order uniqueness.
		if err := txRepo.LockVehicle(ctx, vehicleID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock vehicle")
		}

		if err := s.ensureActiveColors(ctx, txRepo, desiredColorIDs); err != nil {
			return err
		}

		links, err := txRepo.ListColorLinks(ctx, vehicleID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list color links")
		}

		plan := Resolve(linkStates(links), desiredColorIDs)
		if plan.Empty() {
			result.Links = linkDTOs(links)
			return nil
		}

		// Guard runs against the transaction, not the plan-time snapshot:
		// a concurrent upload may have attached images since planning.
		guard, err := NewGuard(txRepo)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build guard")
		}
		blocked, err := s.collectBlocked(ctx, guard, links, plan.ToRemove)
		if err != nil {
			return err
		}
		if len(blocked) > 0 {
			return pkgerrors.New(pkgerrors.CodeDependencyConflict,
				"colors still own images and cannot be removed").
				WithDetails(blocked)
		}

		if err := txRepo.DeleteColorLinks(ctx, plan.ToRemove); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete color links")
		}

		kept := keepLinks(links, plan.ToRemove)
		next := NextOrder(linkItems(kept))
		created := make([]models.VehicleColor, 0, len(plan.ToCreate))
		for i, colorID := range plan.ToCreate {
			created = append(created, models.VehicleColor{
				ID:        uuid.New(),
				VehicleID: vehicleID,
				ColorID:   colorID,
				Order:     next + i,
			})
		}
		if err := txRepo.CreateColorLinks(ctx, created); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create color links")
		}

		final, err := txRepo.ListColorLinks(ctx, vehicleID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload color links")
		}
		if err := CheckScopeInvariants(linkItems(final)); err != nil {
			return err
		}

		result.Removed = plan.ToRemove
		result.Created = createdDTOs(final, created)
		result.Links = linkDTOs(final)
		return nil
	})
	if err != nil {
		s.metrics.IncReassignment(reassignOutcome(err))
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reassign colors")
	}

	s.metrics.IncReassignment("applied")
	s.invalidateDetail(ctx, vehicleID)
	s.logg.Info(ctx, "color reassignment committed")
	return result, nil
}

// DeleteVehicleCascade removes the vehicle with everything it owns. Remote
// objects are deleted first; if any remote delete fails the local rows are
// left fully intact and the failed keys are reported.
func (s *service) DeleteVehicleCascade(ctx context.Context, vehicleID uuid.UUID) (*CascadeResult, error) {
	ctx = s.logg.WithVehicleID(ctx, vehicleID.String())

	if _, err := s.repo.FindVehicle(ctx, vehicleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}

	images, err := s.repo.ListVehicleImages(ctx, vehicleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicle images")
	}
	videos, err := s.repo.ListVehicleVideos(ctx, vehicleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicle videos")
	}

	keys := make([]string, 0, len(images)+len(videos))
	for _, img := range images {
		keys = append(keys, img.GCSKey)
	}
	for _, vid := range videos {
		keys = append(keys, vid.GCSKey)
	}

	var remoteErr error
	failedKeys := make([]string, 0)
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, gcs.ErrObjectNotFound) {
			remoteErr = multierr.Append(remoteErr, fmt.Errorf("delete %s: %w", key, err))
			failedKeys = append(failedKeys, key)
		}
	}
	if remoteErr != nil {
		s.metrics.IncRemoteFailure()
		s.metrics.IncCascadeDelete("aborted")
		s.logg.Error(ctx, "vehicle cascade aborted on remote delete failure", remoteErr)
		return nil, pkgerrors.Wrap(pkgerrors.CodeRemoteStorage, remoteErr,
			"some objects could not be deleted; vehicle left intact").
			WithDetails(map[string]any{"undeleted_keys": failedKeys})
	}

	confirmed := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		confirmed[key] = struct{}{}
	}

	var lateKeys []string
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.LockVehicle(ctx, vehicleID); err != nil {
			return err
		}

		// Uploads may have committed between the membership snapshot and this
		// lock. Their objects never saw the remote pass, so ledger their keys
		// for the cron worker before the rows go.
		lateKeys = lateKeys[:0]
		currentImages, err := txRepo.ListVehicleImages(ctx, vehicleID)
		if err != nil {
			return err
		}
		for _, img := range currentImages {
			if _, ok := confirmed[img.GCSKey]; !ok {
				lateKeys = append(lateKeys, img.GCSKey)
			}
		}
		currentVideos, err := txRepo.ListVehicleVideos(ctx, vehicleID)
		if err != nil {
			return err
		}
		for _, vid := range currentVideos {
			if _, ok := confirmed[vid.GCSKey]; !ok {
				lateKeys = append(lateKeys, vid.GCSKey)
			}
		}
		if err := txRepo.RecordOrphans(ctx, lateKeys, "vehicle cascade: object missed the remote delete pass"); err != nil {
			return err
		}

		return txRepo.DeleteVehicleRows(ctx, vehicleID)
	})
	if err != nil {
		s.metrics.IncCascadeDelete("failed")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete vehicle rows")
	}
	if len(lateKeys) > 0 {
		s.logg.Warn(s.logg.WithField(ctx, "orphaned_keys", len(lateKeys)),
			"cascade found media committed after the remote pass; keys sent to the orphan ledger")
	}

	s.metrics.IncCascadeDelete("applied")
	s.invalidateDetail(ctx, vehicleID)
	s.logg.Info(ctx, "vehicle cascade delete committed")
	return &CascadeResult{DeletedMediaCount: len(keys)}, nil
}

func (s *service) invalidateDetail(ctx context.Context, vehicleID uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, vehicleID)
	}
}

func (s *service) ensureActiveColors(ctx context.Context, repo *Repository, desiredColorIDs []uuid.UUID) error {
	unique := make([]uuid.UUID, 0, len(desiredColorIDs))
	seen := make(map[uuid.UUID]struct{}, len(desiredColorIDs))
	for _, id := range desiredColorIDs {
		if id == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeInvalidReference, "color id must not be empty")
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	colors, err := repo.ListActiveColors(ctx, unique)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load colors")
	}
	found := make(map[uuid.UUID]struct{}, len(colors))
	for _, color := range colors {
		found[color.ID] = struct{}{}
	}
	missing := make([]string, 0)
	for _, id := range unique {
		if _, ok := found[id]; !ok {
			missing = append(missing, id.String())
		}
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeInvalidReference,
			"unknown or inactive colors requested").
			WithDetails(map[string]any{"color_ids": missing})
	}
	return nil
}

func (s *service) collectBlocked(ctx context.Context, guard *Guard, links []models.VehicleColor, toRemove []uuid.UUID) ([]BlockedColor, error) {
	byID := make(map[uuid.UUID]models.VehicleColor, len(links))
	for _, link := range links {
		byID[link.ID] = link
	}

	blocked := make([]BlockedColor, 0)
	for _, linkID := range toRemove {
		decision, err := guard.CanRemove(ctx, linkID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count link images")
		}
		if decision.Allowed {
			continue
		}
		entry := BlockedColor{ImageCount: decision.BlockingImages}
		if link, ok := byID[linkID]; ok {
			entry.ColorID = link.ColorID
			if link.Color != nil {
				entry.ColorName = link.Color.Name
			}
		}
		blocked = append(blocked, entry)
	}
	return blocked, nil
}

func reassignOutcome(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		switch typed.Code() {
		case pkgerrors.CodeDependencyConflict:
			return "blocked"
		case pkgerrors.CodeInvalidReference:
			return "rejected"
		}
	}
	return "failed"
}

func linkStates(links []models.VehicleColor) []LinkState {
	states := make([]LinkState, len(links))
	for i, link := range links {
		states[i] = LinkState{LinkID: link.ID, ColorID: link.ColorID, Order: link.Order}
	}
	return states
}

func linkItems(links []models.VehicleColor) []OrderedItem {
	items := make([]OrderedItem, len(links))
	for i, link := range links {
		items[i] = OrderedItem{ID: link.ID, Order: link.Order}
	}
	return items
}

func linkDTOs(links []models.VehicleColor) []ColorLinkDTO {
	dtos := make([]ColorLinkDTO, len(links))
	for i, link := range links {
		dtos[i] = NewColorLinkDTO(link)
	}
	return dtos
}

func keepLinks(links []models.VehicleColor, removed []uuid.UUID) []models.VehicleColor {
	drop := make(map[uuid.UUID]struct{}, len(removed))
	for _, id := range removed {
		drop[id] = struct{}{}
	}
	kept := make([]models.VehicleColor, 0, len(links))
	for _, link := range links {
		if _, gone := drop[link.ID]; !gone {
			kept = append(kept, link)
		}
	}
	return kept
}

func createdDTOs(final []models.VehicleColor, created []models.VehicleColor) []ColorLinkDTO {
	newColors := make(map[uuid.UUID]struct{}, len(created))
	for _, link := range created {
		newColors[link.ColorID] = struct{}{}
	}
	dtos := make([]ColorLinkDTO, 0, len(created))
	for _, link := range final {
		if _, ok := newColors[link.ColorID]; ok {
			dtos = append(dtos, NewColorLinkDTO(link))
		}
	}
	return dtos
}
