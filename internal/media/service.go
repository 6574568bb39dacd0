package media

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grupomotriz/catalogo-backend/internal/catalog"
	"github.com/grupomotriz/catalogo-backend/pkg/db/models"
	"github.com/grupomotriz/catalogo-backend/pkg/enums"
	pkgerrors "github.com/grupomotriz/catalogo-backend/pkg/errors"
	"github.com/grupomotriz/catalogo-backend/pkg/logger"
	"github.com/grupomotriz/catalogo-backend/pkg/metrics"
	"github.com/grupomotriz/catalogo-backend/pkg/storage/gcs"
)

// Service owns the media lifecycle. Uploads store the remote object before
// the local row exists; deletes confirm the remote object is gone before the
// local row is removed. A row therefore never points at a missing object.
type Service interface {
	UploadImage(ctx context.Context, vehicleID uuid.UUID, input UploadImageInput) (*ImageDTO, error)
	UploadVideo(ctx context.Context, vehicleID uuid.UUID, input UploadVideoInput) (*VideoDTO, error)
	DeleteImage(ctx context.Context, imageID uuid.UUID) error
	DeleteVideo(ctx context.Context, videoID uuid.UUID) error
	ListImages(ctx context.Context, vehicleID uuid.UUID, colorLinkID *uuid.UUID) ([]ImageDTO, error)
	ListVideos(ctx context.Context, vehicleID uuid.UUID) ([]VideoDTO, error)
	HandleRemoteDeletion(ctx context.Context, gcsKey string) error
}

// UploadImageInput is the validated payload for an image upload.
type UploadImageInput struct {
	ColorLinkID *uuid.UUID
	FileName    string
	MimeType    string
	Data        []byte
	SetPrimary  bool
}

// UploadVideoInput is the validated payload for a video upload.
type UploadVideoInput struct {
	FileName   string
	MimeType   string
	Data       []byte
	SetPrimary bool
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type detailInvalidator interface {
	Invalidate(ctx context.Context, vehicleIDs ...uuid.UUID)
}

type service struct {
	repo           *Repository
	dbClient       txRunner
	store          gcs.ObjectStore
	maxUploadBytes int64
	metrics        *metrics.CatalogMetrics
	cache          detailInvalidator
	logg           *logger.Logger
}

// NewService constructs the media lifecycle service. cache may be nil.
func NewService(repo *Repository, dbClient txRunner, store gcs.ObjectStore, maxUploadBytes int64, catalogMetrics *metrics.CatalogMetrics, cache detailInvalidator, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("media repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if maxUploadBytes <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:           repo,
		dbClient:       dbClient,
		store:          store,
		maxUploadBytes: maxUploadBytes,
		metrics:        catalogMetrics,
		cache:          cache,
		logg:           logg,
	}, nil
}

func (s *service) UploadImage(ctx context.Context, vehicleID uuid.UUID, input UploadImageInput) (*ImageDTO, error) {
	ctx = s.logg.WithVehicleID(ctx, vehicleID.String())

	mimeType, err := s.validateUpload(enums.MediaKindImage, input.FileName, input.MimeType, input.Data)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindVehicle(ctx, vehicleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	if input.ColorLinkID != nil {
		link, err := s.repo.FindColorLink(ctx, *input.ColorLinkID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeInvalidReference, "color link not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load color link")
		}
		if link.VehicleID != vehicleID {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidReference, "color link belongs to another vehicle")
		}
	}

	imageID := uuid.New()
	key := buildObjectKey(enums.MediaKindImage, imageID, input.FileName)

	// Remote first: the row is only written once the object provably exists.
	url, err := s.store.Upload(ctx, key, mimeType, input.Data)
	if err != nil {
		s.metrics.IncRemoteFailure()
		return nil, pkgerrors.Wrap(pkgerrors.CodeRemoteStorage, err, "upload object")
	}

	image := &models.VehicleImage{
		ID:          imageID,
		VehicleID:   vehicleID,
		ColorLinkID: input.ColorLinkID,
		URL:         url,
		GCSKey:      key,
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.LockVehicle(ctx, vehicleID); err != nil {
			return err
		}
		existing, err := txRepo.ListImagesInScope(ctx, vehicleID, input.ColorLinkID)
		if err != nil {
			return err
		}
		image.Order = catalog.NextOrder(imageItems(existing))
		image.IsPrimary = input.SetPrimary || len(existing) == 0
		if image.IsPrimary {
			// Demote before promote keeps at most one primary per scope.
			if err := txRepo.DemotePrimaryImages(ctx, vehicleID, input.ColorLinkID); err != nil {
				return err
			}
		}
		return txRepo.CreateImage(ctx, image)
	})
	if err != nil {
		s.compensateUpload(ctx, key, err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist image row")
	}

	s.invalidateDetail(ctx, vehicleID)
	s.logg.Info(s.logg.WithMediaID(ctx, imageID.String()), "image uploaded")
	dto := NewImageDTO(*image)
	return &dto, nil
}

func (s *service) UploadVideo(ctx context.Context, vehicleID uuid.UUID, input UploadVideoInput) (*VideoDTO, error) {
	ctx = s.logg.WithVehicleID(ctx, vehicleID.String())

	mimeType, err := s.validateUpload(enums.MediaKindVideo, input.FileName, input.MimeType, input.Data)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindVehicle(ctx, vehicleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}

	videoID := uuid.New()
	key := buildObjectKey(enums.MediaKindVideo, videoID, input.FileName)

	url, err := s.store.Upload(ctx, key, mimeType, input.Data)
	if err != nil {
		s.metrics.IncRemoteFailure()
		return nil, pkgerrors.Wrap(pkgerrors.CodeRemoteStorage, err, "upload object")
	}

	video := &models.VehicleVideo{
		ID:        videoID,
		VehicleID: vehicleID,
		URL:       url,
		GCSKey:    key,
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.LockVehicle(ctx, vehicleID); err != nil {
			return err
		}
		existing, err := txRepo.ListVideos(ctx, vehicleID)
		if err != nil {
			return err
		}
		video.Order = catalog.NextOrder(videoItems(existing))
		video.IsPrimary = input.SetPrimary || len(existing) == 0
		if video.IsPrimary {
			if err := txRepo.DemotePrimaryVideos(ctx, vehicleID); err != nil {
				return err
			}
		}
		return txRepo.CreateVideo(ctx, video)
	})
	if err != nil {
		s.compensateUpload(ctx, key, err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist video row")
	}

	s.invalidateDetail(ctx, vehicleID)
	s.logg.Info(s.logg.WithMediaID(ctx, videoID.String()), "video uploaded")
	dto := NewVideoDTO(*video)
	return &dto, nil
}

func (s *service) DeleteImage(ctx context.Context, imageID uuid.UUID) error {
	ctx = s.logg.WithMediaID(ctx, imageID.String())

	image, err := s.repo.FindImage(ctx, imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load image")
	}

	// Remote delete must be confirmed before the row goes. A missing object
	// counts as confirmed: the goal state is already reached.
	if err := s.store.Delete(ctx, image.GCSKey); err != nil && !errors.Is(err, gcs.ErrObjectNotFound) {
		s.metrics.IncRemoteFailure()
		return pkgerrors.Wrap(pkgerrors.CodeRemoteStorage, err, "delete object").
			WithDetails(map[string]any{"media_id": imageID.String()})
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.LockVehicle(ctx, image.VehicleID); err != nil {
			return err
		}
		// The primary flag may have moved since the pre-lock read; promotion
		// is decided from the row as it stands under the lock.
		current, err := txRepo.FindImage(ctx, imageID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := txRepo.DeleteImage(ctx, imageID); err != nil {
			return err
		}
		if !current.IsPrimary {
			return nil
		}
		remaining, err := txRepo.ListImagesInScope(ctx, current.VehicleID, current.ColorLinkID)
		if err != nil {
			return err
		}
		if candidate, ok := catalog.PromotionCandidate(imageItems(remaining)); ok {
			return txRepo.PromoteImage(ctx, candidate)
		}
		return nil
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete image row")
	}

	s.invalidateDetail(ctx, image.VehicleID)
	s.logg.Info(ctx, "image deleted")
	return nil
}

func (s *service) DeleteVideo(ctx context.Context, videoID uuid.UUID) error {
	ctx = s.logg.WithMediaID(ctx, videoID.String())

	video, err := s.repo.FindVideo(ctx, videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "video not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load video")
	}

	if err := s.store.Delete(ctx, video.GCSKey); err != nil && !errors.Is(err, gcs.ErrObjectNotFound) {
		s.metrics.IncRemoteFailure()
		return pkgerrors.Wrap(pkgerrors.CodeRemoteStorage, err, "delete object").
			WithDetails(map[string]any{"media_id": videoID.String()})
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.LockVehicle(ctx, video.VehicleID); err != nil {
			return err
		}
		current, err := txRepo.FindVideo(ctx, videoID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := txRepo.DeleteVideo(ctx, videoID); err != nil {
			return err
		}
		if !current.IsPrimary {
			return nil
		}
		remaining, err := txRepo.ListVideos(ctx, video.VehicleID)
		if err != nil {
			return err
		}
		if candidate, ok := catalog.PromotionCandidate(videoItems(remaining)); ok {
			return txRepo.PromoteVideo(ctx, candidate)
		}
		return nil
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete video row")
	}

	s.invalidateDetail(ctx, video.VehicleID)
	s.logg.Info(ctx, "video deleted")
	return nil
}

func (s *service) ListImages(ctx context.Context, vehicleID uuid.UUID, colorLinkID *uuid.UUID) ([]ImageDTO, error) {
	images, err := s.repo.ListImagesInScope(ctx, vehicleID, colorLinkID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list images")
	}
	dtos := make([]ImageDTO, len(images))
	for i, image := range images {
		dtos[i] = NewImageDTO(image)
	}
	return dtos, nil
}

func (s *service) ListVideos(ctx context.Context, vehicleID uuid.UUID) ([]VideoDTO, error) {
	videos, err := s.repo.ListVideos(ctx, vehicleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list videos")
	}
	dtos := make([]VideoDTO, len(videos))
	for i, video := range videos {
		dtos[i] = NewVideoDTO(video)
	}
	return dtos, nil
}

// HandleRemoteDeletion reconciles a bucket-side deletion: the object is gone,
// so the matching local row must go too, with primary promotion as usual. The
// orphan ledger entry for the key, if any, is cleared.
func (s *service) HandleRemoteDeletion(ctx context.Context, gcsKey string) error {
	if err := s.repo.DeleteOrphanByKey(ctx, gcsKey); err != nil {
		return err
	}

	image, err := s.repo.FindImageByGCSKey(ctx, gcsKey)
	if err == nil {
		if err := s.removeImageRow(ctx, image); err != nil {
			return err
		}
		s.invalidateDetail(ctx, image.VehicleID)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	video, err := s.repo.FindVideoByGCSKey(ctx, gcsKey)
	if err == nil {
		if err := s.removeVideoRow(ctx, video); err != nil {
			return err
		}
		s.invalidateDetail(ctx, video.VehicleID)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func (s *service) invalidateDetail(ctx context.Context, vehicleID uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, vehicleID)
	}
}

func (s *service) removeImageRow(ctx context.Context, image *models.VehicleImage) error {
	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.LockVehicle(ctx, image.VehicleID); err != nil {
			return err
		}
		current, err := txRepo.FindImage(ctx, image.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := txRepo.DeleteImage(ctx, current.ID); err != nil {
			return err
		}
		if !current.IsPrimary {
			return nil
		}
		remaining, err := txRepo.ListImagesInScope(ctx, current.VehicleID, current.ColorLinkID)
		if err != nil {
			return err
		}
		if candidate, ok := catalog.PromotionCandidate(imageItems(remaining)); ok {
			return txRepo.PromoteImage(ctx, candidate)
		}
		return nil
	})
}

func (s *service) removeVideoRow(ctx context.Context, video *models.VehicleVideo) error {
	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.LockVehicle(ctx, video.VehicleID); err != nil {
			return err
		}
		current, err := txRepo.FindVideo(ctx, video.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := txRepo.DeleteVideo(ctx, current.ID); err != nil {
			return err
		}
		if !current.IsPrimary {
			return nil
		}
		remaining, err := txRepo.ListVideos(ctx, current.VehicleID)
		if err != nil {
			return err
		}
		if candidate, ok := catalog.PromotionCandidate(videoItems(remaining)); ok {
			return txRepo.PromoteVideo(ctx, candidate)
		}
		return nil
	})
}

// compensateUpload removes the already-stored object after a local write
// failed. If the compensating delete also fails, the key goes into the orphan
// ledger so the cron worker retries it.
func (s *service) compensateUpload(ctx context.Context, key string, cause error) {
	if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, gcs.ErrObjectNotFound) {
		s.metrics.IncRemoteFailure()
		s.logg.Error(ctx, "compensating object delete failed, recording orphan", err)
		if recErr := s.repo.RecordOrphan(ctx, key, cause.Error()); recErr != nil {
			s.logg.Error(ctx, "orphan ledger write failed", recErr)
		}
	}
}

func (s *service) validateUpload(kind enums.MediaKind, fileName, mimeType string, data []byte) (string, error) {
	if strings.TrimSpace(fileName) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "file_name is required")
	}
	if len(data) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "file content is empty")
	}
	if int64(len(data)) > s.maxUploadBytes {
		return "", pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("file exceeds the %d byte limit", s.maxUploadBytes))
	}
	clean, err := sniffMimeType(mimeType)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid mime type")
	}
	if !isAllowedMime(kind, clean) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "mime type not allowed for this media kind")
	}
	return clean, nil
}

func buildObjectKey(kind enums.MediaKind, id uuid.UUID, fileName string) string {
	cleanName := sanitizeFileName(fileName)
	if cleanName == "" {
		cleanName = id.String()
	}
	return fmt.Sprintf("media/%s/%s/%s", kind, id.String(), cleanName)
}

func sanitizeFileName(name string) string {
	clean := path.Base(strings.TrimSpace(name))
	if clean == "" || clean == "." || clean == "/" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case r == '/' || r == '\\' || unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_.")
}

func imageItems(images []models.VehicleImage) []catalog.OrderedItem {
	items := make([]catalog.OrderedItem, len(images))
	for i, image := range images {
		items[i] = catalog.OrderedItem{ID: image.ID, Order: image.Order, IsPrimary: image.IsPrimary}
	}
	return items
}

func videoItems(videos []models.VehicleVideo) []catalog.OrderedItem {
	items := make([]catalog.OrderedItem, len(videos))
	for i, video := range videos {
		items[i] = catalog.OrderedItem{ID: video.ID, Order: video.Order, IsPrimary: video.IsPrimary}
	}
	return items
}
