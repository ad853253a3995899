package banner

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"
	"github.com/wichananm65/storefront-backend/internal/apperr"
	"github.com/wichananm65/storefront-backend/internal/imagestore"
)

// Service provides business logic for banners.
type Service struct {
	repo   Repository
	images imagestore.Store
	log    zerolog.Logger
}

func NewService(r Repository, images imagestore.Store, log zerolog.Logger) *Service {
	return &Service{repo: r, images: images, log: log}
}

func parseSlot(raw string) (Slot, error) {
	slot := Slot(strings.ToLower(strings.TrimSpace(raw)))
	if !slot.Valid() {
		return "", apperr.Validation("unknown banner slot %q", raw)
	}
	return slot, nil
}

func (s *Service) List(ctx context.Context, slot string) ([]Banner, error) {
	sl, err := parseSlot(slot)
	if err != nil {
		return nil, err
	}
	return s.repo.ListBySlot(ctx, sl)
}

func (s *Service) Get(ctx context.Context, id int) (Banner, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, slot string, in Input, files []*multipart.FileHeader) (Banner, error) {
	sl, err := parseSlot(slot)
	if err != nil {
		return Banner{}, err
	}
	if len(files) == 0 {
		return Banner{}, apperr.Validation("at least one photo is required")
	}
	if limit := sl.maxPhotos(); limit > 0 && len(files) > limit {
		return Banner{}, apperr.Validation("%s banners take at most %d photo", sl, limit)
	}
	photos, err := imagestore.UploadFiles(ctx, s.images, s.log, "banners", files)
	if err != nil {
		return Banner{}, err
	}
	b := Banner{Slot: sl, Photos: photos}
	apply(&b, in)
	created, err := s.repo.Create(ctx, b)
	if err != nil {
		imagestore.DeleteBestEffort(ctx, s.images, s.log, photos.PublicIDs()...)
		return Banner{}, err
	}
	return created, nil
}

// Update overwrites the non-empty text fields; new files replace the photos.
func (s *Service) Update(ctx context.Context, id int, in Input, files []*multipart.FileHeader) (Banner, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Banner{}, err
	}
	if limit := existing.Slot.maxPhotos(); limit > 0 && len(files) > limit {
		return Banner{}, apperr.Validation("%s banners take at most %d photo", existing.Slot, limit)
	}
	apply(&existing, in)
	old := existing.Photos
	if len(files) > 0 {
		photos, err := imagestore.UploadFiles(ctx, s.images, s.log, "banners", files)
		if err != nil {
			return Banner{}, err
		}
		existing.Photos = photos
	}
	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		if len(files) > 0 {
			imagestore.DeleteBestEffort(ctx, s.images, s.log, existing.Photos.PublicIDs()...)
		}
		return Banner{}, err
	}
	if len(files) > 0 {
		imagestore.DeleteBestEffort(ctx, s.images, s.log, old.PublicIDs()...)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	imagestore.DeleteBestEffort(ctx, s.images, s.log, existing.Photos.PublicIDs()...)
	return nil
}

func apply(b *Banner, in Input) {
	if v := strings.TrimSpace(in.Title); v != "" {
		b.Title = v
	}
	if v := strings.TrimSpace(in.Heading); v != "" {
		b.Heading = v
	}
	if v := strings.TrimSpace(in.Description); v != "" {
		b.Description = v
	}
	if v := strings.TrimSpace(in.Link); v != "" {
		b.Link = v
	}
}
