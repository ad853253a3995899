package category

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"
	"github.com/wichananm65/storefront-backend/internal/apperr"
	"github.com/wichananm65/storefront-backend/internal/imagestore"
)

// Service provides business logic for categories.
type Service struct {
	repo   Repository
	images imagestore.Store
	log    zerolog.Logger
}

func NewService(r Repository, images imagestore.Store, log zerolog.Logger) *Service {
	return &Service{repo: r, images: images, log: log}
}

func (s *Service) List(ctx context.Context) ([]Category, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int) (Category, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, name string, files []*multipart.FileHeader) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, apperr.Validation("name is required")
	}
	photos, err := imagestore.UploadFiles(ctx, s.images, s.log, "categories", files)
	if err != nil {
		return Category{}, err
	}
	created, err := s.repo.Create(ctx, Category{Name: name, Slug: Slugify(name), Photos: photos})
	if err != nil {
		imagestore.DeleteBestEffort(ctx, s.images, s.log, photos.PublicIDs()...)
		return Category{}, err
	}
	return created, nil
}

// Update renames the category; new files replace the existing photos.
func (s *Service) Update(ctx context.Context, id int, name string, files []*multipart.FileHeader) (Category, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Category{}, err
	}
	if name = strings.TrimSpace(name); name != "" {
		existing.Name = name
		existing.Slug = Slugify(name)
	}
	old := existing.Photos
	if len(files) > 0 {
		photos, err := imagestore.UploadFiles(ctx, s.images, s.log, "categories", files)
		if err != nil {
			return Category{}, err
		}
		existing.Photos = photos
	}
	updated, err := s.repo.Update(ctx, id, existing)
	if err != nil {
		if len(files) > 0 {
			imagestore.DeleteBestEffort(ctx, s.images, s.log, existing.Photos.PublicIDs()...)
		}
		return Category{}, err
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

func (s *Service) AddSubcategory(ctx context.Context, categoryID int, name string) (Subcategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Subcategory{}, apperr.Validation("name is required")
	}
	return s.repo.AddSubcategory(ctx, Subcategory{CategoryID: categoryID, Name: name, Slug: Slugify(name)})
}

// SubcategoryInput edits a subcategory. An empty Name keeps the current one and
// a zero CategoryID leaves it under its current category.
type SubcategoryInput struct {
	Name       string `json:"name"`
	CategoryID int    `json:"categoryId"`
}

func (s *Service) UpdateSubcategory(ctx context.Context, categoryID, subID int, in SubcategoryInput) (Subcategory, error) {
	cat, err := s.repo.GetByID(ctx, categoryID)
	if err != nil {
		return Subcategory{}, err
	}
	var current *Subcategory
	for i := range cat.Subcategories {
		if cat.Subcategories[i].ID == subID {
			current = &cat.Subcategories[i]
		}
	}
	if current == nil {
		return Subcategory{}, ErrSubNotFound
	}
	sub := *current
	if name := strings.TrimSpace(in.Name); name != "" {
		sub.Name = name
		sub.Slug = Slugify(name)
	}
	if in.CategoryID != 0 {
		sub.CategoryID = in.CategoryID
	}
	return s.repo.UpdateSubcategory(ctx, categoryID, subID, sub)
}

func (s *Service) DeleteSubcategory(ctx context.Context, categoryID, subID int) error {
	return s.repo.DeleteSubcategory(ctx, categoryID, subID)
}
