package product

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront-backend/internal/imagestore"
)

const (
	similarLimit     = 4
	newArrivalsLimit = 10
	defaultPageSize  = 20
	maxPageSize      = 100
)

type Service struct {
	repo   Repository
	images imagestore.Store
	log    zerolog.Logger
}

func NewService(repo Repository, images imagestore.Store, log zerolog.Logger) *Service {
	return &Service{repo: repo, images: images, log: log}
}

func (s *Service) List(ctx context.Context, f Filter) (Page, error) {
	if f.Limit <= 0 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	return s.repo.List(ctx, f)
}

func (s *Service) GetByID(ctx context.Context, id int) (Product, error) {
	return s.repo.GetByID(ctx, id)
}

// GetMany resolves a set of ids; missing products are absent from the map.
func (s *Service) GetMany(ctx context.Context, ids []int) (map[int]Product, error) {
	return s.repo.GetMany(ctx, ids)
}

func (s *Service) Similar(ctx context.Context, id int) ([]Product, error) {
	return s.repo.Similar(ctx, id, similarLimit)
}

func (s *Service) NewArrivals(ctx context.Context) ([]Product, error) {
	page, err := s.repo.List(ctx, Filter{Sort: SortNewest, Limit: newArrivalsLimit})
	if err != nil {
		return nil, err
	}
	return page.Products, nil
}

func (s *Service) LowStock(ctx context.Context, threshold int) ([]Product, error) {
	return s.repo.LowStock(ctx, threshold)
}

func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	normalize(&p)
	return s.repo.Create(ctx, p)
}

// Update replaces the product and drops images the new version no longer references.
func (s *Service) Update(ctx context.Context, id int, p Product) (Product, error) {
	normalize(&p)
	before, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	updated, err := s.repo.Update(ctx, id, p)
	if err != nil {
		return Product{}, err
	}
	kept := map[string]bool{}
	for _, pid := range updated.Images().PublicIDs() {
		kept[pid] = true
	}
	var stale []string
	for _, pid := range before.Images().PublicIDs() {
		if !kept[pid] {
			stale = append(stale, pid)
		}
	}
	imagestore.DeleteBestEffort(ctx, s.images, s.log, stale...)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	imagestore.DeleteBestEffort(ctx, s.images, s.log, p.Images().PublicIDs()...)
	return nil
}

// UploadImages stores product photos ahead of a create or update.
func (s *Service) UploadImages(ctx context.Context, files []*multipart.FileHeader) (imagestore.Images, error) {
	return imagestore.UploadFiles(ctx, s.images, s.log, "products", files)
}

// SetRating is called by reviews after the average changes.
func (s *Service) SetRating(ctx context.Context, id int, avg float64) error {
	return s.repo.SetRating(ctx, id, avg)
}

func normalize(p *Product) {
	p.Name = strings.TrimSpace(p.Name)
	for i := range p.Colors {
		p.Colors[i].ColorName = strings.TrimSpace(p.Colors[i].ColorName)
	}
}

// Validate reports every field problem at once, keyed by JSON field name.
func Validate(p Product) map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(p.Name) == "" {
		errs["name"] = "name is required"
	}
	if !p.Price.GreaterThan(decimal.Zero) {
		errs["price"] = "price must be greater than 0"
	}
	if len(p.Colors) == 0 {
		errs["colors"] = "at least one color is required"
	}
	seen := map[string]bool{}
	for _, v := range p.Colors {
		name := strings.TrimSpace(v.ColorName)
		switch {
		case name == "":
			errs["colors"] = "colorName is required"
		case seen[name]:
			errs["colors"] = "duplicate colorName " + name
		case v.Stock < 0:
			errs["colors"] = "stock must be >= 0"
		}
		seen[name] = true
	}
	return errs
}
