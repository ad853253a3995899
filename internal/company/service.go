package company

import (
	"context"
	"mime/multipart"
	"net/mail"
	"strings"

	"github.com/rs/zerolog"
	"github.com/wichananm65/storefront-backend/internal/apperr"
	"github.com/wichananm65/storefront-backend/internal/imagestore"
)

const logoFolder = "logo"

type Service struct {
	repo   Repository
	images imagestore.Store
	log    zerolog.Logger
}

func NewService(r Repository, images imagestore.Store, log zerolog.Logger) *Service {
	return &Service{repo: r, images: images, log: log}
}

func (s *Service) List(ctx context.Context) ([]Company, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int) (Company, error) {
	return s.repo.GetByID(ctx, id)
}

// Create requires address, phone and email. The logo is optional.
func (s *Service) Create(ctx context.Context, in Input, logo *multipart.FileHeader) (Company, error) {
	var c Company
	apply(&c, in)
	if c.Address == "" || c.Phone == "" || c.Email == "" {
		return Company{}, apperr.Validation("address, phone and email are required")
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return Company{}, apperr.Validation("invalid email %q", c.Email)
	}
	if logo != nil {
		img, err := s.upload(ctx, logo)
		if err != nil {
			return Company{}, err
		}
		c.Logo = img
	}
	created, err := s.repo.Create(ctx, c)
	if err != nil {
		imagestore.DeleteBestEffort(ctx, s.images, s.log, c.Logo.PublicID)
		return Company{}, err
	}
	return created, nil
}

// Update overwrites the non-empty fields; a new logo replaces the stored one.
func (s *Service) Update(ctx context.Context, id int, in Input, logo *multipart.FileHeader) (Company, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Company{}, err
	}
	apply(&existing, in)
	if _, err := mail.ParseAddress(existing.Email); err != nil {
		return Company{}, apperr.Validation("invalid email %q", existing.Email)
	}
	old := existing.Logo
	if logo != nil {
		img, err := s.upload(ctx, logo)
		if err != nil {
			return Company{}, err
		}
		existing.Logo = img
	}
	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		if logo != nil {
			imagestore.DeleteBestEffort(ctx, s.images, s.log, existing.Logo.PublicID)
		}
		return Company{}, err
	}
	if logo != nil {
		imagestore.DeleteBestEffort(ctx, s.images, s.log, old.PublicID)
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
	imagestore.DeleteBestEffort(ctx, s.images, s.log, existing.Logo.PublicID)
	return nil
}

func (s *Service) upload(ctx context.Context, logo *multipart.FileHeader) (imagestore.Image, error) {
	imgs, err := imagestore.UploadFiles(ctx, s.images, s.log, logoFolder, []*multipart.FileHeader{logo})
	if err != nil {
		return imagestore.Image{}, err
	}
	return imgs[0], nil
}

func apply(c *Company, in Input) {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&c.Address, in.Address)
	set(&c.Phone, in.Phone)
	set(&c.Email, in.Email)
	set(&c.Facebook, in.Facebook)
	set(&c.Twitter, in.Twitter)
	set(&c.Instagram, in.Instagram)
	set(&c.Linkedin, in.Linkedin)
}
