package company

import (
	"time"

	"github.com/wichananm65/storefront-backend/internal/imagestore"
)

// Company is the storefront's contact block shown in headers and footers.
type Company struct {
	ID        int              `json:"companyId"`
	Logo      imagestore.Image `json:"logo"`
	Address   string           `json:"address"`
	Phone     string           `json:"phone"`
	Email     string           `json:"email"`
	Facebook  string           `json:"facebook"`
	Twitter   string           `json:"twitter"`
	Instagram string           `json:"instagram"`
	Linkedin  string           `json:"linkedin"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

type Input struct {
	Address   string
	Phone     string
	Email     string
	Facebook  string
	Twitter   string
	Instagram string
	Linkedin  string
}
