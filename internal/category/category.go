package category

import (
	"strings"
	"time"
	"unicode"

	"github.com/wichananm65/storefront-backend/internal/imagestore"
)

type Category struct {
	ID            int               `json:"categoryId"`
	Name          string            `json:"name"`
	Slug          string            `json:"slug"`
	Photos        imagestore.Images `json:"photos"`
	Subcategories []Subcategory     `json:"subcategories"`
	CreatedAt     time.Time         `json:"createdAt"`
}

type Subcategory struct {
	ID         int    `json:"subcategoryId"`
	CategoryID int    `json:"categoryId"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
}

// Slugify lowercases name and joins its letter/digit runs with dashes.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
