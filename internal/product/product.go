package product

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront-backend/internal/imagestore"
)

// Variant is one purchasable color of a product with its own stock.
type Variant struct {
	ColorName  string            `json:"colorName"`
	ColorImage imagestore.Image  `json:"colorImage"`
	Photos     imagestore.Images `json:"photos"`
	Sizes      []string          `json:"sizes"`
	SeamSizes  []string          `json:"seamSizes"`
	Stock      int               `json:"stock"`
}

type Product struct {
	ID            int             `json:"productId"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	CategoryID    *int            `json:"categoryId,omitempty"`
	SubcategoryID *int            `json:"subcategoryId,omitempty"`
	Colors        []Variant       `json:"colors"`
	AverageRating float64         `json:"averageRating"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Variant finds a color by name, ignoring surrounding whitespace.
func (p Product) Variant(colorName string) (Variant, bool) {
	colorName = strings.TrimSpace(colorName)
	for _, v := range p.Colors {
		if v.ColorName == colorName {
			return v, true
		}
	}
	return Variant{}, false
}

func (p Product) TotalStock() int {
	total := 0
	for _, v := range p.Colors {
		total += v.Stock
	}
	return total
}

// PrimaryPhoto is the first photo of the first variant that has one.
func (p Product) PrimaryPhoto() *string {
	for _, v := range p.Colors {
		if u := v.Photos.FirstURL(); u != nil {
			return u
		}
	}
	return nil
}

// ColorNames lists the selectable colors in variant order.
func (p Product) ColorNames() []string {
	out := make([]string, 0, len(p.Colors))
	for _, v := range p.Colors {
		out = append(out, v.ColorName)
	}
	return out
}

// Images lists every photo the product references, for cleanup.
func (p Product) Images() imagestore.Images {
	var out imagestore.Images
	for _, v := range p.Colors {
		if !v.ColorImage.IsZero() {
			out = append(out, v.ColorImage)
		}
		out = append(out, v.Photos...)
	}
	return out
}

const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
)

// Filter narrows List. Zero values disable a criterion.
type Filter struct {
	Keyword     string
	CategoryIDs []int
	Colors      []string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	Sort        string
	Limit       int
	Offset      int
}

type Page struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}

// StockLine is a quantity of one variant taken from or returned to stock.
type StockLine struct {
	ProductID int
	ColorName string
	Quantity  int
}

// mergeLines sums duplicate variants and orders them so row locks are
// always taken in the same order.
func mergeLines(lines []StockLine) []StockLine {
	type key struct {
		productID int
		color     string
	}
	idx := map[key]int{}
	out := make([]StockLine, 0, len(lines))
	for _, l := range lines {
		l.ColorName = strings.TrimSpace(l.ColorName)
		k := key{l.ProductID, l.ColorName}
		if i, ok := idx[k]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		idx[k] = len(out)
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].ColorName < out[j].ColorName
	})
	return out
}
