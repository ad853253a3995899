package imagestore

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Image is a stored blob: PublicID deletes it, URL serves it.
type Image struct {
	PublicID string `json:"publicId"`
	URL      string `json:"url"`
}

// Store is the image host the catalog and content packages upload through.
type Store interface {
	Upload(ctx context.Context, folder string, data []byte, contentType string) (Image, error)
	Delete(ctx context.Context, publicID string) error
}

func (i Image) IsZero() bool { return i.PublicID == "" && i.URL == "" }

// Value stores an image as jsonb; the zero image is NULL.
func (i Image) Value() (driver.Value, error) {
	if i.IsZero() {
		return nil, nil
	}
	return json.Marshal(i)
}

func (i *Image) Scan(src any) error {
	*i = Image{}
	return scanJSON(src, i)
}

// Images is a jsonb photo list.
type Images []Image

func (is Images) Value() (driver.Value, error) {
	if is == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(is)
}

func (is *Images) Scan(src any) error {
	*is = Images{}
	return scanJSON(src, is)
}

// PublicIDs lists the non-empty identifiers, for bulk deletes.
func (is Images) PublicIDs() []string {
	out := make([]string, 0, len(is))
	for _, img := range is {
		if img.PublicID != "" {
			out = append(out, img.PublicID)
		}
	}
	return out
}

// FirstURL returns the first photo URL or nil.
func (is Images) FirstURL() *string {
	if len(is) == 0 || is[0].URL == "" {
		return nil
	}
	u := is[0].URL
	return &u
}

func scanJSON(src any, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("imagestore: cannot scan %T", src)
	}
}
