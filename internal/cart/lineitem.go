package cart

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind names a per-user line item container.
type Kind string

const (
	KindCart     Kind = "cart"
	KindWishlist Kind = "wishlist"
)

// Selector is a size or seam size as sent by clients. It accepts a JSON
// string, number or null and always holds the normalized form.
type Selector string

func (s *Selector) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*s = ""
	case b[0] == '"':
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		*s = Selector(Normalize(raw))
	default:
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return fmt.Errorf("selector must be a string or number, got %s", b)
		}
		*s = Selector(strconv.FormatFloat(f, 'f', -1, 64))
	}
	return nil
}

// Normalize trims a selector and folds the placeholders clients send for
// "nothing selected" into the empty string.
func Normalize(v string) string {
	v = strings.TrimSpace(v)
	switch strings.ToLower(v) {
	case "undefined", "null":
		return ""
	}
	return v
}

// Key identifies a line item inside one container.
type Key struct {
	ProductID int
	Size      string
	SeamSize  string
	ColorName string
}

func NewKey(productID int, size, seamSize Selector, colorName string) Key {
	return Key{
		ProductID: productID,
		Size:      Normalize(string(size)),
		SeamSize:  Normalize(string(seamSize)),
		ColorName: strings.TrimSpace(colorName),
	}
}

type LineItem struct {
	ProductID int       `json:"productId"`
	Quantity  int       `json:"quantity,omitempty"`
	Size      string    `json:"size,omitempty"`
	SeamSize  string    `json:"seamSize,omitempty"`
	ColorName string    `json:"colorName"`
	AddedAt   time.Time `json:"addedAt"`
}

func (l LineItem) Key() Key {
	return NewKey(l.ProductID, Selector(l.Size), Selector(l.SeamSize), l.ColorName)
}

// Items is stored as a single jsonb document per container.
type Items []LineItem

func (is Items) Value() (driver.Value, error) {
	if is == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(is)
}

func (is *Items) Scan(src any) error {
	*is = Items{}
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, is)
	case string:
		return json.Unmarshal([]byte(v), is)
	default:
		return fmt.Errorf("cart: cannot scan %T into Items", src)
	}
}

// Container is a user's cart or wishlist. Version increases on every save.
type Container struct {
	UserID  int
	Kind    Kind
	Items   Items
	Version int
}

// Find returns the index of the item matching k, or -1.
func (c *Container) Find(k Key) int {
	for i, it := range c.Items {
		if it.Key() == k {
			return i
		}
	}
	return -1
}

func (c *Container) RemoveAt(i int) {
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
}

// RemoveProducts drops every item referencing one of ids and reports how
// many were removed.
func (c *Container) RemoveProducts(ids map[int]bool) int {
	kept := c.Items[:0]
	for _, it := range c.Items {
		if !ids[it.ProductID] {
			kept = append(kept, it)
		}
	}
	removed := len(c.Items) - len(kept)
	c.Items = kept
	return removed
}

func (c *Container) ProductIDs() []int {
	seen := map[int]bool{}
	out := make([]int, 0, len(c.Items))
	for _, it := range c.Items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			out = append(out, it.ProductID)
		}
	}
	return out
}

func (c Container) clone() Container {
	items := make(Items, len(c.Items))
	copy(items, c.Items)
	c.Items = items
	return c
}
