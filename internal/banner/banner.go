package banner

import (
	"time"

	"github.com/wichananm65/storefront-backend/internal/imagestore"
)

// Slot names a place on the storefront a banner is rendered in.
type Slot string

const (
	SlotHero         Slot = "hero"
	SlotSecond       Slot = "second"
	SlotThird        Slot = "third"
	SlotEvent        Slot = "event"
	SlotProductEvent Slot = "product-event"
)

func (s Slot) Valid() bool {
	switch s {
	case SlotHero, SlotSecond, SlotThird, SlotEvent, SlotProductEvent:
		return true
	}
	return false
}

// maxPhotos is how many images a slot keeps; 0 means unbounded.
func (s Slot) maxPhotos() int {
	if s == SlotEvent {
		return 1
	}
	return 0
}

type Banner struct {
	ID          int               `json:"bannerId"`
	Slot        Slot              `json:"slot"`
	Title       string            `json:"title,omitempty"`
	Heading     string            `json:"heading,omitempty"`
	Description string            `json:"description,omitempty"`
	Link        string            `json:"link,omitempty"`
	Photos      imagestore.Images `json:"photos"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// Input carries the text fields of a create or update form.
type Input struct {
	Title       string
	Heading     string
	Description string
	Link        string
}
