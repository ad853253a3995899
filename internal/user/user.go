package user

import (
	"time"

	"github.com/wichananm65/storefront-backend/internal/imagestore"
)

type User struct {
	ID        int               `json:"userId"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Password  string            `json:"password,omitempty"`
	Role      string            `json:"role"`
	Avatar    *imagestore.Image `json:"avatar,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func sanitizeUser(user User) User {
	user.Password = ""
	return user
}
