package review

import "time"

type Review struct {
	ID        int       `json:"reviewId"`
	ProductID int       `json:"productId"`
	UserID    int       `json:"userId"`
	UserName  string    `json:"userName"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}
