package models

import (
	"math"
	"time"
)

// Shop moderation status constants
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Shop is a community marketplace listing. OwnerLabel is the display name the
// submitter typed in, not a reference to a user record.
type Shop struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	OwnerLabel string    `json:"owner"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	ImageRef   string    `json:"image_ref"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// ShopListing is a shop decorated with its vote aggregate and, when the
// listing was requested by a logged-in viewer, that viewer's own vote.
type ShopListing struct {
	Shop
	Score      int64 `json:"score"`
	ViewerVote *int  `json:"viewer_vote,omitempty"`
}

type SubmitShopRequest struct {
	Title      string  `json:"title"`
	OwnerLabel string  `json:"owner"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	ImageRef   string  `json:"image_ref"`
}

func (r *SubmitShopRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Title == "" {
		errors["title"] = "Title is required"
	}
	if r.OwnerLabel == "" {
		errors["owner"] = "Owner name is required"
	}
	if math.IsNaN(r.X) || math.IsInf(r.X, 0) {
		errors["x"] = "X coordinate must be a real number"
	}
	if math.IsNaN(r.Y) || math.IsInf(r.Y, 0) {
		errors["y"] = "Y coordinate must be a real number"
	}
	if r.ImageRef == "" {
		errors["image_ref"] = "Image is required"
	}

	return errors
}
