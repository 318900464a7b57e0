package models

import (
	"time"
)

// Vote directions. A user holds at most one vote per shop; casting again
// replaces the previous value.
const (
	VoteUp   = 1
	VoteDown = -1
)

type Vote struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ShopID    int64     `json:"shop_id"`
	Value     int       `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

type CastVoteRequest struct {
	Value int `json:"value"`
}

// CastVoteResponse reports the shop's fresh aggregate and the caller's own
// vote after the cast.
type CastVoteResponse struct {
	ShopID     int64 `json:"shop_id"`
	Score      int64 `json:"score"`
	ViewerVote int   `json:"viewer_vote"`
}
