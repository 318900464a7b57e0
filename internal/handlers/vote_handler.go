package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mercadito/backend/internal/middleware"
	"github.com/mercadito/backend/internal/models"
	"github.com/mercadito/backend/internal/services"
)

// VoteLedger is the slice of the vote service the vote endpoints need.
type VoteLedger interface {
	CastVote(ctx context.Context, userID, shopID int64, value int) (*models.CastVoteResponse, error)
	VotesByUser(ctx context.Context, userID int64) (map[int64]int, error)
}

// ShopLookup guards vote casting against unknown shops.
type ShopLookup interface {
	GetByID(ctx context.Context, shopID int64) (*models.Shop, error)
}

type VoteHandler struct {
	votes VoteLedger
	shops ShopLookup
}

func NewVoteHandler(votes VoteLedger, shops ShopLookup) *VoteHandler {
	return &VoteHandler{votes: votes, shops: shops}
}

// CastVote upserts the caller's vote on a shop and returns the fresh
// aggregate plus the caller's own vote.
func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == 0 {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	shopID, err := strconv.ParseInt(chi.URLParam(r, "shopId"), 10, 64)
	if err != nil || shopID <= 0 {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid shop ID"))
		return
	}

	var req models.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if _, err := h.shops.GetByID(r.Context(), shopID); err != nil {
		if errors.Is(err, services.ErrShopNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Shop not found"))
			return
		}
		log.Printf("[CastVote] Shop lookup error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to cast vote"))
		return
	}

	result, err := h.votes.CastVote(r.Context(), userID, shopID, req.Value)
	if err != nil {
		if errors.Is(err, services.ErrInvalidVoteValue) {
			writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Vote value must be +1 or -1"))
			return
		}
		log.Printf("[CastVote] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to cast vote"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(result))
}

// MyVotes returns shopID -> value for every vote the caller holds.
func (h *VoteHandler) MyVotes(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == 0 {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	votes, err := h.votes.VotesByUser(r.Context(), userID)
	if err != nil {
		log.Printf("[MyVotes] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to list votes"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(votes))
}
