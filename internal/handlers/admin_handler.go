package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mercadito/backend/internal/models"
	"github.com/mercadito/backend/internal/services"
)

// Moderator is the slice of the shop service the admin endpoints need.
type Moderator interface {
	ListPending(ctx context.Context) ([]*models.Shop, error)
	ListRejected(ctx context.Context) ([]*models.Shop, error)
	ListApproved(ctx context.Context) ([]*models.Shop, error)
	Approve(ctx context.Context, shopID int64) error
	Reject(ctx context.Context, shopID int64) error
	Unapprove(ctx context.Context, shopID int64) error
	Restore(ctx context.Context, shopID int64) error
}

// AdminHandler serves the moderation views and transitions. All its routes
// sit behind middleware.RequireAdmin.
type AdminHandler struct {
	shops Moderator
}

func NewAdminHandler(shops Moderator) *AdminHandler {
	return &AdminHandler{shops: shops}
}

func (h *AdminHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "pending", h.shops.ListPending)
}

func (h *AdminHandler) ListRejected(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "rejected", h.shops.ListRejected)
}

func (h *AdminHandler) ListApproved(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "approved", h.shops.ListApproved)
}

func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "approve", h.shops.Approve)
}

func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "reject", h.shops.Reject)
}

func (h *AdminHandler) Unapprove(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "unapprove", h.shops.Unapprove)
}

func (h *AdminHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "restore", h.shops.Restore)
}

func (h *AdminHandler) list(w http.ResponseWriter, r *http.Request, view string, fetch func(context.Context) ([]*models.Shop, error)) {
	shops, err := fetch(r.Context())
	if err != nil {
		log.Printf("[admin] list %s error: %v", view, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to list shops"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(shops))
}

func (h *AdminHandler) transition(w http.ResponseWriter, r *http.Request, action string, apply func(context.Context, int64) error) {
	shopID, err := strconv.ParseInt(chi.URLParam(r, "shopId"), 10, 64)
	if err != nil || shopID <= 0 {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid shop ID"))
		return
	}

	if err := apply(r.Context(), shopID); err != nil {
		if errors.Is(err, services.ErrShopNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Shop not found"))
			return
		}
		log.Printf("[admin] %s shop %d error: %v", action, shopID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to update shop"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"status": "ok"}))
}
