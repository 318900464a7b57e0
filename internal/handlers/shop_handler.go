package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/mercadito/backend/internal/middleware"
	"github.com/mercadito/backend/internal/models"
	"github.com/mercadito/backend/internal/services"
)

// ShopRegistry is the slice of the shop service the public endpoints need.
type ShopRegistry interface {
	Submit(ctx context.Context, req *models.SubmitShopRequest) (*models.Shop, error)
	ListPublic(ctx context.Context, viewerID int64) ([]*models.ShopListing, error)
}

type ShopHandler struct {
	shops     ShopRegistry
	blobs     services.BlobStore
	maxSizeMB int64
}

func NewShopHandler(shops ShopRegistry, blobs services.BlobStore, maxSizeMB int64) *ShopHandler {
	return &ShopHandler{
		shops:     shops,
		blobs:     blobs,
		maxSizeMB: maxSizeMB,
	}
}

// ListShops is the public listing: approved shops ordered by score. When the
// request carries a valid token the viewer's own votes come back too.
func (h *ShopHandler) ListShops(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())

	listings, err := h.shops.ListPublic(r.Context(), viewerID)
	if err != nil {
		log.Printf("[ListShops] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to list shops"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(listings))
}

// CreateShop takes a multipart submission (title, owner, x, y, image file),
// stores the image first, then records the pending shop. A blob failure
// aborts before any shop row exists.
func (h *ShopHandler) CreateShop(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == 0 {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSizeMB*1024*1024)
	if err := r.ParseMultipartForm(h.maxSizeMB * 1024 * 1024); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("File too large or invalid form data"))
		return
	}

	req, errs := parseShopForm(r)
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("No image file provided"))
		return
	}
	defer file.Close()

	if contentType := header.Header.Get("Content-Type"); !isValidImageType(contentType) {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid image type. Allowed: JPEG, PNG, GIF, WebP"))
		return
	}

	imageRef, err := h.blobs.Upload(r.Context(), header.Filename, file)
	if err != nil {
		if errors.Is(err, services.ErrImageRejected) {
			writeJSON(w, http.StatusUnprocessableEntity, models.NewErrorResponse("Image rejected by content screening"))
			return
		}
		log.Printf("[CreateShop] Upload error: %v", err)
		writeJSON(w, http.StatusBadGateway, models.NewErrorResponse("Failed to store image"))
		return
	}
	req.ImageRef = imageRef

	shop, err := h.shops.Submit(r.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidShopInput) {
			writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid shop submission"))
			return
		}
		log.Printf("[CreateShop] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to create shop"))
		return
	}

	log.Printf("[CreateShop] Shop created: %d by user %d", shop.ID, userID)
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(shop))
}

func parseShopForm(r *http.Request) (*models.SubmitShopRequest, map[string]string) {
	errs := make(map[string]string)
	req := &models.SubmitShopRequest{
		Title:      r.FormValue("title"),
		OwnerLabel: r.FormValue("owner"),
	}

	if req.Title == "" {
		errs["title"] = "Title is required"
	}
	if req.OwnerLabel == "" {
		errs["owner"] = "Owner name is required"
	}

	x, err := strconv.ParseFloat(r.FormValue("x"), 64)
	if err != nil {
		errs["x"] = "X coordinate must be a real number"
	}
	y, err := strconv.ParseFloat(r.FormValue("y"), 64)
	if err != nil {
		errs["y"] = "Y coordinate must be a real number"
	}
	req.X, req.Y = x, y

	if len(errs) > 0 {
		return nil, errs
	}
	return req, nil
}
