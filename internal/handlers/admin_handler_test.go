package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/mercadito/backend/internal/handlers"
	"github.com/mercadito/backend/internal/models"
	"github.com/mercadito/backend/internal/services"
)

type stubModerator struct {
	actions []string
	lastID  int64
	err     error
}

func (s *stubModerator) ListPending(ctx context.Context) ([]*models.Shop, error) {
	return []*models.Shop{{ID: 1, Status: models.StatusPending}}, s.err
}

func (s *stubModerator) ListRejected(ctx context.Context) ([]*models.Shop, error) {
	return []*models.Shop{}, s.err
}

func (s *stubModerator) ListApproved(ctx context.Context) ([]*models.Shop, error) {
	return []*models.Shop{}, s.err
}

func (s *stubModerator) apply(action string, shopID int64) error {
	if s.err != nil {
		return s.err
	}
	s.actions = append(s.actions, action)
	s.lastID = shopID
	return nil
}

func (s *stubModerator) Approve(ctx context.Context, shopID int64) error {
	return s.apply("approve", shopID)
}

func (s *stubModerator) Reject(ctx context.Context, shopID int64) error {
	return s.apply("reject", shopID)
}

func (s *stubModerator) Unapprove(ctx context.Context, shopID int64) error {
	return s.apply("unapprove", shopID)
}

func (s *stubModerator) Restore(ctx context.Context, shopID int64) error {
	return s.apply("restore", shopID)
}

func adminRouter(h *handlers.AdminHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/shops/pending", h.ListPending)
	r.Get("/shops/rejected", h.ListRejected)
	r.Get("/shops/approved", h.ListApproved)
	r.Post("/shops/{shopId}/approve", h.Approve)
	r.Post("/shops/{shopId}/reject", h.Reject)
	r.Post("/shops/{shopId}/unapprove", h.Unapprove)
	r.Post("/shops/{shopId}/restore", h.Restore)
	return r
}

func TestAdminTransitions(t *testing.T) {
	for _, action := range []string{"approve", "reject", "unapprove", "restore"} {
		t.Run(action, func(t *testing.T) {
			mod := &stubModerator{}
			router := adminRouter(handlers.NewAdminHandler(mod))

			req := httptest.NewRequest(http.MethodPost, "/shops/5/"+action, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			require.Equal(t, []string{action}, mod.actions)
			require.Equal(t, int64(5), mod.lastID)
		})
	}
}

func TestAdminTransitionBadID(t *testing.T) {
	mod := &stubModerator{}
	router := adminRouter(handlers.NewAdminHandler(mod))

	req := httptest.NewRequest(http.MethodPost, "/shops/abc/approve", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, mod.actions)
}

func TestAdminTransitionUnknownShop(t *testing.T) {
	mod := &stubModerator{err: services.ErrShopNotFound}
	router := adminRouter(handlers.NewAdminHandler(mod))

	req := httptest.NewRequest(http.MethodPost, "/shops/404/approve", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminListPending(t *testing.T) {
	router := adminRouter(handlers.NewAdminHandler(&stubModerator{}))

	req := httptest.NewRequest(http.MethodGet, "/shops/pending", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}
