package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mercadito/backend/internal/handlers"
	"github.com/mercadito/backend/internal/models"
	"github.com/mercadito/backend/internal/services"
)

type stubAccountStore struct {
	registerErr error
	loginErr    error
	user        *models.User
}

func (s *stubAccountStore) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return s.user, nil
}

func (s *stubAccountStore) Login(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return s.user, nil
}

func (s *stubAccountStore) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	return s.user, nil
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestRegisterHandlerIssuesToken(t *testing.T) {
	store := &stubAccountStore{user: &models.User{ID: 3, Username: "ana"}}
	h := handlers.NewAuthHandler(store, "secret", time.Hour)

	w := postJSON(t, h.Register, "/auth/register", models.RegisterRequest{Username: "ana", Password: "secret1"})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data models.AuthResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotEmpty(t, resp.Data.Token)
	require.Equal(t, "ana", resp.Data.User.Username)
}

func TestRegisterHandlerValidation(t *testing.T) {
	h := handlers.NewAuthHandler(&stubAccountStore{}, "secret", time.Hour)

	w := postJSON(t, h.Register, "/auth/register", models.RegisterRequest{Username: "", Password: "short"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterHandlerDuplicateUsername(t *testing.T) {
	store := &stubAccountStore{registerErr: services.ErrUsernameTaken}
	h := handlers.NewAuthHandler(store, "secret", time.Hour)

	w := postJSON(t, h.Register, "/auth/register", models.RegisterRequest{Username: "ana", Password: "secret1"})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginHandlerBadCredentials(t *testing.T) {
	for _, err := range []error{services.ErrUserNotFound, services.ErrInvalidPassword} {
		store := &stubAccountStore{loginErr: err}
		h := handlers.NewAuthHandler(store, "secret", time.Hour)

		w := postJSON(t, h.Login, "/auth/login", models.LoginRequest{Username: "ana", Password: "nope"})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}
}
