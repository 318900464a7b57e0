package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mercadito/backend/internal/models"
)

type contextKey string

const (
	UserIDKey  contextKey = "userID"
	IsAdminKey contextKey = "isAdmin"
)

// AdminChecker reads the current admin flag from the credential store.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

// JWTAuth validates bearer tokens and stores the caller's user id in the
// request context, along with the login-time admin snapshot. The snapshot is
// informational only; admin-gated routes re-check the store via RequireAdmin.
func JWTAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Authorization header required"))
				return
			}

			userID, isAdmin, err := parseBearer(authHeader, jwtSecret)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse(err.Error()))
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, IsAdminKey, isAdmin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalJWTAuth populates the identity context when a valid bearer token is
// present and lets the request through anonymously otherwise. Used on the
// public listing so logged-in viewers get their own votes back.
func OptionalJWTAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				if userID, isAdmin, err := parseBearer(authHeader, jwtSecret); err == nil {
					ctx := context.WithValue(r.Context(), UserIDKey, userID)
					ctx = context.WithValue(ctx, IsAdminKey, isAdmin)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func parseBearer(authHeader, jwtSecret string) (int64, bool, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, false, errors.New("Invalid authorization header format")
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, false, errors.New("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false, errors.New("Invalid token claims")
	}

	// JSON numbers decode as float64.
	rawID, ok := claims["user_id"].(float64)
	if !ok || rawID <= 0 {
		return 0, false, errors.New("Invalid user ID in token")
	}
	isAdmin, _ := claims["is_admin"].(bool)

	return int64(rawID), isAdmin, nil
}

// RequireAdmin gates a route on a fresh admin-flag lookup. The token's
// is_admin claim is deliberately ignored here: a demotion after login must
// take effect on the very next request.
func RequireAdmin(checker AdminChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := GetUserID(r.Context())
			if userID == 0 {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
				return
			}

			isAdmin, err := checker.IsAdmin(r.Context(), userID)
			if err != nil {
				log.Printf("[auth] admin check failed user=%d err=%v", userID, err)
				writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to verify permissions"))
				return
			}
			if !isAdmin {
				writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Admin access required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUserID extracts the authenticated user id from context; 0 means no
// authenticated identity.
func GetUserID(ctx context.Context) int64 {
	userID, ok := ctx.Value(UserIDKey).(int64)
	if !ok {
		return 0
	}
	return userID
}

// GetIsAdmin returns the login-time admin snapshot carried by the token.
func GetIsAdmin(ctx context.Context) bool {
	isAdmin, ok := ctx.Value(IsAdminKey).(bool)
	if !ok {
		return false
	}
	return isAdmin
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
