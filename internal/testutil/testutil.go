package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mercadito/backend/internal/models"
	"github.com/mercadito/backend/internal/storage"
)

// SetupTestDB connects to the database named by TEST_DATABASE_URL, applies the
// schema, and truncates all tables. Tests that need a database are skipped
// when the variable is unset.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("set TEST_DATABASE_URL to run database tests")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := storage.Migrate(ctx, pool); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}

	if _, err := pool.Exec(ctx, `TRUNCATE votes, shops, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("Failed to clean database: %v", err)
	}

	return pool
}

// CreateTestUser inserts a user directly and returns its id.
func CreateTestUser(t *testing.T, pool *pgxpool.Pool, username string, isAdmin bool) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO users (username, password_hash, is_admin) VALUES ($1, 'x', $2) RETURNING id`,
		username, isAdmin).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return id
}

// CreateTestShop inserts a shop directly in the given status and returns its id.
func CreateTestShop(t *testing.T, pool *pgxpool.Pool, title, status string) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO shops (title, owner_label, x, y, image_ref, status)
		 VALUES ($1, 'owner', 1.0, 2.0, '/uploads/test.jpg', $2) RETURNING id`,
		title, status).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test shop: %v", err)
	}
	return id
}

// CastTestVote inserts or replaces a vote directly.
func CastTestVote(t *testing.T, pool *pgxpool.Pool, userID, shopID int64, value int) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO votes (user_id, shop_id, value) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, shop_id) DO UPDATE SET value = EXCLUDED.value`,
		userID, shopID, value)
	if err != nil {
		t.Fatalf("Failed to cast test vote: %v", err)
	}
}

// SetAdmin flips a user's admin flag directly, bypassing any session state.
func SetAdmin(t *testing.T, pool *pgxpool.Pool, userID int64, isAdmin bool) {
	t.Helper()

	if _, err := pool.Exec(context.Background(),
		`UPDATE users SET is_admin = $1 WHERE id = $2`, isAdmin, userID); err != nil {
		t.Fatalf("Failed to set admin flag: %v", err)
	}
}

// ShopStatus reads a shop's current moderation status.
func ShopStatus(t *testing.T, pool *pgxpool.Pool, shopID int64) string {
	t.Helper()

	var status string
	if err := pool.QueryRow(context.Background(),
		`SELECT status FROM shops WHERE id = $1`, shopID).Scan(&status); err != nil {
		t.Fatalf("Failed to read shop status: %v", err)
	}
	return status
}

// VoteRowCount counts ledger rows for a (user, shop) pair.
func VoteRowCount(t *testing.T, pool *pgxpool.Pool, userID, shopID int64) int {
	t.Helper()

	var n int
	if err := pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM votes WHERE user_id = $1 AND shop_id = $2`, userID, shopID).Scan(&n); err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	return n
}

// SubmitRequest returns a valid shop submission to tweak per test.
func SubmitRequest() *models.SubmitShopRequest {
	return &models.SubmitShopRequest{
		Title:      "Taco Stand",
		OwnerLabel: "ana",
		X:          10.5,
		Y:          20.1,
		ImageRef:   "/uploads/taco.jpg",
	}
}
