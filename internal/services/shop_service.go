package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mercadito/backend/internal/models"
)

var (
	ErrShopNotFound = errors.New("shop not found")
	// ErrInvalidShopInput covers missing fields and non-real coordinates.
	ErrInvalidShopInput = errors.New("invalid shop submission")
)

// ShopService owns the shop registry and its moderation lifecycle. Every shop
// starts pending; only approved shops reach the public listing.
type ShopService struct {
	pool *pgxpool.Pool
}

func NewShopService(pool *pgxpool.Pool) *ShopService {
	return &ShopService{pool: pool}
}

// Submit persists a new pending shop. The image is expected to already live in
// the blob store; only its reference is recorded here.
func (s *ShopService) Submit(ctx context.Context, req *models.SubmitShopRequest) (*models.Shop, error) {
	if errs := req.Validate(); len(errs) > 0 {
		return nil, ErrInvalidShopInput
	}

	const query = `
		INSERT INTO shops (title, owner_label, x, y, image_ref, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, title, owner_label, x, y, image_ref, status, created_at`

	row := s.pool.QueryRow(ctx, query, req.Title, req.OwnerLabel, req.X, req.Y, req.ImageRef, models.StatusPending)
	shop, err := scanShop(row)
	if err != nil {
		return nil, fmt.Errorf("submit shop: %w", err)
	}

	log.Printf("[shops] submitted id=%d title=%q", shop.ID, shop.Title)
	return shop, nil
}

func (s *ShopService) GetByID(ctx context.Context, shopID int64) (*models.Shop, error) {
	const query = `
		SELECT id, title, owner_label, x, y, image_ref, status, created_at
		FROM shops
		WHERE id = $1`

	shop, err := scanShop(s.pool.QueryRow(ctx, query, shopID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrShopNotFound
		}
		return nil, fmt.Errorf("fetch shop: %w", err)
	}
	return shop, nil
}

// ListPublic returns approved shops decorated with their vote aggregate,
// highest score first, ties broken by ascending id for a stable order. When
// viewerID is non-zero each listing also carries that viewer's own vote.
func (s *ShopService) ListPublic(ctx context.Context, viewerID int64) ([]*models.ShopListing, error) {
	const query = `
		SELECT s.id, s.title, s.owner_label, s.x, s.y, s.image_ref, s.status, s.created_at,
			COALESCE(SUM(v.value), 0) AS score,
			MAX(v.value) FILTER (WHERE v.user_id = $2) AS viewer_vote
		FROM shops s
		LEFT JOIN votes v ON v.shop_id = s.id
		WHERE s.status = $1
		GROUP BY s.id
		ORDER BY score DESC, s.id ASC`

	rows, err := s.pool.Query(ctx, query, models.StatusApproved, viewerID)
	if err != nil {
		return nil, fmt.Errorf("list public shops: %w", err)
	}
	defer rows.Close()

	listings := make([]*models.ShopListing, 0)
	for rows.Next() {
		var l models.ShopListing
		var viewerVote *int16
		if err := rows.Scan(&l.ID, &l.Title, &l.OwnerLabel, &l.X, &l.Y, &l.ImageRef,
			&l.Status, &l.CreatedAt, &l.Score, &viewerVote); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		if viewerVote != nil {
			v := int(*viewerVote)
			l.ViewerVote = &v
		}
		listings = append(listings, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list public shops: %w", err)
	}
	return listings, nil
}

// ListPending returns shops no administrator has reviewed yet.
func (s *ShopService) ListPending(ctx context.Context) ([]*models.Shop, error) {
	return s.listByStatus(ctx, models.StatusPending)
}

// ListRejected returns reviewed shops currently hidden from the public.
func (s *ShopService) ListRejected(ctx context.Context) ([]*models.Shop, error) {
	return s.listByStatus(ctx, models.StatusRejected)
}

// ListApproved is the admin view of currently visible shops, without vote
// decoration.
func (s *ShopService) ListApproved(ctx context.Context) ([]*models.Shop, error) {
	return s.listByStatus(ctx, models.StatusApproved)
}

func (s *ShopService) listByStatus(ctx context.Context, status string) ([]*models.Shop, error) {
	const query = `
		SELECT id, title, owner_label, x, y, image_ref, status, created_at
		FROM shops
		WHERE status = $1
		ORDER BY id ASC`

	rows, err := s.pool.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("list %s shops: %w", status, err)
	}
	defer rows.Close()

	shops := make([]*models.Shop, 0)
	for rows.Next() {
		shop, err := scanShop(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shop: %w", err)
		}
		shops = append(shops, shop)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s shops: %w", status, err)
	}
	return shops, nil
}

// Moderation transitions. Each is a single guarded row update; running one
// against a shop already past the expected state changes nothing, which keeps
// repeated admin clicks harmless. The guards reproduce the legacy
// checked/shown flag semantics:
//
//	approve    pending  -> approved
//	reject     any      -> rejected
//	unapprove  approved -> rejected
//	restore    rejected -> approved
//
// There is no way back to pending once a shop has been reviewed.

func (s *ShopService) Approve(ctx context.Context, shopID int64) error {
	return s.transition(ctx, shopID, "approve",
		`UPDATE shops SET status = 'approved' WHERE id = $1 AND status = 'pending'`)
}

func (s *ShopService) Reject(ctx context.Context, shopID int64) error {
	return s.transition(ctx, shopID, "reject",
		`UPDATE shops SET status = 'rejected' WHERE id = $1`)
}

func (s *ShopService) Unapprove(ctx context.Context, shopID int64) error {
	return s.transition(ctx, shopID, "unapprove",
		`UPDATE shops SET status = 'rejected' WHERE id = $1 AND status = 'approved'`)
}

func (s *ShopService) Restore(ctx context.Context, shopID int64) error {
	return s.transition(ctx, shopID, "restore",
		`UPDATE shops SET status = 'approved' WHERE id = $1 AND status = 'rejected'`)
}

func (s *ShopService) transition(ctx context.Context, shopID int64, action, query string) error {
	tag, err := s.pool.Exec(ctx, query, shopID)
	if err != nil {
		return fmt.Errorf("%s shop %d: %w", action, shopID, err)
	}
	if tag.RowsAffected() == 0 {
		// Either the shop does not exist or it is not in the expected
		// source state. Distinguish the two so missing shops surface.
		if _, err := s.GetByID(ctx, shopID); err != nil {
			return err
		}
		return nil
	}
	log.Printf("[moderation] %s shop id=%d", action, shopID)
	return nil
}

func scanShop(row pgx.Row) (*models.Shop, error) {
	var shop models.Shop
	if err := row.Scan(&shop.ID, &shop.Title, &shop.OwnerLabel, &shop.X, &shop.Y,
		&shop.ImageRef, &shop.Status, &shop.CreatedAt); err != nil {
		return nil, err
	}
	return &shop, nil
}
