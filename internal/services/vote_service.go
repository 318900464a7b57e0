package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mercadito/backend/internal/models"
)

var (
	// ErrInvalidVoteValue is returned for any vote direction other than +1/-1.
	ErrInvalidVoteValue = errors.New("vote value must be +1 or -1")
	// ErrVoteFailed wraps storage faults during a cast; no partial write survives.
	ErrVoteFailed = errors.New("vote failed")
)

// VoteService is the per-user vote ledger: at most one signed vote per
// (user, shop) pair, enforced by the votes table's unique constraint.
type VoteService struct {
	pool *pgxpool.Pool
}

func NewVoteService(pool *pgxpool.Pool) *VoteService {
	return &VoteService{pool: pool}
}

// CastVote upserts the caller's vote and returns the shop's fresh aggregate
// together with the caller's now-current vote. Casting again on the same shop
// replaces the earlier value; the upsert is a single conditional write, so two
// concurrent casts by the same user can never yield two rows.
func (s *VoteService) CastVote(ctx context.Context, userID, shopID int64, value int) (*models.CastVoteResponse, error) {
	if value != models.VoteUp && value != models.VoteDown {
		return nil, ErrInvalidVoteValue
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %v", ErrVoteFailed, err)
	}
	defer tx.Rollback(ctx)

	const upsert = `
		INSERT INTO votes (user_id, shop_id, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, shop_id) DO UPDATE SET value = EXCLUDED.value`

	if _, err := tx.Exec(ctx, upsert, userID, shopID, value); err != nil {
		return nil, fmt.Errorf("%w: upsert: %v", ErrVoteFailed, err)
	}

	const total = `SELECT COALESCE(SUM(value), 0) FROM votes WHERE shop_id = $1`

	var score int64
	if err := tx.QueryRow(ctx, total, shopID).Scan(&score); err != nil {
		return nil, fmt.Errorf("%w: aggregate: %v", ErrVoteFailed, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit: %v", ErrVoteFailed, err)
	}

	return &models.CastVoteResponse{
		ShopID:     shopID,
		Score:      score,
		ViewerVote: value,
	}, nil
}

// AggregateFor sums the shop's votes. Unknown shops score 0.
func (s *VoteService) AggregateFor(ctx context.Context, shopID int64) (int64, error) {
	const query = `SELECT COALESCE(SUM(value), 0) FROM votes WHERE shop_id = $1`

	var score int64
	if err := s.pool.QueryRow(ctx, query, shopID).Scan(&score); err != nil {
		return 0, fmt.Errorf("aggregate votes: %w", err)
	}
	return score, nil
}

// VotesByUser returns shopID -> value for every vote the user holds. Used to
// annotate listings with the viewer's own votes.
func (s *VoteService) VotesByUser(ctx context.Context, userID int64) (map[int64]int, error) {
	const query = `SELECT shop_id, value FROM votes WHERE user_id = $1`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch votes: %w", err)
	}
	defer rows.Close()

	votes := make(map[int64]int)
	for rows.Next() {
		var shopID int64
		var value int
		if err := rows.Scan(&shopID, &value); err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		votes[shopID] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch votes: %w", err)
	}
	return votes, nil
}
