package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mercadito/backend/internal/models"
	"github.com/mercadito/backend/internal/services"
	"github.com/mercadito/backend/internal/testutil"
)

func TestCastVoteReplacesPriorVote(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	votes := services.NewVoteService(pool)
	ctx := context.Background()

	userID := testutil.CreateTestUser(t, pool, "bob", false)
	shopID := testutil.CreateTestShop(t, pool, "Taco Stand", models.StatusApproved)

	first, err := votes.CastVote(ctx, userID, shopID, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), first.Score)
	require.Equal(t, 1, first.ViewerVote)

	// A second cast replaces, never adds.
	second, err := votes.CastVote(ctx, userID, shopID, -1)
	require.NoError(t, err)
	require.Equal(t, int64(-1), second.Score)
	require.Equal(t, -1, second.ViewerVote)

	require.Equal(t, 1, testutil.VoteRowCount(t, pool, userID, shopID))
}

func TestCastVoteRejectsInvalidValue(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	votes := services.NewVoteService(pool)
	ctx := context.Background()

	userID := testutil.CreateTestUser(t, pool, "bob", false)
	shopID := testutil.CreateTestShop(t, pool, "Taco Stand", models.StatusApproved)

	for _, value := range []int{0, 2, -2, 100} {
		_, err := votes.CastVote(ctx, userID, shopID, value)
		require.ErrorIs(t, err, services.ErrInvalidVoteValue, "value %d", value)
	}

	// Nothing was written.
	require.Equal(t, 0, testutil.VoteRowCount(t, pool, userID, shopID))
}

func TestCastVoteConcurrentSamePair(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	votes := services.NewVoteService(pool)

	userID := testutil.CreateTestUser(t, pool, "bob", false)
	shopID := testutil.CreateTestShop(t, pool, "Taco Stand", models.StatusApproved)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		value := 1
		if i%2 == 0 {
			value = -1
		}
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			_, err := votes.CastVote(context.Background(), userID, shopID, v)
			require.NoError(t, err)
		}(value)
	}
	wg.Wait()

	// The unique (user, shop) constraint means racing casts collapse to one row.
	require.Equal(t, 1, testutil.VoteRowCount(t, pool, userID, shopID))

	score, err := votes.AggregateFor(context.Background(), shopID)
	require.NoError(t, err)
	require.Contains(t, []int64{-1, 1}, score)
}

func TestAggregateForUnvotedShop(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	votes := services.NewVoteService(pool)

	shopID := testutil.CreateTestShop(t, pool, "Taco Stand", models.StatusApproved)

	score, err := votes.AggregateFor(context.Background(), shopID)
	require.NoError(t, err)
	require.Equal(t, int64(0), score)

	// An id that matches no shop at all still answers 0.
	score, err = votes.AggregateFor(context.Background(), 999999)
	require.NoError(t, err)
	require.Equal(t, int64(0), score)
}

func TestAggregateSumsAcrossUsers(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	votes := services.NewVoteService(pool)
	ctx := context.Background()

	shopID := testutil.CreateTestShop(t, pool, "Taco Stand", models.StatusApproved)
	a := testutil.CreateTestUser(t, pool, "a", false)
	b := testutil.CreateTestUser(t, pool, "b", false)
	c := testutil.CreateTestUser(t, pool, "c", false)

	testutil.CastTestVote(t, pool, a, shopID, 1)
	testutil.CastTestVote(t, pool, b, shopID, 1)
	testutil.CastTestVote(t, pool, c, shopID, -1)

	score, err := votes.AggregateFor(ctx, shopID)
	require.NoError(t, err)
	require.Equal(t, int64(1), score)
}

func TestVotesByUser(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	votes := services.NewVoteService(pool)
	ctx := context.Background()

	userID := testutil.CreateTestUser(t, pool, "bob", false)

	got, err := votes.VotesByUser(ctx, userID)
	require.NoError(t, err)
	require.Empty(t, got)

	shopA := testutil.CreateTestShop(t, pool, "A", models.StatusApproved)
	shopB := testutil.CreateTestShop(t, pool, "B", models.StatusApproved)
	testutil.CastTestVote(t, pool, userID, shopA, 1)
	testutil.CastTestVote(t, pool, userID, shopB, -1)

	got, err = votes.VotesByUser(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, map[int64]int{shopA: 1, shopB: -1}, got)
}
