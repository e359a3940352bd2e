package ledger

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-erp/internal/registry/heads"
)

func newTestCache(t *testing.T) (*Cache, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), client
}

func TestCacheFetchJSONPopulatesOnce(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "ledger", "stats")
	require.NoError(t, err)

	loads := 0
	loader := func(context.Context) (interface{}, error) {
		loads++
		return Stats{TotalTransactions: 7}, nil
	}

	var stats Stats
	require.NoError(t, cache.FetchJSON(ctx, key, &stats, loader))
	require.Equal(t, 7, stats.TotalTransactions)
	require.Equal(t, 1, loads)

	var again Stats
	require.NoError(t, cache.FetchJSON(ctx, key, &again, loader))
	require.Equal(t, 7, again.TotalTransactions)
	require.Equal(t, 1, loads, "second fetch must come from the cache")
}

func TestCacheBumpInvalidatesKeys(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	before, err := cache.BuildKey(ctx, "ledger", "stats")
	require.NoError(t, err)

	require.NoError(t, cache.Bump(ctx))

	after, err := cache.BuildKey(ctx, "ledger", "stats")
	require.NoError(t, err)
	require.NotEqual(t, before, after, "bump must rotate the key version")
}

func TestCacheNilClientFallsThrough(t *testing.T) {
	cache := NewCache(nil, time.Minute)
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "ledger", "stats")
	require.NoError(t, err)

	loads := 0
	var stats Stats
	loader := func(context.Context) (interface{}, error) {
		loads++
		return Stats{TotalTransactions: 3}, nil
	}
	require.NoError(t, cache.FetchJSON(ctx, key, &stats, loader))
	require.NoError(t, cache.FetchJSON(ctx, key, &stats, loader))
	require.Equal(t, 2, loads, "no client means every fetch recomputes")
	require.NoError(t, cache.Bump(ctx))
}

// countingRepo wraps the in-memory store to observe projection reloads.
type countingRepo struct {
	*MemoryRepository
	lists int
}

func (r *countingRepo) List(ctx context.Context, f Filter) ([]Voucher, error) {
	r.lists++
	return r.MemoryRepository.List(ctx, f)
}

func TestServiceStatsCachedUntilWrite(t *testing.T) {
	repo := &countingRepo{MemoryRepository: NewMemoryRepository()}
	headSvc := heads.NewService(heads.NewMemoryRepository(), repo, nil)
	cache, _ := newTestCache(t)
	svc := NewService(repo, headSvc, nil, nil, cache)
	ctx := context.Background()

	bank, err := headSvc.Create(ctx, "Main Bank", heads.KindBank)
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{
		Date:   mustDate(t, "2025-03-10"),
		Type:   TypePayment,
		From:   HeadRef{Kind: bank.Kind, ID: bank.ID},
		Amount: d("10"),
	})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, Filter{})
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalTransactions)
	listsAfterFirst := repo.lists

	stats, err = svc.Stats(ctx, Filter{})
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalTransactions)
	require.Equal(t, listsAfterFirst, repo.lists, "repeat stats read must hit the cache")

	// a write bumps the version; the next read recomputes
	_, err = svc.Create(ctx, CreateInput{
		Date:   mustDate(t, "2025-03-11"),
		Type:   TypePayment,
		From:   HeadRef{Kind: bank.Kind, ID: bank.ID},
		Amount: d("20"),
	})
	require.NoError(t, err)

	stats, err = svc.Stats(ctx, Filter{})
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalTransactions)
	require.Greater(t, repo.lists, listsAfterFirst)

	// filtered stats bypass the cache entirely
	payment := TypePayment
	listsBefore := repo.lists
	_, err = svc.Stats(ctx, Filter{Type: &payment})
	require.NoError(t, err)
	require.Greater(t, repo.lists, listsBefore)
}
