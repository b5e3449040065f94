package repo

import (
	"context"
	"math"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/cache"

	cachekeys "stockbar/internal/cache"
	"stockbar/internal/model"
	"stockbar/pkg/portfolio"
)

// HistoryRepo answers read queries over persisted snapshots and coordinator
// state. Results are cached in Redis with short TTLs.
type HistoryRepo interface {
	LatestSnapshots(ctx context.Context, provider string) (map[string]portfolio.Snapshot, error)
	SuspendedSymbols(ctx context.Context, now time.Time) ([]string, error)
}

type historyRepo struct {
	snapshots   model.SnapshotsModel
	symbolState model.SymbolStateModel
	cache       cache.Cache
	ttl         cachekeys.TTLSet
}

func newHistoryRepo(deps Dependencies) HistoryRepo {
	return &historyRepo{
		snapshots:   deps.SnapshotsModel,
		symbolState: deps.SymbolStateModel,
		cache:       deps.Cache,
		ttl:         deps.TTL,
	}
}

func (r *historyRepo) getCache(ctx context.Context, key string, v interface{}) bool {
	if r.cache == nil {
		return false
	}
	if err := r.cache.GetCtx(ctx, key, v); err != nil {
		if !r.cache.IsNotFound(err) {
			logx.WithContext(ctx).Errorf("get cache %s: %v", key, err)
		}
		return false
	}
	return true
}

func (r *historyRepo) setCache(ctx context.Context, key string, ttl time.Duration, v interface{}) {
	if r.cache == nil || ttl <= 0 {
		return
	}
	if err := r.cache.SetWithExpireCtx(ctx, key, v, ttl); err != nil {
		logx.WithContext(ctx).Errorf("set cache %s: %v", key, err)
	}
}

// LatestSnapshots returns the last persisted quote per symbol for one
// provider.
func (r *historyRepo) LatestSnapshots(ctx context.Context, provider string) (map[string]portfolio.Snapshot, error) {
	if r.snapshots == nil {
		return nil, nil
	}
	key := cachekeys.BuildKeyWithSuffix(cachekeys.SnapshotLatestKey("all"), provider)
	var cached map[string]portfolio.Snapshot
	if r.getCache(ctx, key, &cached) {
		return cached, nil
	}

	rows, err := r.snapshots.ListAll(ctx, provider)
	if err != nil {
		return nil, err
	}
	out := make(map[string]portfolio.Snapshot, len(rows))
	for _, row := range rows {
		snap := portfolio.Snapshot{
			Price:     row.Price,
			PrevClose: math.NaN(),
			Currency:  row.Currency,
			FetchedAt: row.FetchedAt,
		}
		if row.PrevClose.Valid {
			snap.PrevClose = row.PrevClose.Float64
		}
		out[row.Symbol] = snap
	}
	r.setCache(ctx, key, cachekeys.SnapshotTTL(r.ttl), out)
	return out, nil
}

// SuspendedSymbols lists symbols whose persisted suspension is still active.
func (r *historyRepo) SuspendedSymbols(ctx context.Context, now time.Time) ([]string, error) {
	if r.symbolState == nil {
		return nil, nil
	}
	rows, err := r.symbolState.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, row := range rows {
		if row.SuspendedUntil.Valid && row.SuspendedUntil.Time.After(now) {
			out = append(out, row.Symbol)
		}
	}
	return out, nil
}
