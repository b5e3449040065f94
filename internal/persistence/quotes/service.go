package quotepersist

import (
	"context"
	"database/sql"
	"math"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"
	gocache "github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	cachekeys "stockbar/internal/cache"
	"stockbar/internal/model"
	"stockbar/pkg/quote"
)

var _ quote.Persistence = (*Service)(nil)

// Service implements quote persistence and caching hooks over Postgres and
// Redis. Failures here are logged, never propagated into the refresh path.
type Service struct {
	sqlConn        sqlx.SqlConn
	snapshotsModel model.SnapshotsModel
	cache          gocache.Cache
	ttl            cachekeys.TTLSet
}

// Config enumerates dependencies required to persist quotes.
type Config struct {
	SQLConn        sqlx.SqlConn
	SnapshotsModel model.SnapshotsModel
	Cache          gocache.Cache
	TTL            cachekeys.TTLSet
}

// NewService wires a quote persistence service. Returns nil when mandatory
// dependencies are missing so callers can treat persistence as optional.
func NewService(cfg Config) quote.Persistence {
	if cfg.SQLConn == nil || cfg.SnapshotsModel == nil {
		return nil
	}
	return &Service{
		sqlConn:        cfg.SQLConn,
		snapshotsModel: cfg.SnapshotsModel,
		cache:          cfg.Cache,
		ttl:            cfg.TTL,
	}
}

// RecordQuote persists a successful quote and refreshes its Redis mirror.
func (s *Service) RecordQuote(ctx context.Context, provider string, q *quote.Quote) error {
	if s == nil || q == nil {
		return nil
	}
	symbol := strings.TrimSpace(q.Symbol)
	if symbol == "" || math.IsNaN(q.Price) {
		return nil
	}

	row := &model.Snapshot{
		Provider:  provider,
		Symbol:    symbol,
		Price:     q.Price,
		Currency:  q.Currency,
		FetchedAt: q.FetchedAt,
	}
	if !math.IsNaN(q.PrevClose) {
		row.PrevClose = sql.NullFloat64{Float64: q.PrevClose, Valid: true}
	}
	if err := s.snapshotsModel.Upsert(ctx, row); err != nil {
		return err
	}

	if s.cache != nil {
		key := cachekeys.SnapshotByProviderKey(provider, symbol)
		ttl := cachekeys.SnapshotTTL(s.ttl)
		if err := s.cache.SetWithExpireCtx(ctx, key, q, ttl); err != nil {
			logx.WithContext(ctx).Errorf("quotepersist: cache %s: %v", key, err)
		}
	}
	return nil
}
