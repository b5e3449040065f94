package statepersist

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	gocache "github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	cachekeys "stockbar/internal/cache"
	"stockbar/internal/model"
	"stockbar/pkg/fx"
	"stockbar/pkg/refresh"
)

// Service mirrors coordinator bookkeeping and exchange-rate tables into
// Postgres with a Redis read-through copy. It complements the local state
// file: the file is authoritative on restart, the database is for
// inspection and multi-host history.
type Service struct {
	sqlConn          sqlx.SqlConn
	symbolStateModel model.SymbolStateModel
	fxRatesModel     model.FxRatesModel
	cache            gocache.Cache
	ttl              cachekeys.TTLSet
}

// Config enumerates dependencies required to mirror state.
type Config struct {
	SQLConn          sqlx.SqlConn
	SymbolStateModel model.SymbolStateModel
	FxRatesModel     model.FxRatesModel
	Cache            gocache.Cache
	TTL              cachekeys.TTLSet
}

// NewService returns a concrete state mirror when mandatory dependencies
// are present.
func NewService(cfg Config) *Service {
	if cfg.SQLConn == nil {
		return nil
	}
	return &Service{
		sqlConn:          cfg.SQLConn,
		symbolStateModel: cfg.SymbolStateModel,
		fxRatesModel:     cfg.FxRatesModel,
		cache:            cfg.Cache,
		ttl:              cfg.TTL,
	}
}

// RecordSymbolStates upserts one row per tracked symbol. Each failure is
// logged and skipped so a bad row cannot block the rest of the flush.
func (s *Service) RecordSymbolStates(ctx context.Context, states []refresh.SymbolState) error {
	if s == nil || s.symbolStateModel == nil {
		return nil
	}
	var lastErr error
	for _, state := range states {
		symbol := strings.ToUpper(strings.TrimSpace(state.Symbol))
		if symbol == "" {
			continue
		}
		row := &model.SymbolState{
			Symbol:         symbol,
			Failures:       int64(state.Failures),
			LastSuccess:    nullTime(state.LastSuccess),
			LastFailure:    nullTime(state.LastFailure),
			NextRetryAt:    nullTime(state.NextRetryAt),
			SuspendedUntil: nullTime(state.SuspendedUntil),
		}
		if err := s.symbolStateModel.Upsert(ctx, row); err != nil {
			logx.WithContext(ctx).Errorf("statepersist: upsert %s: %v", symbol, err)
			lastErr = err
			continue
		}
		if s.cache != nil {
			key := cachekeys.SymbolStateKey(symbol)
			if err := s.cache.SetWithExpireCtx(ctx, key, state, cachekeys.SymbolStateTTL(s.ttl)); err != nil {
				logx.WithContext(ctx).Errorf("statepersist: cache %s: %v", key, err)
			}
		}
	}
	return lastErr
}

// RecordRates upserts every rate in the table keyed by (base, code). The
// hardcoded fallback table is never written; only live data is worth
// surviving in the database.
func (s *Service) RecordRates(ctx context.Context, table *fx.Table) error {
	if s == nil || s.fxRatesModel == nil || table == nil || table.Fallback {
		return nil
	}
	fetchedAt := table.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}
	var lastErr error
	for code, rate := range table.Rates {
		row := &model.FxRate{
			Base:      table.Base,
			Code:      code,
			Rate:      rate,
			FetchedAt: fetchedAt,
		}
		if err := s.fxRatesModel.UpsertRate(ctx, row); err != nil {
			logx.WithContext(ctx).Errorf("statepersist: upsert rate %s/%s: %v", table.Base, code, err)
			lastErr = err
		}
	}
	if s.cache != nil {
		key := cachekeys.FxTableKey(table.Base)
		if err := s.cache.SetWithExpireCtx(ctx, key, table, cachekeys.FxTableTTL(s.ttl)); err != nil {
			logx.WithContext(ctx).Errorf("statepersist: cache %s: %v", key, err)
		}
	}
	return lastErr
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
