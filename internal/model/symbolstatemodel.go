package model

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlc"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var _ SymbolStateModel = (*customSymbolStateModel)(nil)

type (
	// SymbolStateModel persists refresh coordinator bookkeeping per symbol
	// so failure counters and suspensions survive restarts.
	SymbolStateModel interface {
		Upsert(ctx context.Context, data *SymbolState) error
		FindOne(ctx context.Context, symbol string) (*SymbolState, error)
		ListAll(ctx context.Context) ([]*SymbolState, error)
		DeleteAll(ctx context.Context) error
	}

	customSymbolStateModel struct {
		conn  sqlx.SqlConn
		cc    sqlc.CachedConn
		table string
	}

	// SymbolState mirrors the symbol_state table.
	SymbolState struct {
		Id             int64        `db:"id"`
		Symbol         string       `db:"symbol"`
		Failures       int64        `db:"failures"`
		LastSuccess    sql.NullTime `db:"last_success"`
		LastFailure    sql.NullTime `db:"last_failure"`
		NextRetryAt    sql.NullTime `db:"next_retry_at"`
		SuspendedUntil sql.NullTime `db:"suspended_until"`
		UpdatedAt      time.Time    `db:"updated_at"`
	}
)

// NewSymbolStateModel returns a model for the symbol_state table.
func NewSymbolStateModel(conn sqlx.SqlConn, c cache.CacheConf, opts ...cache.Option) SymbolStateModel {
	return &customSymbolStateModel{
		conn:  conn,
		cc:    sqlc.NewConn(conn, c, opts...),
		table: "public.symbol_state",
	}
}

func symbolStateCacheKey(symbol string) string {
	return fmt.Sprintf("cache:stockbar:symbolstate:%s", symbol)
}

func (m *customSymbolStateModel) Upsert(ctx context.Context, data *SymbolState) error {
	stmt := fmt.Sprintf(`
INSERT INTO %s (symbol, failures, last_success, last_failure, next_retry_at, suspended_until, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW())
ON CONFLICT (symbol) DO UPDATE SET
    failures = EXCLUDED.failures,
    last_success = EXCLUDED.last_success,
    last_failure = EXCLUDED.last_failure,
    next_retry_at = EXCLUDED.next_retry_at,
    suspended_until = EXCLUDED.suspended_until,
    updated_at = NOW();`, m.table)
	key := symbolStateCacheKey(data.Symbol)
	_, err := m.cc.ExecCtx(ctx, func(ctx context.Context, conn sqlx.SqlConn) (sql.Result, error) {
		return conn.ExecCtx(ctx, stmt, data.Symbol, data.Failures, data.LastSuccess, data.LastFailure, data.NextRetryAt, data.SuspendedUntil)
	}, key)
	return err
}

func (m *customSymbolStateModel) FindOne(ctx context.Context, symbol string) (*SymbolState, error) {
	key := symbolStateCacheKey(symbol)
	var resp SymbolState
	err := m.cc.QueryRowCtx(ctx, &resp, key, func(ctx context.Context, conn sqlx.SqlConn, v interface{}) error {
		query := fmt.Sprintf(`SELECT id, symbol, failures, last_success, last_failure, next_retry_at, suspended_until, updated_at FROM %s WHERE symbol = $1 LIMIT 1`, m.table)
		return conn.QueryRowCtx(ctx, v, query, symbol)
	})
	switch err {
	case nil:
		return &resp, nil
	case sqlc.ErrNotFound:
		return nil, ErrNotFound
	default:
		return nil, err
	}
}

func (m *customSymbolStateModel) ListAll(ctx context.Context) ([]*SymbolState, error) {
	var resp []*SymbolState
	query := fmt.Sprintf(`SELECT id, symbol, failures, last_success, last_failure, next_retry_at, suspended_until, updated_at FROM %s ORDER BY symbol`, m.table)
	if err := m.conn.QueryRowsCtx(ctx, &resp, query); err != nil {
		return nil, err
	}
	return resp, nil
}

func (m *customSymbolStateModel) DeleteAll(ctx context.Context) error {
	stmt := fmt.Sprintf(`DELETE FROM %s`, m.table)
	_, err := m.conn.ExecCtx(ctx, stmt)
	return err
}
