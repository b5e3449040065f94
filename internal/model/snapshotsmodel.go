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

var _ SnapshotsModel = (*customSnapshotsModel)(nil)

type (
	// SnapshotsModel persists the last known market snapshot per symbol.
	SnapshotsModel interface {
		Upsert(ctx context.Context, data *Snapshot) error
		FindOne(ctx context.Context, provider, symbol string) (*Snapshot, error)
		ListAll(ctx context.Context, provider string) ([]*Snapshot, error)
		Delete(ctx context.Context, provider, symbol string) error
	}

	customSnapshotsModel struct {
		conn  sqlx.SqlConn
		cc    sqlc.CachedConn
		table string
	}

	// Snapshot mirrors the snapshots table.
	Snapshot struct {
		Id        int64          `db:"id"`
		Provider  string         `db:"provider"`
		Symbol    string         `db:"symbol"`
		Price     float64        `db:"price"`
		PrevClose sql.NullFloat64 `db:"prev_close"`
		Currency  string         `db:"currency"`
		FetchedAt time.Time      `db:"fetched_at"`
		UpdatedAt time.Time      `db:"updated_at"`
	}
)

// NewSnapshotsModel returns a model for the snapshots table.
func NewSnapshotsModel(conn sqlx.SqlConn, c cache.CacheConf, opts ...cache.Option) SnapshotsModel {
	return &customSnapshotsModel{
		conn:  conn,
		cc:    sqlc.NewConn(conn, c, opts...),
		table: "public.snapshots",
	}
}

func snapshotCacheKey(provider, symbol string) string {
	return fmt.Sprintf("cache:stockbar:snapshots:%s:%s", provider, symbol)
}

func (m *customSnapshotsModel) Upsert(ctx context.Context, data *Snapshot) error {
	stmt := fmt.Sprintf(`
INSERT INTO %s (provider, symbol, price, prev_close, currency, fetched_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW())
ON CONFLICT (provider, symbol) DO UPDATE SET
    price = EXCLUDED.price,
    prev_close = EXCLUDED.prev_close,
    currency = EXCLUDED.currency,
    fetched_at = EXCLUDED.fetched_at,
    updated_at = NOW();`, m.table)
	key := snapshotCacheKey(data.Provider, data.Symbol)
	_, err := m.cc.ExecCtx(ctx, func(ctx context.Context, conn sqlx.SqlConn) (sql.Result, error) {
		return conn.ExecCtx(ctx, stmt, data.Provider, data.Symbol, data.Price, data.PrevClose, data.Currency, data.FetchedAt)
	}, key)
	return err
}

func (m *customSnapshotsModel) FindOne(ctx context.Context, provider, symbol string) (*Snapshot, error) {
	key := snapshotCacheKey(provider, symbol)
	var resp Snapshot
	err := m.cc.QueryRowCtx(ctx, &resp, key, func(ctx context.Context, conn sqlx.SqlConn, v interface{}) error {
		query := fmt.Sprintf(`SELECT id, provider, symbol, price, prev_close, currency, fetched_at, updated_at FROM %s WHERE provider = $1 AND symbol = $2 LIMIT 1`, m.table)
		return conn.QueryRowCtx(ctx, v, query, provider, symbol)
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

func (m *customSnapshotsModel) ListAll(ctx context.Context, provider string) ([]*Snapshot, error) {
	var resp []*Snapshot
	query := fmt.Sprintf(`SELECT id, provider, symbol, price, prev_close, currency, fetched_at, updated_at FROM %s WHERE provider = $1 ORDER BY symbol`, m.table)
	err := m.conn.QueryRowsCtx(ctx, &resp, query, provider)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (m *customSnapshotsModel) Delete(ctx context.Context, provider, symbol string) error {
	key := snapshotCacheKey(provider, symbol)
	_, err := m.cc.ExecCtx(ctx, func(ctx context.Context, conn sqlx.SqlConn) (sql.Result, error) {
		stmt := fmt.Sprintf(`DELETE FROM %s WHERE provider = $1 AND symbol = $2`, m.table)
		return conn.ExecCtx(ctx, stmt, provider, symbol)
	}, key)
	return err
}
