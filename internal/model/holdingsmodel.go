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

var _ HoldingsModel = (*customHoldingsModel)(nil)

type (
	// HoldingsModel persists user-configured positions.
	HoldingsModel interface {
		Upsert(ctx context.Context, data *Holding) error
		FindOne(ctx context.Context, symbol string) (*Holding, error)
		ListAll(ctx context.Context) ([]*Holding, error)
		Delete(ctx context.Context, symbol string) error
	}

	customHoldingsModel struct {
		conn  sqlx.SqlConn
		cc    sqlc.CachedConn
		table string
	}

	// Holding mirrors the holdings table.
	Holding struct {
		Id           int64     `db:"id"`
		Symbol       string    `db:"symbol"`
		Quantity     float64   `db:"quantity"`
		AvgCost      float64   `db:"avg_cost"`
		CostCurrency string    `db:"cost_currency"`
		WatchOnly    bool      `db:"watch_only"`
		UpdatedAt    time.Time `db:"updated_at"`
	}
)

// NewHoldingsModel returns a model for the holdings table.
func NewHoldingsModel(conn sqlx.SqlConn, c cache.CacheConf, opts ...cache.Option) HoldingsModel {
	return &customHoldingsModel{
		conn:  conn,
		cc:    sqlc.NewConn(conn, c, opts...),
		table: "public.holdings",
	}
}

func holdingCacheKey(symbol string) string {
	return fmt.Sprintf("cache:stockbar:holdings:%s", symbol)
}

func (m *customHoldingsModel) Upsert(ctx context.Context, data *Holding) error {
	stmt := fmt.Sprintf(`
INSERT INTO %s (symbol, quantity, avg_cost, cost_currency, watch_only, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW())
ON CONFLICT (symbol) DO UPDATE SET
    quantity = EXCLUDED.quantity,
    avg_cost = EXCLUDED.avg_cost,
    cost_currency = EXCLUDED.cost_currency,
    watch_only = EXCLUDED.watch_only,
    updated_at = NOW();`, m.table)
	key := holdingCacheKey(data.Symbol)
	_, err := m.cc.ExecCtx(ctx, func(ctx context.Context, conn sqlx.SqlConn) (sql.Result, error) {
		return conn.ExecCtx(ctx, stmt, data.Symbol, data.Quantity, data.AvgCost, data.CostCurrency, data.WatchOnly)
	}, key)
	return err
}

func (m *customHoldingsModel) FindOne(ctx context.Context, symbol string) (*Holding, error) {
	key := holdingCacheKey(symbol)
	var resp Holding
	err := m.cc.QueryRowCtx(ctx, &resp, key, func(ctx context.Context, conn sqlx.SqlConn, v interface{}) error {
		query := fmt.Sprintf(`SELECT id, symbol, quantity, avg_cost, cost_currency, watch_only, updated_at FROM %s WHERE symbol = $1 LIMIT 1`, m.table)
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

func (m *customHoldingsModel) ListAll(ctx context.Context) ([]*Holding, error) {
	var resp []*Holding
	query := fmt.Sprintf(`SELECT id, symbol, quantity, avg_cost, cost_currency, watch_only, updated_at FROM %s ORDER BY symbol`, m.table)
	if err := m.conn.QueryRowsCtx(ctx, &resp, query); err != nil {
		return nil, err
	}
	return resp, nil
}

func (m *customHoldingsModel) Delete(ctx context.Context, symbol string) error {
	key := holdingCacheKey(symbol)
	_, err := m.cc.ExecCtx(ctx, func(ctx context.Context, conn sqlx.SqlConn) (sql.Result, error) {
		stmt := fmt.Sprintf(`DELETE FROM %s WHERE symbol = $1`, m.table)
		return conn.ExecCtx(ctx, stmt, symbol)
	}, key)
	return err
}
