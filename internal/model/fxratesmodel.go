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

var _ FxRatesModel = (*customFxRatesModel)(nil)

type (
	// FxRatesModel persists the last fetched exchange-rate table as one row
	// per currency code relative to the base.
	FxRatesModel interface {
		UpsertRate(ctx context.Context, data *FxRate) error
		FindOne(ctx context.Context, base, code string) (*FxRate, error)
		ListByBase(ctx context.Context, base string) ([]*FxRate, error)
	}

	customFxRatesModel struct {
		conn  sqlx.SqlConn
		cc    sqlc.CachedConn
		table string
	}

	// FxRate mirrors the fx_rates table.
	FxRate struct {
		Id        int64     `db:"id"`
		Base      string    `db:"base"`
		Code      string    `db:"code"`
		Rate      float64   `db:"rate"`
		FetchedAt time.Time `db:"fetched_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}
)

// NewFxRatesModel returns a model for the fx_rates table.
func NewFxRatesModel(conn sqlx.SqlConn, c cache.CacheConf, opts ...cache.Option) FxRatesModel {
	return &customFxRatesModel{
		conn:  conn,
		cc:    sqlc.NewConn(conn, c, opts...),
		table: "public.fx_rates",
	}
}

func fxRateCacheKey(base, code string) string {
	return fmt.Sprintf("cache:stockbar:fxrates:%s:%s", base, code)
}

func (m *customFxRatesModel) UpsertRate(ctx context.Context, data *FxRate) error {
	stmt := fmt.Sprintf(`
INSERT INTO %s (base, code, rate, fetched_at, updated_at)
VALUES ($1, $2, $3, $4, NOW())
ON CONFLICT (base, code) DO UPDATE SET
    rate = EXCLUDED.rate,
    fetched_at = EXCLUDED.fetched_at,
    updated_at = NOW();`, m.table)
	key := fxRateCacheKey(data.Base, data.Code)
	_, err := m.cc.ExecCtx(ctx, func(ctx context.Context, conn sqlx.SqlConn) (sql.Result, error) {
		return conn.ExecCtx(ctx, stmt, data.Base, data.Code, data.Rate, data.FetchedAt)
	}, key)
	return err
}

func (m *customFxRatesModel) FindOne(ctx context.Context, base, code string) (*FxRate, error) {
	key := fxRateCacheKey(base, code)
	var resp FxRate
	err := m.cc.QueryRowCtx(ctx, &resp, key, func(ctx context.Context, conn sqlx.SqlConn, v interface{}) error {
		query := fmt.Sprintf(`SELECT id, base, code, rate, fetched_at, updated_at FROM %s WHERE base = $1 AND code = $2 LIMIT 1`, m.table)
		return conn.QueryRowCtx(ctx, v, query, base, code)
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

func (m *customFxRatesModel) ListByBase(ctx context.Context, base string) ([]*FxRate, error) {
	var resp []*FxRate
	query := fmt.Sprintf(`SELECT id, base, code, rate, fetched_at, updated_at FROM %s WHERE base = $1 ORDER BY code`, m.table)
	if err := m.conn.QueryRowsCtx(ctx, &resp, query, base); err != nil {
		return nil, err
	}
	return resp, nil
}
