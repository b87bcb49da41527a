package repo

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/laundry-service/internal/model"
	"github.com/shopspring/decimal"
)

type PostgresDashboardRepository struct {
	db DBTX
}

func NewPostgresDashboardRepository(db *sql.DB) *PostgresDashboardRepository {
	return &PostgresDashboardRepository{db: db}
}

func (r *PostgresDashboardRepository) CountByStatus(ctx context.Context, storeID string) ([]StatusCount, error) {
	query, args, err := psql.Select("status", "COUNT(*)").
		From("orders").
		Where(sq.Eq{"store_id": storeID}).
		GroupBy("status").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]StatusCount, 0)
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, sc)
	}
	return counts, rows.Err()
}

func (r *PostgresDashboardRepository) CountCreatedSince(ctx context.Context, storeID string, since time.Time) (int, error) {
	query, args, err := psql.Select("COUNT(*)").
		From("orders").
		Where(sq.Eq{"store_id": storeID}).
		Where(sq.GtOrEq{"created_at": since}).
		ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

// RevenueSince sums payments received since the given time.
func (r *PostgresDashboardRepository) RevenueSince(ctx context.Context, storeID string, since time.Time) (decimal.Decimal, error) {
	query, args, err := psql.Select("COALESCE(SUM(p.amount), 0)").
		From("payments p").
		Join("orders o ON o.id = p.order_id").
		Where(sq.Eq{"o.store_id": storeID}).
		Where(sq.GtOrEq{"p.created_at": since}).
		ToSql()
	if err != nil {
		return decimal.Zero, err
	}
	var sum decimal.Decimal
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&sum)
	return sum, err
}

func (r *PostgresDashboardRepository) OutstandingBalance(ctx context.Context, storeID string) (decimal.Decimal, error) {
	query, args, err := psql.Select("COALESCE(SUM(total_amount - paid_amount), 0)").
		From("orders").
		Where(sq.Eq{"store_id": storeID}).
		Where(sq.NotEq{"status": string(model.StatusCancelled)}).
		Where("paid_amount < total_amount").
		ToSql()
	if err != nil {
		return decimal.Zero, err
	}
	var sum decimal.Decimal
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&sum)
	return sum, err
}

func (r *PostgresDashboardRepository) RecentOrders(ctx context.Context, storeID string, limit uint64) ([]model.Order, error) {
	query, args, err := selectOrders().
		Where(sq.Eq{"o.store_id": storeID}).
		OrderBy("o.created_at DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, err
	}
	orders := &PostgresOrderRepository{db: r.db}
	return orders.queryOrders(ctx, query, args...)
}
