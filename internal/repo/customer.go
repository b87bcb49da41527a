package repo

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/laundry-service/internal/model"
)

const customerColumns = "id, store_id, name, phone, email, address, notes, created_at, updated_at"

type PostgresCustomerRepository struct {
	db DBTX
}

func NewPostgresCustomerRepository(db *sql.DB) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{db: db}
}

func scanCustomer(row rowScanner) (*model.Customer, error) {
	var c model.Customer
	if err := row.Scan(&c.ID, &c.StoreID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresCustomerRepository) Create(ctx context.Context, c *model.Customer) error {
	query := `INSERT INTO customers (` + customerColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.StoreID, c.Name, c.Phone, c.Email, c.Address, c.Notes, c.CreatedAt, c.UpdatedAt)
	return mapErr(err)
}

func (r *PostgresCustomerRepository) Update(ctx context.Context, c *model.Customer) error {
	query := `UPDATE customers SET name = $1, phone = $2, email = $3, address = $4, notes = $5, updated_at = $6
		WHERE id = $7 AND store_id = $8`
	res, err := r.db.ExecContext(ctx, query,
		c.Name, c.Phone, c.Email, c.Address, c.Notes, c.UpdatedAt, c.ID, c.StoreID)
	if err != nil {
		return mapErr(err)
	}
	return expectOneRow(res)
}

func (r *PostgresCustomerRepository) GetByID(ctx context.Context, storeID, id string) (*model.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1 AND store_id = $2`
	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, id, storeID))
	if err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

func applyCustomerFilter(b sq.SelectBuilder, f CustomerFilter) sq.SelectBuilder {
	b = b.Where(sq.Eq{"store_id": f.StoreID})
	if f.Search != "" {
		like := "%" + f.Search + "%"
		b = b.Where(sq.Or{
			sq.ILike{"name": like},
			sq.ILike{"phone": like},
			sq.ILike{"email": like},
		})
	}
	return b
}

func (r *PostgresCustomerRepository) List(ctx context.Context, f CustomerFilter) ([]model.Customer, int, error) {
	countQuery, countArgs, err := applyCustomerFilter(psql.Select("COUNT(*)").From("customers"), f).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	b := applyCustomerFilter(psql.Select(customerColumns).From("customers"), f).OrderBy("name ASC")
	if f.Limit > 0 {
		b = b.Limit(f.Limit).Offset(f.Offset)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	customers := make([]model.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		customers = append(customers, *c)
	}
	return customers, total, rows.Err()
}
