package repo

import (
	"context"
	"database/sql"

	"github.com/laundry-service/internal/model"
)

type PostgresStoreRepository struct {
	db DBTX
}

func NewPostgresStoreRepository(db *sql.DB) *PostgresStoreRepository {
	return &PostgresStoreRepository{db: db}
}

func (r *PostgresStoreRepository) GetByID(ctx context.Context, id string) (*model.Store, error) {
	query := `SELECT id, name, phone, address, currency, tax_rate, pickup_enabled, delivery_enabled, workshop_enabled, created_at
		FROM stores WHERE id = $1`
	var s model.Store
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Phone, &s.Address, &s.Currency, &s.TaxRate,
		&s.Features.PickupEnabled, &s.Features.DeliveryEnabled, &s.Features.WorkshopEnabled, &s.CreatedAt,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

func (r *PostgresStoreRepository) UpdateFeatures(ctx context.Context, id string, f model.Features) error {
	query := `UPDATE stores SET pickup_enabled = $1, delivery_enabled = $2, workshop_enabled = $3 WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, f.PickupEnabled, f.DeliveryEnabled, f.WorkshopEnabled, id)
	if err != nil {
		return mapErr(err)
	}
	return expectOneRow(res)
}

type PostgresUserRepository struct {
	db DBTX
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT id, store_id, email, name, password_hash, role FROM users WHERE LOWER(email) = LOWER($1)`
	var u model.User
	err := r.db.QueryRowContext(ctx, query, email).Scan(&u.ID, &u.StoreID, &u.Email, &u.Name, &u.PasswordHash, &u.Role)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

type PostgresDriverRepository struct {
	db DBTX
}

func NewPostgresDriverRepository(db *sql.DB) *PostgresDriverRepository {
	return &PostgresDriverRepository{db: db}
}

func (r *PostgresDriverRepository) Create(ctx context.Context, d *model.Driver) error {
	query := `INSERT INTO drivers (id, store_id, name, phone, active, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, d.ID, d.StoreID, d.Name, d.Phone, d.Active, d.CreatedAt)
	return mapErr(err)
}

func (r *PostgresDriverRepository) GetByID(ctx context.Context, storeID, id string) (*model.Driver, error) {
	query := `SELECT id, store_id, name, phone, active, created_at FROM drivers WHERE id = $1 AND store_id = $2`
	var d model.Driver
	err := r.db.QueryRowContext(ctx, query, id, storeID).Scan(&d.ID, &d.StoreID, &d.Name, &d.Phone, &d.Active, &d.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &d, nil
}

func (r *PostgresDriverRepository) List(ctx context.Context, storeID string) ([]model.Driver, error) {
	query := `SELECT id, store_id, name, phone, active, created_at FROM drivers WHERE store_id = $1 ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	drivers := make([]model.Driver, 0)
	for rows.Next() {
		var d model.Driver
		if err := rows.Scan(&d.ID, &d.StoreID, &d.Name, &d.Phone, &d.Active, &d.CreatedAt); err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}
