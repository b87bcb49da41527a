package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/laundry-service/internal/model"
)

var orderColumns = []string{
	"o.id", "o.store_id", "o.customer_id", "o.driver_id", "o.order_number", "o.order_type", "o.status",
	"o.subtotal", "o.discount", "o.tax", "o.total_amount", "o.paid_amount",
	"o.workshop_partner_name", "o.workshop_notes", "o.is_rework", "o.rework_count",
	"o.notes", "o.pickup_address", "o.delivery_address", "o.due_date", "o.created_at", "o.updated_at",
	"c.name", "c.phone",
}

const itemColumns = "id, order_id, name, service, quantity, unit_price, status, sent_to_workshop, workshop_partner_name, notes, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

type PostgresOrderRepository struct {
	db   DBTX
	conn *sql.DB
	inTx bool
}

func NewPostgresOrderRepository(db *sql.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db, conn: db}
}

func (r *PostgresOrderRepository) WithinTx(ctx context.Context, fn func(OrderRepository) error) error {
	if r.inTx {
		return fn(r)
	}
	return WithTx(ctx, r.conn, func(tx *sql.Tx) error {
		return fn(&PostgresOrderRepository{db: tx, conn: r.conn, inTx: true})
	})
}

func (r *PostgresOrderRepository) Create(ctx context.Context, o *model.Order) error {
	query, args, err := psql.Insert("orders").
		Columns("id", "store_id", "customer_id", "driver_id", "order_number", "order_type", "status",
			"subtotal", "discount", "tax", "total_amount", "paid_amount",
			"notes", "pickup_address", "delivery_address", "due_date", "created_at", "updated_at").
		Values(o.ID, o.StoreID, o.CustomerID, o.DriverID, o.OrderNumber, string(o.OrderType), string(o.Status),
			o.Subtotal, o.Discount, o.Tax, o.TotalAmount, o.PaidAmount,
			o.Notes, o.PickupAddress, o.DeliveryAddress, o.DueDate, o.CreatedAt, o.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return mapErr(err)
	}
	return r.AddItems(ctx, o.Items)
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var o model.Order
	var customerName, customerPhone string
	err := row.Scan(
		&o.ID, &o.StoreID, &o.CustomerID, &o.DriverID, &o.OrderNumber, &o.OrderType, &o.Status,
		&o.Subtotal, &o.Discount, &o.Tax, &o.TotalAmount, &o.PaidAmount,
		&o.WorkshopPartnerName, &o.WorkshopNotes, &o.IsRework, &o.ReworkCount,
		&o.Notes, &o.PickupAddress, &o.DeliveryAddress, &o.DueDate, &o.CreatedAt, &o.UpdatedAt,
		&customerName, &customerPhone,
	)
	if err != nil {
		return nil, err
	}
	o.Customer = &model.Customer{ID: o.CustomerID, StoreID: o.StoreID, Name: customerName, Phone: customerPhone}
	return &o, nil
}

func selectOrders() sq.SelectBuilder {
	return psql.Select(orderColumns...).
		From("orders o").
		Join("customers c ON c.id = o.customer_id")
}

// GetByID loads the order with its items. Inside a transaction the order row
// is locked until commit.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, storeID, id string) (*model.Order, error) {
	b := selectOrders().Where(sq.Eq{"o.id": id, "o.store_id": storeID})
	if r.inTx {
		b = b.Suffix("FOR UPDATE OF o")
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapErr(err)
	}

	if order.Items, err = r.listItems(ctx, order.ID); err != nil {
		return nil, err
	}
	return order, nil
}

func applyOrderFilter(b sq.SelectBuilder, f OrderFilter) sq.SelectBuilder {
	b = b.Where(sq.Eq{"o.store_id": f.StoreID})
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		b = b.Where(sq.Eq{"o.status": statuses})
	}
	if f.CustomerID != "" {
		b = b.Where(sq.Eq{"o.customer_id": f.CustomerID})
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		b = b.Where(sq.Or{
			sq.ILike{"o.order_number": like},
			sq.ILike{"c.name": like},
			sq.ILike{"c.phone": like},
		})
	}
	if f.From != nil {
		b = b.Where(sq.GtOrEq{"o.created_at": *f.From})
	}
	if f.To != nil {
		b = b.Where(sq.Lt{"o.created_at": *f.To})
	}
	return b
}

// List returns one page of orders without items, plus the total match count.
func (r *PostgresOrderRepository) List(ctx context.Context, f OrderFilter) ([]model.Order, int, error) {
	countQuery, countArgs, err := applyOrderFilter(
		psql.Select("COUNT(*)").From("orders o").Join("customers c ON c.id = o.customer_id"), f,
	).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	b := applyOrderFilter(selectOrders(), f).OrderBy("o.created_at DESC")
	if f.Limit > 0 {
		b = b.Limit(f.Limit).Offset(f.Offset)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, 0, err
	}

	orders, err := r.queryOrders(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *PostgresOrderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *PostgresOrderRepository) Update(ctx context.Context, o *model.Order) error {
	query, args, err := psql.Update("orders").
		SetMap(map[string]any{
			"status":                string(o.Status),
			"driver_id":             o.DriverID,
			"subtotal":              o.Subtotal,
			"discount":              o.Discount,
			"tax":                   o.Tax,
			"total_amount":          o.TotalAmount,
			"paid_amount":           o.PaidAmount,
			"workshop_partner_name": o.WorkshopPartnerName,
			"workshop_notes":        o.WorkshopNotes,
			"is_rework":             o.IsRework,
			"rework_count":          o.ReworkCount,
			"notes":                 o.Notes,
			"updated_at":            o.UpdatedAt,
		}).
		Where(sq.Eq{"id": o.ID, "store_id": o.StoreID}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapErr(err)
	}
	return expectOneRow(res)
}

// NextOrderNumber numbers orders per store and day: ORD-YYYYMMDD-NNNN.
func (r *PostgresOrderRepository) NextOrderNumber(ctx context.Context, storeID string, day time.Time) (string, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	query, args, err := psql.Select("COUNT(*)").From("orders").
		Where(sq.Eq{"store_id": storeID}).
		Where(sq.GtOrEq{"created_at": start}).
		Where(sq.Lt{"created_at": start.AddDate(0, 0, 1)}).
		ToSql()
	if err != nil {
		return "", err
	}
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%s-%04d", start.Format("20060102"), n+1), nil
}

func (r *PostgresOrderRepository) AddItems(ctx context.Context, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	b := psql.Insert("order_items").Columns(
		"id", "order_id", "name", "service", "quantity", "unit_price",
		"status", "sent_to_workshop", "workshop_partner_name", "notes", "created_at",
	)
	for _, it := range items {
		b = b.Values(it.ID, it.OrderID, it.Name, it.Service, it.Quantity, it.UnitPrice,
			string(it.Status), it.SentToWorkshop, it.WorkshopPartnerName, it.Notes, it.CreatedAt)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return mapErr(err)
}

func (r *PostgresOrderRepository) UpdateItem(ctx context.Context, it *model.OrderItem) error {
	query := `UPDATE order_items SET status = $1, sent_to_workshop = $2, workshop_partner_name = $3, notes = $4
		WHERE id = $5 AND order_id = $6`
	res, err := r.db.ExecContext(ctx, query,
		string(it.Status), it.SentToWorkshop, it.WorkshopPartnerName, it.Notes, it.ID, it.OrderID)
	if err != nil {
		return mapErr(err)
	}
	return expectOneRow(res)
}

func (r *PostgresOrderRepository) listItems(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	query := `SELECT ` + itemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.OrderItem, 0)
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.Name, &it.Service, &it.Quantity, &it.UnitPrice,
			&it.Status, &it.SentToWorkshop, &it.WorkshopPartnerName, &it.Notes, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PostgresOrderRepository) AppendHistory(ctx context.Context, h *model.StatusHistory) error {
	var from *string
	if h.FromStatus != nil {
		s := string(*h.FromStatus)
		from = &s
	}
	query := `INSERT INTO status_history (id, order_id, from_status, to_status, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, h.ID, h.OrderID, from, string(h.ToStatus), h.Notes, h.CreatedAt)
	return mapErr(err)
}

func (r *PostgresOrderRepository) ListHistory(ctx context.Context, orderID string) ([]model.StatusHistory, error) {
	query := `SELECT id, order_id, from_status, to_status, notes, created_at
		FROM status_history WHERE order_id = $1 ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]model.StatusHistory, 0)
	for rows.Next() {
		var h model.StatusHistory
		if err := rows.Scan(&h.ID, &h.OrderID, &h.FromStatus, &h.ToStatus, &h.Notes, &h.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

func (r *PostgresOrderRepository) AddPayment(ctx context.Context, p *model.Payment) error {
	query := `INSERT INTO payments (id, order_id, amount, method, notes, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, p.ID, p.OrderID, p.Amount, string(p.Method), p.Notes, p.CreatedAt)
	return mapErr(err)
}

func (r *PostgresOrderRepository) ListPayments(ctx context.Context, orderID string) ([]model.Payment, error) {
	query := `SELECT id, order_id, amount, method, notes, created_at FROM payments WHERE order_id = $1 ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]model.Payment, 0)
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.OrderID, &p.Amount, &p.Method, &p.Notes, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
