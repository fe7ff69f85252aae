package pgdb

import (
	"context"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/tr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

type OrderRepo struct {
	pool *pgxpool.Pool
	conv converter.OrderConverter
}

func NewOrderRepo(pool *pgxpool.Pool, conv converter.OrderConverter) *OrderRepo {
	return &OrderRepo{pool: pool, conv: conv}
}

const (
	orderSelect = `SELECT id, user_id, status, total, shipping_address, created_at FROM orders`

	orderItemsSelect = `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price, p.name, p.image_url
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1::uuid[])
		ORDER BY oi.order_id, p.name
	`
)

// Create сохраняет заказ и его позиции одним пакетом запросов. order.CreatedAt заполняется из БД.
func (o *OrderRepo) Create(ctx context.Context, order *domain.Order) error {
	conn := tr.Conn(ctx, o.pool)

	err := conn.QueryRow(ctx, `
		INSERT INTO orders (id, user_id, status, total, shipping_address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		order.ID, order.UserID, string(order.Status), order.Total, order.ShippingAddress,
	).Scan(&order.CreatedAt)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	batch := &pgx.Batch{}
	for _, item := range order.Items {
		batch.Queue(`
			INSERT INTO order_items (id, order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4, $5)`,
			item.ID, order.ID, item.ProductID, item.Quantity, item.Price,
		)
	}

	if err := conn.SendBatch(ctx, batch).Close(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (o *OrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	orders, err := o.list(ctx, orderSelect+` WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, e.ErrOrderNotFound
	}

	return &orders[0], nil
}

func (o *OrderRepo) List(ctx context.Context, userID *uuid.UUID) ([]domain.Order, error) {
	const order = ` ORDER BY created_at DESC, id`

	if userID == nil {
		return o.list(ctx, orderSelect+order)
	}

	return o.list(ctx, orderSelect+` WHERE user_id = $1`+order, *userID)
}

func (o *OrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	tag, err := tr.Conn(ctx, o.pool).Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return e.ErrOrderNotFound
	}

	return nil
}

// list читает заказы и догружает позиции всех заказов одним запросом.
func (o *OrderRepo) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	conn := tr.Conn(ctx, o.pool)

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	models, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[converter.OrderModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if len(models) == 0 {
		return []domain.Order{}, nil
	}

	ids := make([]uuid.UUID, 0, len(models))
	for _, m := range models {
		ids = append(ids, m.ID)
	}

	rows, err = conn.Query(ctx, orderItemsSelect, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	items, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[converter.OrderItemModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	byOrder := make(map[uuid.UUID][]*converter.OrderItemModel, len(models))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}

	orders := make([]domain.Order, 0, len(models))
	for _, m := range models {
		orders = append(orders, *o.conv.ToEntity(m, byOrder[m.ID]))
	}

	return orders, nil
}
