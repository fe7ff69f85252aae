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

// CartRepo хранит строки корзин. Цены и остатки всегда читаются из products.
type CartRepo struct {
	pool *pgxpool.Pool
	conv converter.CartItemConverter
}

func NewCartRepo(pool *pgxpool.Pool, conv converter.CartItemConverter) *CartRepo {
	return &CartRepo{pool: pool, conv: conv}
}

const cartSelect = `
	SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.created_at,
	       p.name, p.price, p.image_url, p.stock
	FROM cart_items ci
	JOIN products p ON p.id = ci.product_id
`

func (c *CartRepo) GetItems(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error) {
	return c.query(ctx, cartSelect+` WHERE ci.user_id = $1 ORDER BY ci.created_at DESC, ci.id`, userID)
}

func (c *CartRepo) GetItem(ctx context.Context, userID, itemID uuid.UUID) (*domain.CartItem, error) {
	items, err := c.query(ctx, cartSelect+` WHERE ci.user_id = $1 AND ci.id = $2`, userID, itemID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, e.ErrCartItemNotFound
	}

	return &items[0], nil
}

// AddQuantity атомарно создаёт строку или прибавляет количество к существующей.
func (c *CartRepo) AddQuantity(ctx context.Context, item *domain.CartItem) (int, error) {
	query := `
		INSERT INTO cart_items (id, user_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING quantity
	`

	var quantity int
	err := tr.Conn(ctx, c.pool).
		QueryRow(ctx, query, item.ID, item.UserID, item.ProductID, item.Quantity).
		Scan(&quantity)
	if err != nil {
		if postgresForeignKey(err) {
			return 0, e.ErrProductNotFound
		}
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return quantity, nil
}

func (c *CartRepo) SetQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	tag, err := tr.Conn(ctx, c.pool).Exec(ctx,
		`UPDATE cart_items SET quantity = $3 WHERE user_id = $1 AND id = $2`,
		userID, itemID, quantity,
	)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return e.ErrCartItemNotFound
	}

	return nil
}

// Delete удаляет строку корзины и сообщает, была ли она.
func (c *CartRepo) Delete(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	tag, err := tr.Conn(ctx, c.pool).Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND id = $2`, userID, itemID)
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	return tag.RowsAffected() > 0, nil
}

func (c *CartRepo) Clear(ctx context.Context, userID uuid.UUID) error {
	if _, err := tr.Conn(ctx, c.pool).Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// DeleteLines удаляет перечисленные строки корзины пользователя.
// Строки, добавленные после чтения корзины, остаются.
func (c *CartRepo) DeleteLines(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID) error {
	if len(itemIDs) == 0 {
		return nil
	}

	_, err := tr.Conn(ctx, c.pool).Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND id = ANY($2::uuid[])`, userID, itemIDs)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// LockForCheckout читает корзину и блокирует её строки и строки товаров до конца транзакции.
// Блокировки берутся в порядке product_id.
func (c *CartRepo) LockForCheckout(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error) {
	return c.query(ctx, cartSelect+` WHERE ci.user_id = $1 ORDER BY ci.product_id FOR UPDATE OF ci, p`, userID)
}

func (c *CartRepo) query(ctx context.Context, query string, args ...any) ([]domain.CartItem, error) {
	rows, err := tr.Conn(ctx, c.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	models, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[converter.CartItemModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToArrEntity(models), nil
}
