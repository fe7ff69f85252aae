package pgdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/tr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// ProductRepo реализует репозиторий продуктов поверх PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
	}
}

const productSelect = `
	SELECT p.id, p.name, p.description, p.price, p.image_url, p.category_id,
	       c.name AS category_name, p.stock, p.created_at
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
`

// List возвращает страницу товаров, новые первыми, и общее число товаров под фильтром.
func (p *ProductRepo) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error) {
	conds := make([]string, 0, 2)
	args := make([]any, 0, 4)

	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		conds = append(conds, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, likePattern(filter.Search))
		conds = append(conds, fmt.Sprintf("(p.name ILIKE $%[1]d OR p.description ILIKE $%[1]d)", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	conn := tr.Conn(ctx, p.pool)

	var total int
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM products p`+where, args...).Scan(&total); err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := productSelect + where + fmt.Sprintf(" ORDER BY p.created_at DESC, p.id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}

	models, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[converter.ProductModel])
	if err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToArrEntity(models), total, nil
}

func (p *ProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	rows, err := tr.Conn(ctx, p.pool).Query(ctx, productSelect+` WHERE p.id = $1`, id)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[converter.ProductModel])
	if err != nil {
		if noRows(err) {
			return nil, e.ErrProductNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(model), nil
}

func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		INSERT INTO products (id, name, description, price, image_url, category_id, stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := tr.Conn(ctx, p.pool).Exec(ctx, query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.ImageURL,
		product.CategoryID,
		product.Stock,
	)
	if err != nil {
		if postgresForeignKey(err) {
			return nil, e.ErrCategoryNotExists
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.GetByID(ctx, product.ID)
}

// Update меняет только переданные поля.
func (p *ProductRepo) Update(ctx context.Context, id uuid.UUID, patch domain.ProductPatch) (*domain.Product, error) {
	query := `
		UPDATE products
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    price = COALESCE($4, price),
		    image_url = COALESCE($5, image_url),
		    category_id = COALESCE($6, category_id),
		    stock = COALESCE($7, stock)
		WHERE id = $1
	`

	tag, err := tr.Conn(ctx, p.pool).Exec(ctx, query,
		id,
		patch.Name,
		patch.Description,
		patch.Price,
		patch.ImageURL,
		patch.CategoryID,
		patch.Stock,
	)
	if err != nil {
		switch {
		case postgresForeignKey(err):
			return nil, e.ErrCategoryNotExists
		case postgresCheck(err):
			return nil, e.ErrInvalidStock
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return nil, e.ErrProductNotFound
	}

	return p.GetByID(ctx, id)
}

// Delete удаляет товар вместе со строками корзин. Товар из заказов удалить нельзя.
func (p *ProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := tr.Conn(ctx, p.pool).Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if postgresForeignKey(err) {
			return e.ErrProductReferenced
		}
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return e.ErrProductNotFound
	}

	return nil
}

func (p *ProductRepo) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	query := `UPDATE products SET stock = stock - $2 WHERE id = $1 AND stock >= $2`

	tag, err := tr.Conn(ctx, p.pool).Exec(ctx, query, id, quantity)
	if err != nil {
		if postgresCheck(err) {
			return e.ErrInsufficientStock
		}
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return e.ErrInsufficientStock
	}

	return nil
}
