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

// CategoryRepo реализует репозиторий категорий поверх PostgreSQL.
type CategoryRepo struct {
	pool *pgxpool.Pool
	conv converter.CategoryConverter
}

func NewCategoryRepo(pool *pgxpool.Pool, conv converter.CategoryConverter) *CategoryRepo {
	return &CategoryRepo{pool: pool, conv: conv}
}

const categorySelect = `
	SELECT c.id, c.name, c.description, c.created_at,
	       (SELECT COUNT(*) FROM products p WHERE p.category_id = c.id) AS product_count
	FROM categories c
`

// List возвращает все категории по алфавиту вместе с числом товаров.
func (c *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := tr.Conn(ctx, c.pool).Query(ctx, categorySelect+` ORDER BY c.name`)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	models, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[converter.CategoryModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToArrEntity(models), nil
}

func (c *CategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	rows, err := tr.Conn(ctx, c.pool).Query(ctx, categorySelect+` WHERE c.id = $1`, id)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[converter.CategoryModel])
	if err != nil {
		if noRows(err) {
			return nil, e.ErrCategoryNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(model), nil
}

func (c *CategoryRepo) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `
		INSERT INTO categories (id, name, description)
		VALUES ($1, $2, $3)
		RETURNING id, name, description, created_at, 0 AS product_count
	`

	rows, err := tr.Conn(ctx, c.pool).Query(ctx, query, category.ID, category.Name, category.Description)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[converter.CategoryModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(model), nil
}

// Update меняет только переданные поля.
func (c *CategoryRepo) Update(ctx context.Context, id uuid.UUID, patch domain.CategoryPatch) (*domain.Category, error) {
	query := `
		UPDATE categories
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description)
		WHERE id = $1
	`

	tag, err := tr.Conn(ctx, c.pool).Exec(ctx, query, id, patch.Name, patch.Description)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return nil, e.ErrCategoryNotFound
	}

	return c.GetByID(ctx, id)
}

// Delete удаляет категорию. Если на неё ссылаются товары, возвращает e.ErrCategoryHasProducts.
func (c *CategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := tr.Conn(ctx, c.pool).Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if postgresForeignKey(err) {
			return e.ErrCategoryHasProducts
		}
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return e.ErrCategoryNotFound
	}

	return nil
}
