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

// UserRepo реализует репозиторий пользователей поверх PostgreSQL.
type UserRepo struct {
	pool *pgxpool.Pool
	conv converter.UserConverter
}

func NewUserRepo(pool *pgxpool.Pool, conv converter.UserConverter) *UserRepo {
	return &UserRepo{pool: pool, conv: conv}
}

const userColumns = `id, email, password_hash, name, role, created_at`

func (u *UserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	model := u.conv.ToModel(user)
	query := `
		INSERT INTO users (id, email, password_hash, name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	rows, err := tr.Conn(ctx, u.pool).Query(ctx, query, model.ID, model.Email, model.PasswordHash, model.Name, model.Role)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	created, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[converter.UserModel])
	if err != nil {
		if postgresDuplicate(err) {
			return nil, e.ErrEmailTaken
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return u.conv.ToEntity(created), nil
}

func (u *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return u.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (u *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return u.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (u *UserRepo) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	rows, err := tr.Conn(ctx, u.pool).Query(ctx, query, arg)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[converter.UserModel])
	if err != nil {
		if noRows(err) {
			return nil, e.ErrUserNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return u.conv.ToEntity(model), nil
}
