package tr

import (
	"context"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
)

// Conn возвращает транзакцию из контекста, а если её нет, то переданный пул.
func Conn(ctx context.Context, db trmpgx.Tr) trmpgx.Tr {
	return trmpgx.DefaultCtxGetter.DefaultTrOrDB(ctx, db)
}

// NewManager создаёт менеджер транзакций поверх pgx.
// Вложенные вызовы Do переиспользуют уже открытую транзакцию.
func NewManager(db trmpgx.Transactional) *manager.Manager {
	return manager.Must(trmpgx.NewDefaultFactory(db))
}
