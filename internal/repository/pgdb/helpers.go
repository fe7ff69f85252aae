package pgdb

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func postgresDuplicate(err error) bool {
	return hasCode(err, pgerrcode.UniqueViolation)
}

func postgresForeignKey(err error) bool {
	return hasCode(err, pgerrcode.ForeignKeyViolation)
}

func postgresCheck(err error) bool {
	return hasCode(err, pgerrcode.CheckViolation)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func noRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// likePattern экранирует спецсимволы LIKE и оборачивает строку в %.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
