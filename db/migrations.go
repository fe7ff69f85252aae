package db

import "embed"

// Migrations SQL-миграции схемы, встраиваются в бинарник.
//
//go:embed migrations/*.sql
var Migrations embed.FS
