package datastore

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

func NewPostgres(dsn string, password string) *bun.DB {
	opts := []pgdriver.Option{pgdriver.WithDSN(dsn)}
	if password != "" {
		opts = append(opts, pgdriver.WithPassword(password))
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(opts...))
	return bun.NewDB(sqldb, pgdialect.New())
}

// Migrate creates every table and index the API needs. Safe to run twice.
func Migrate(ctx context.Context, db *bun.DB) error {
	migrations := []func(context.Context, *bun.DB) error{
		CreateTableUser,
		CreateTablePersonalAccessToken,
		CreateTablePartner,
	}

	for _, migrate := range migrations {
		if err := migrate(ctx, db); err != nil {
			return err
		}
	}
	return nil
}
