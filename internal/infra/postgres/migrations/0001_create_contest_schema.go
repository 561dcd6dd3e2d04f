package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_create_contest_schema.sql
var createContestSchemaSQL string

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(createContestSchemaSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(`
				DROP TABLE IF EXISTS referees;
				DROP TABLE IF EXISTS submissions;
				DROP TABLE IF EXISTS teams;
				DROP TABLE IF EXISTS participants;
				DROP TABLE IF EXISTS questions;
				DROP TABLE IF EXISTS contests`)
			return err
		},
	)
}
