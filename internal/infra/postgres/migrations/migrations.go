// Package migrations holds the Postgres schema for question banks and the leaderboard.
package migrations

import "github.com/uptrace/bun/migrate"

var Migrations = migrate.NewMigrations()
