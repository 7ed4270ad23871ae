package migrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the schema and seed migrations, registered by the numbered files in this package.
var Migrations = migrate.NewMigrations()
