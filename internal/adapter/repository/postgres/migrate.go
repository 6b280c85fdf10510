package postgres

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaDDL string

// Migrate bootstraps the schema. The DDL is idempotent, so it runs on every
// startup.
func Migrate(ctx context.Context, db *DB) error {
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to run schema migration: %w", err)
	}
	return nil
}
