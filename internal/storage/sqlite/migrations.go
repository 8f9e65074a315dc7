package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/nezpik/pistology-tos/internal/storage/sqlite/migrations"
)

// Migration is a single named, idempotent schema upgrade.
type Migration struct {
	Name string
	Func func(*sql.DB) error
}

// migrationsList runs after the base schema, in order, every time the
// database is opened. Each migration must be safe to run against a
// database that already has it applied.
var migrationsList = []Migration{
	{"container_scope_index", migrations.MigrateContainerScopeIndex},
}

func runMigrations(db *sql.DB) error {
	for _, m := range migrationsList {
		if err := m.Func(db); err != nil {
			return fmt.Errorf("migration %s: %w", m.Name, err)
		}
	}
	return nil
}
