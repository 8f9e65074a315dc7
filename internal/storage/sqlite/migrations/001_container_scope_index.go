// Package migrations holds idempotent schema upgrades applied after the
// base schema, in the order the sqlite package registers them.
package migrations

import (
	"database/sql"
	"fmt"
)

// MigrateContainerScopeIndex ensures idx_edi_messages_container_id exists
// on databases created before the index was added to the base schema.
func MigrateContainerScopeIndex(db *sql.DB) error {
	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_edi_messages_container_id ON edi_messages(container_id)`)
	if err != nil {
		return fmt.Errorf("failed to create container scope index: %w", err)
	}
	return nil
}
