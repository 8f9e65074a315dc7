// Package sqlite is the production Persistence Interface backend: one
// SQLite database, one table per entity, integer primary keys. Each
// transaction borrows exactly one connection from a bounded pool for its
// lifetime and releases it on commit or rollback.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/pkg/errors"

	"github.com/nezpik/pistology-tos/internal/storage"
	"github.com/nezpik/pistology-tos/internal/types"
)

// DefaultPoolSize matches the reference pool size from the concurrency
// model: a bounded connection provider, default capacity 5.
const DefaultPoolSize = 5

// Store is a storage.Storage backed by a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path, applies the
// base schema and any pending migrations, and returns a ready Store. The
// connection pool is capped at poolSize; a poolSize <= 0 uses
// DefaultPoolSize.
func Open(path string, poolSize int) (*Store, error) {
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(poolSize)
	db.SetMaxIdleConns(poolSize)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database connection is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &storage.StorageError{Op: "ping", Err: errors.Wrap(err, "sqlite")}
	}
	return nil
}

// BeginTx borrows one connection from the pool and starts a transaction,
// enabling foreign key enforcement for its lifetime (SQLite's default is
// off per-connection, and foreign_keys is not itself transactional, so
// this must run before any insert happens on this connection).
func (s *Store) BeginTx(ctx context.Context) (storage.Tx, error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &storage.StorageError{Op: "begin transaction", Err: errors.Wrap(err, "sqlite")}
	}
	if _, err := sqlTx.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = sqlTx.Rollback()
		return nil, &storage.StorageError{Op: "enable foreign keys", Err: errors.Wrap(err, "sqlite")}
	}
	return &tx{sqlTx: sqlTx}, nil
}

func (s *Store) FetchEnvelope(ctx context.Context, envelopeID int64) (*types.EdiMessage, error) {
	var e types.EdiMessage
	err := s.db.QueryRowContext(ctx, `
		SELECT id, message_type, content, container_id, created_at
		FROM edi_messages WHERE id = ?
	`, envelopeID).Scan(&e.ID, &e.MessageType, &e.Content, &e.ContainerID, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &storage.StorageError{Op: "fetch envelope", Err: errors.Wrap(err, "sqlite")}
	}
	return &e, nil
}

func (s *Store) ListEnvelopesByScope(ctx context.Context, containerScope string) ([]types.EdiMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, message_type, content, container_id, created_at
		FROM edi_messages
		WHERE container_id = ?
	`, containerScope)
	if err != nil {
		return nil, &storage.StorageError{Op: "list envelopes", Err: errors.Wrap(err, "sqlite")}
	}
	defer rows.Close()

	var out []types.EdiMessage
	for rows.Next() {
		var e types.EdiMessage
		if err := rows.Scan(&e.ID, &e.MessageType, &e.Content, &e.ContainerID, &e.CreatedAt); err != nil {
			return nil, &storage.StorageError{Op: "scan envelope", Err: errors.Wrap(err, "sqlite")}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &storage.StorageError{Op: "list envelopes", Err: errors.Wrap(err, "sqlite")}
	}
	return out, nil
}

func (s *Store) FetchBaplieProjection(ctx context.Context, envelopeID int64) (*types.BaplieProjection, error) {
	var parent types.BaplieParent
	err := s.db.QueryRowContext(ctx, `
		SELECT id, edi_message_id, vessel_name, voyage_number, port_of_loading, port_of_discharge
		FROM baplie_messages WHERE edi_message_id = ?
	`, envelopeID).Scan(&parent.ID, &parent.EdiMessageID, &parent.VesselName, &parent.VoyageNumber, &parent.PortOfLoading, &parent.PortOfDischarge)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &storage.StorageError{Op: "fetch baplie parent", Err: errors.Wrap(err, "sqlite")}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT container_id, bay, row, tier, size, container_type, weight
		FROM baplie_containers WHERE baplie_message_id = ? ORDER BY seq ASC
	`, parent.ID)
	if err != nil {
		return nil, &storage.StorageError{Op: "fetch baplie containers", Err: errors.Wrap(err, "sqlite")}
	}
	defer rows.Close()

	var containers []types.BaplieContainer
	for rows.Next() {
		var c types.BaplieContainer
		var weight sql.NullString
		if err := rows.Scan(&c.ContainerID, &c.Bay, &c.Row, &c.Tier, &c.Size, &c.ContainerType, &weight); err != nil {
			return nil, &storage.StorageError{Op: "scan baplie container", Err: errors.Wrap(err, "sqlite")}
		}
		if weight.Valid {
			if d, err := decimalFromString(weight.String); err == nil {
				c.Weight = d
			}
		}
		containers = append(containers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &storage.StorageError{Op: "fetch baplie containers", Err: errors.Wrap(err, "sqlite")}
	}

	return &types.BaplieProjection{BaplieParent: &parent, Containers: containers}, nil
}

func (s *Store) FetchCoarriProjection(ctx context.Context, envelopeID int64) (*types.CoarriProjection, error) {
	var parent types.CoarriParent
	err := s.db.QueryRowContext(ctx, `
		SELECT id, edi_message_id, vessel_name, voyage_number
		FROM coarri_messages WHERE edi_message_id = ?
	`, envelopeID).Scan(&parent.ID, &parent.EdiMessageID, &parent.VesselName, &parent.VoyageNumber)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &storage.StorageError{Op: "fetch coarri parent", Err: errors.Wrap(err, "sqlite")}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT container_id, movement_type, stowage_location, iso_container_type
		FROM coarri_movements WHERE coarri_message_id = ? ORDER BY seq ASC
	`, parent.ID)
	if err != nil {
		return nil, &storage.StorageError{Op: "fetch coarri movements", Err: errors.Wrap(err, "sqlite")}
	}
	defer rows.Close()

	var movements []types.CoarriMovement
	for rows.Next() {
		var m types.CoarriMovement
		if err := rows.Scan(&m.ContainerID, &m.MovementType, &m.StowageLocation, &m.IsoContainerType); err != nil {
			return nil, &storage.StorageError{Op: "scan coarri movement", Err: errors.Wrap(err, "sqlite")}
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, &storage.StorageError{Op: "fetch coarri movements", Err: errors.Wrap(err, "sqlite")}
	}

	return &types.CoarriProjection{CoarriParent: &parent, Movements: movements}, nil
}

func (s *Store) FetchCodecoProjection(ctx context.Context, envelopeID int64) (*types.CodecoProjection, error) {
	var parent types.CodecoParent
	err := s.db.QueryRowContext(ctx, `
		SELECT id, edi_message_id, gate
		FROM codeco_messages WHERE edi_message_id = ?
	`, envelopeID).Scan(&parent.ID, &parent.EdiMessageID, &parent.Gate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &storage.StorageError{Op: "fetch codeco parent", Err: errors.Wrap(err, "sqlite")}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT container_id, movement_type, truck_license_plate, iso_container_type
		FROM codeco_movements WHERE codeco_message_id = ? ORDER BY seq ASC
	`, parent.ID)
	if err != nil {
		return nil, &storage.StorageError{Op: "fetch codeco movements", Err: errors.Wrap(err, "sqlite")}
	}
	defer rows.Close()

	var movements []types.CodecoMovement
	for rows.Next() {
		var m types.CodecoMovement
		if err := rows.Scan(&m.ContainerID, &m.MovementType, &m.TruckLicensePlate, &m.IsoContainerType); err != nil {
			return nil, &storage.StorageError{Op: "scan codeco movement", Err: errors.Wrap(err, "sqlite")}
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, &storage.StorageError{Op: "fetch codeco movements", Err: errors.Wrap(err, "sqlite")}
	}

	return &types.CodecoProjection{CodecoParent: &parent, Movements: movements}, nil
}
