package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/nezpik/pistology-tos/internal/storage"
	"github.com/nezpik/pistology-tos/internal/types"
)

// tx adapts a *sql.Tx to storage.Tx, tracking insertion order for each
// child table with a monotonic per-parent sequence column so reads can
// reproduce the order children were parsed in.
type tx struct {
	sqlTx *sql.Tx

	baplieSeq int
	coarriSeq int
	codecoSeq int

	done bool
}

func (t *tx) InsertEnvelope(ctx context.Context, messageType types.MessageType, content, containerScope string) (int64, error) {
	res, err := t.sqlTx.ExecContext(ctx, `
		INSERT INTO edi_messages (message_type, content, container_id) VALUES (?, ?, ?)
	`, messageType, content, containerScope)
	if err != nil {
		return 0, &storage.StorageError{Op: "insert envelope", Err: errors.Wrap(err, "sqlite")}
	}
	return res.LastInsertId()
}

func (t *tx) InsertBaplieParent(ctx context.Context, envelopeID int64, header types.BaplieParent) (int64, error) {
	res, err := t.sqlTx.ExecContext(ctx, `
		INSERT INTO baplie_messages (edi_message_id, vessel_name, voyage_number, port_of_loading, port_of_discharge)
		VALUES (?, ?, ?, ?, ?)
	`, envelopeID, header.VesselName, header.VoyageNumber, header.PortOfLoading, header.PortOfDischarge)
	if err != nil {
		return 0, &storage.StorageError{Op: "insert baplie parent", Err: errors.Wrap(err, "sqlite")}
	}
	return res.LastInsertId()
}

func (t *tx) InsertBaplieContainer(ctx context.Context, parentID int64, c types.BaplieContainer) error {
	var weight *string
	if c.Weight != nil {
		s := c.Weight.String()
		weight = &s
	}
	t.baplieSeq++
	_, err := t.sqlTx.ExecContext(ctx, `
		INSERT INTO baplie_containers (baplie_message_id, seq, container_id, bay, row, tier, size, container_type, weight)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, parentID, t.baplieSeq, c.ContainerID, c.Bay, c.Row, c.Tier, c.Size, c.ContainerType, weight)
	if err != nil {
		return &storage.StorageError{Op: "insert baplie container", Err: errors.Wrap(err, "sqlite")}
	}
	return nil
}

func (t *tx) InsertCoarriParent(ctx context.Context, envelopeID int64, header types.CoarriParent) (int64, error) {
	res, err := t.sqlTx.ExecContext(ctx, `
		INSERT INTO coarri_messages (edi_message_id, vessel_name, voyage_number) VALUES (?, ?, ?)
	`, envelopeID, header.VesselName, header.VoyageNumber)
	if err != nil {
		return 0, &storage.StorageError{Op: "insert coarri parent", Err: errors.Wrap(err, "sqlite")}
	}
	return res.LastInsertId()
}

func (t *tx) InsertCoarriMovement(ctx context.Context, parentID int64, m types.CoarriMovement) error {
	t.coarriSeq++
	_, err := t.sqlTx.ExecContext(ctx, `
		INSERT INTO coarri_movements (coarri_message_id, seq, container_id, movement_type, stowage_location, iso_container_type)
		VALUES (?, ?, ?, ?, ?, ?)
	`, parentID, t.coarriSeq, m.ContainerID, m.MovementType, m.StowageLocation, m.IsoContainerType)
	if err != nil {
		return &storage.StorageError{Op: "insert coarri movement", Err: errors.Wrap(err, "sqlite")}
	}
	return nil
}

func (t *tx) InsertCodecoParent(ctx context.Context, envelopeID int64, header types.CodecoParent) (int64, error) {
	res, err := t.sqlTx.ExecContext(ctx, `
		INSERT INTO codeco_messages (edi_message_id, gate) VALUES (?, ?)
	`, envelopeID, header.Gate)
	if err != nil {
		return 0, &storage.StorageError{Op: "insert codeco parent", Err: errors.Wrap(err, "sqlite")}
	}
	return res.LastInsertId()
}

func (t *tx) InsertCodecoMovement(ctx context.Context, parentID int64, m types.CodecoMovement) error {
	t.codecoSeq++
	_, err := t.sqlTx.ExecContext(ctx, `
		INSERT INTO codeco_movements (codeco_message_id, seq, container_id, movement_type, truck_license_plate, iso_container_type)
		VALUES (?, ?, ?, ?, ?, ?)
	`, parentID, t.codecoSeq, m.ContainerID, m.MovementType, m.TruckLicensePlate, m.IsoContainerType)
	if err != nil {
		return &storage.StorageError{Op: "insert codeco movement", Err: errors.Wrap(err, "sqlite")}
	}
	return nil
}

func (t *tx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.sqlTx.Commit(); err != nil {
		return &storage.StorageError{Op: "commit", Err: errors.Wrap(err, "sqlite")}
	}
	return nil
}

// Rollback is a no-op after Commit or an earlier Rollback. An
// sql.ErrTxDone from sql.Tx.Rollback (the transaction was already ended
// by database/sql) is not treated as a failure.
func (t *tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.sqlTx.Rollback(); err != nil && err != sql.ErrTxDone {
		return &storage.StorageError{Op: "rollback", Err: errors.Wrap(err, "sqlite")}
	}
	return nil
}
