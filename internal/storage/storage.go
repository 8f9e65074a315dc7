// Package storage defines the Persistence Interface the EDI ingestion
// core talks to: a transaction-scoped contract for writing an envelope
// plus its typed parent/children atomically, and a read contract for
// listing and joining them back for the Query Assembler.
//
// Two implementations exist: sqlite (the production backend) and memory
// (an in-process double used by tests to exercise the atomicity and
// ordering invariants without a real database).
package storage

import (
	"context"

	"github.com/nezpik/pistology-tos/internal/types"
)

// ValidationError marks caller input that failed a boundary check (an
// unknown message_type, empty content). Surfaced as HTTP 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Field + ": " + e.Message
}

// StorageError wraps any failure from the Persistence Interface. Its
// Error() text is generic by design — callers surface it as a plain 500
// and log the wrapped cause internally rather than returning it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage: " + e.Op + " failed"
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Tx is the scoped resource borrowed for the lifetime of one ingestion.
// It exposes exactly the operations the Coordinator needs to insert an
// envelope, its typed parent, and its children, all within one database
// transaction. Commit and Rollback are mutually exclusive and exactly
// one must be called; an implementation's Rollback must be safe to call
// after a successful Commit (a no-op) so that a deferred Rollback in the
// Coordinator is always correct.
type Tx interface {
	InsertEnvelope(ctx context.Context, messageType types.MessageType, content, containerScope string) (int64, error)

	InsertBaplieParent(ctx context.Context, envelopeID int64, header types.BaplieParent) (int64, error)
	InsertBaplieContainer(ctx context.Context, parentID int64, c types.BaplieContainer) error

	InsertCoarriParent(ctx context.Context, envelopeID int64, header types.CoarriParent) (int64, error)
	InsertCoarriMovement(ctx context.Context, parentID int64, m types.CoarriMovement) error

	InsertCodecoParent(ctx context.Context, envelopeID int64, header types.CodecoParent) (int64, error)
	InsertCodecoMovement(ctx context.Context, parentID int64, m types.CodecoMovement) error

	Commit() error
	Rollback() error
}

// Storage is the full Persistence Interface: a transaction factory plus
// the read-side operations backing the Query Assembler.
type Storage interface {
	BeginTx(ctx context.Context) (Tx, error)

	// Ping reports whether the backend is reachable, for the HTTP
	// server's health check.
	Ping(ctx context.Context) error

	FetchEnvelope(ctx context.Context, envelopeID int64) (*types.EdiMessage, error)
	ListEnvelopesByScope(ctx context.Context, containerScope string) ([]types.EdiMessage, error)

	FetchBaplieProjection(ctx context.Context, envelopeID int64) (*types.BaplieProjection, error)
	FetchCoarriProjection(ctx context.Context, envelopeID int64) (*types.CoarriProjection, error)
	FetchCodecoProjection(ctx context.Context, envelopeID int64) (*types.CodecoProjection, error)

	Close() error
}
