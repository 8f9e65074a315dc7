// Package ingest implements the Ingestion Coordinator: given a message
// type, a container scope, and raw EDI text, it dispatches to the right
// parser and then writes the raw envelope plus the parsed parent and
// children atomically inside a single transaction. It is never
// observable for an envelope to exist without its parent, or for a
// parent to exist with a partial child list — any failure rolls the
// whole transaction back.
package ingest

import (
	"context"

	"github.com/nezpik/pistology-tos/internal/auditlog"
	"github.com/nezpik/pistology-tos/internal/edi/baplie"
	"github.com/nezpik/pistology-tos/internal/edi/codeco"
	"github.com/nezpik/pistology-tos/internal/edi/coarri"
	"github.com/nezpik/pistology-tos/internal/edi/query"
	"github.com/nezpik/pistology-tos/internal/logging"
	"github.com/nezpik/pistology-tos/internal/storage"
	"github.com/nezpik/pistology-tos/internal/types"
	"github.com/nezpik/pistology-tos/internal/validation"
)

var validateIngest = validation.ForIngest()

// Request is the input to Ingest: the caller-supplied container scope
// plus the message body.
type Request struct {
	ContainerScope string
	MessageType    types.MessageType
	Content        string
}

// Coordinator ties a Storage backend to the three parsers and the Query
// Assembler. It has no internal concurrency of its own: a single call to
// Ingest is a linear sequence of suspension points, all of them at
// persistence calls — tokenizing and parsing are CPU-only.
type Coordinator struct {
	store  storage.Storage
	notify logging.Notifier
	audit  *auditlog.Log

	// OnIngested, when set, is called with every successfully assembled
	// projection after commit - the hook the HTTP layer uses to feed the
	// live ingestion WebSocket feed. It must not block.
	OnIngested func(*types.EdiView)
}

// New returns a Coordinator backed by store. A nil notify uses a no-op
// logger; a nil audit disables the audit trail.
func New(store storage.Storage, notify logging.Notifier, audit *auditlog.Log) *Coordinator {
	if notify == nil {
		notify = logging.Noop()
	}
	return &Coordinator{store: store, notify: notify, audit: audit}
}

// Ingest validates req, parses its content with the parser selected by
// MessageType, and atomically persists the envelope plus its typed
// parent and children. On success it returns the assembled projection
// for the newly inserted envelope (via the Query Assembler, so the
// response shape is identical to a subsequent GET).
func (c *Coordinator) Ingest(ctx context.Context, req Request) (*types.EdiView, error) {
	if err := validateIngest(validation.Request{MessageType: req.MessageType, Content: req.Content}); err != nil {
		c.recordAudit(req, auditlog.OutcomeRejected, nil, err)
		return nil, err
	}

	tx, err := c.store.BeginTx(ctx)
	if err != nil {
		c.recordAudit(req, auditlog.OutcomeError, nil, err)
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	envelopeID, err := tx.InsertEnvelope(ctx, req.MessageType, req.Content, req.ContainerScope)
	if err != nil {
		c.recordAudit(req, auditlog.OutcomeError, nil, err)
		return nil, err
	}

	switch req.MessageType {
	case types.MessageTypeBaplie:
		parsed := baplie.Parse(req.Content)
		if err := persistBaplie(ctx, tx, envelopeID, parsed); err != nil {
			c.recordAudit(req, auditlog.OutcomeError, nil, err)
			return nil, err
		}
	case types.MessageTypeCoarri:
		parsed := coarri.Parse(req.Content)
		if err := persistCoarri(ctx, tx, envelopeID, parsed); err != nil {
			c.recordAudit(req, auditlog.OutcomeError, nil, err)
			return nil, err
		}
	case types.MessageTypeCodeco:
		parsed := codeco.Parse(req.Content)
		if err := persistCodeco(ctx, tx, envelopeID, parsed); err != nil {
			c.recordAudit(req, auditlog.OutcomeError, nil, err)
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		c.recordAudit(req, auditlog.OutcomeError, nil, err)
		return nil, err
	}
	committed = true

	c.notify.Infof("ingested %s envelope %d for scope %q", req.MessageType, envelopeID, req.ContainerScope)
	c.recordAudit(req, auditlog.OutcomeAccepted, &envelopeID, nil)

	assembler := query.New(c.store)
	view, err := assembler.Get(ctx, envelopeID)
	if err != nil {
		return nil, err
	}
	if c.OnIngested != nil && view != nil {
		c.OnIngested(view)
	}
	return view, nil
}

// recordAudit best-effort appends one audit trail entry. A failure to write
// the audit log never fails the ingestion itself.
func (c *Coordinator) recordAudit(req Request, outcome auditlog.Outcome, envelopeID *int64, cause error) {
	if c.audit == nil {
		return
	}
	entry := auditlog.Entry{
		ContainerScope: req.ContainerScope,
		MessageType:    string(req.MessageType),
		Outcome:        outcome,
		EnvelopeID:     envelopeID,
	}
	if cause != nil {
		entry.Detail = cause.Error()
	}
	if err := c.audit.Append(entry); err != nil {
		c.notify.Warnf("audit log append failed: %v", err)
	}
}

func persistBaplie(ctx context.Context, tx storage.Tx, envelopeID int64, parsed baplie.Parsed) error {
	parentID, err := tx.InsertBaplieParent(ctx, envelopeID, types.BaplieParent{
		VesselName:      parsed.VesselName,
		VoyageNumber:    parsed.VoyageNumber,
		PortOfLoading:   parsed.PortOfLoading,
		PortOfDischarge: parsed.PortOfDischarge,
	})
	if err != nil {
		return err
	}
	for _, container := range parsed.Containers {
		if err := tx.InsertBaplieContainer(ctx, parentID, container); err != nil {
			return err
		}
	}
	return nil
}

func persistCoarri(ctx context.Context, tx storage.Tx, envelopeID int64, parsed coarri.Parsed) error {
	parentID, err := tx.InsertCoarriParent(ctx, envelopeID, types.CoarriParent{
		VesselName:   parsed.VesselName,
		VoyageNumber: parsed.VoyageNumber,
	})
	if err != nil {
		return err
	}
	for _, movement := range parsed.Movements {
		if err := tx.InsertCoarriMovement(ctx, parentID, movement); err != nil {
			return err
		}
	}
	return nil
}

func persistCodeco(ctx context.Context, tx storage.Tx, envelopeID int64, parsed codeco.Parsed) error {
	parentID, err := tx.InsertCodecoParent(ctx, envelopeID, types.CodecoParent{
		Gate: parsed.Gate,
	})
	if err != nil {
		return err
	}
	for _, movement := range parsed.Movements {
		if err := tx.InsertCodecoMovement(ctx, parentID, movement); err != nil {
			return err
		}
	}
	return nil
}
