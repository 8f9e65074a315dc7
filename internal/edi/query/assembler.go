// Package query implements the Query Assembler: it joins a raw envelope
// with its type-specific parsed projection so that GET and a successful
// POST return the identical response shape.
package query

import (
	"context"

	"github.com/nezpik/pistology-tos/internal/storage"
	"github.com/nezpik/pistology-tos/internal/types"
)

// Assembler composes types.EdiView values from a Storage backend.
type Assembler struct {
	store storage.Storage
}

// New returns an Assembler backed by store.
func New(store storage.Storage) *Assembler {
	return &Assembler{store: store}
}

// Get assembles the projection for a single envelope. It returns nil,
// nil if the envelope does not exist.
func (a *Assembler) Get(ctx context.Context, envelopeID int64) (*types.EdiView, error) {
	envelope, err := a.store.FetchEnvelope(ctx, envelopeID)
	if err != nil {
		return nil, err
	}
	if envelope == nil {
		return nil, nil
	}
	return a.assemble(ctx, *envelope)
}

// List returns the assembled projection for every envelope recorded
// under containerScope. Order among envelopes is unspecified; child
// order within each envelope's projection matches insertion order.
func (a *Assembler) List(ctx context.Context, containerScope string) ([]types.EdiView, error) {
	envelopes, err := a.store.ListEnvelopesByScope(ctx, containerScope)
	if err != nil {
		return nil, err
	}

	views := make([]types.EdiView, 0, len(envelopes))
	for _, envelope := range envelopes {
		view, err := a.assemble(ctx, envelope)
		if err != nil {
			return nil, err
		}
		if view != nil {
			views = append(views, *view)
		}
	}
	return views, nil
}

// assemble joins envelope with whichever typed projection its
// message_type names. A parent row missing for an envelope (e.g. one
// written by a future type this build doesn't recognize) is treated as a
// normal null projection, never an error.
func (a *Assembler) assemble(ctx context.Context, envelope types.EdiMessage) (*types.EdiView, error) {
	view := &types.EdiView{EdiMessage: envelope}

	switch envelope.MessageType {
	case types.MessageTypeBaplie:
		projection, err := a.store.FetchBaplieProjection(ctx, envelope.ID)
		if err != nil {
			return nil, err
		}
		view.BaplieMessage = projection
	case types.MessageTypeCoarri:
		projection, err := a.store.FetchCoarriProjection(ctx, envelope.ID)
		if err != nil {
			return nil, err
		}
		view.CoarriMessage = projection
	case types.MessageTypeCodeco:
		projection, err := a.store.FetchCodecoProjection(ctx, envelope.ID)
		if err != nil {
			return nil, err
		}
		view.CodecoMessage = projection
	}

	return view, nil
}
