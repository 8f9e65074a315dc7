// Package memory is an in-process Storage double. It honors the same
// atomicity contract as the sqlite backend — pending inserts are buffered
// on the Tx and only applied to the Store on Commit — which is what
// makes the Coordinator's rollback-on-failure behavior unit-testable
// without a real database.
package memory

import (
	"context"
	"sync"

	"github.com/nezpik/pistology-tos/internal/storage"
	"github.com/nezpik/pistology-tos/internal/types"
)

// Store is an in-memory Storage implementation.
type Store struct {
	mu sync.Mutex

	nextEnvelopeID int64
	nextParentID   int64

	envelopes []types.EdiMessage

	baplieParents     map[int64]types.BaplieParent
	baplieContainers  map[int64][]types.BaplieContainer
	envelopeToBaplie  map[int64]int64

	coarriParents    map[int64]types.CoarriParent
	coarriMovements  map[int64][]types.CoarriMovement
	envelopeToCoarri map[int64]int64

	codecoParents    map[int64]types.CodecoParent
	codecoMovements  map[int64][]types.CodecoMovement
	envelopeToCodeco map[int64]int64

	// FailAfterChildInserts, when > 0, makes the Commit of any transaction
	// that has inserted more than this many children fail with a
	// synthetic storage error. Used by tests to exercise rollback (S6).
	FailAfterChildInserts int

	// PingErr, when set, is returned by Ping. Used by tests to exercise
	// the unhealthy health-check path.
	PingErr error
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		nextEnvelopeID:   1,
		nextParentID:     1,
		baplieParents:    make(map[int64]types.BaplieParent),
		baplieContainers: make(map[int64][]types.BaplieContainer),
		envelopeToBaplie: make(map[int64]int64),
		coarriParents:    make(map[int64]types.CoarriParent),
		coarriMovements:  make(map[int64][]types.CoarriMovement),
		envelopeToCoarri: make(map[int64]int64),
		codecoParents:    make(map[int64]types.CodecoParent),
		codecoMovements:  make(map[int64][]types.CodecoMovement),
		envelopeToCodeco: make(map[int64]int64),
	}
}

func (s *Store) Close() error { return nil }

// Ping reports whether the Store is reachable. It is always healthy
// unless PingErr is set, which tests use to simulate an outage.
func (s *Store) Ping(ctx context.Context) error {
	return s.PingErr
}

// BeginTx returns a pending transaction. Nothing is visible to readers of
// the Store until Commit succeeds.
func (s *Store) BeginTx(ctx context.Context) (storage.Tx, error) {
	return &tx{store: s}, nil
}

func (s *Store) FetchEnvelope(ctx context.Context, envelopeID int64) (*types.EdiMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.envelopes {
		if e.ID == envelopeID {
			envelope := e
			return &envelope, nil
		}
	}
	return nil, nil
}

func (s *Store) ListEnvelopesByScope(ctx context.Context, containerScope string) ([]types.EdiMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []types.EdiMessage
	for _, e := range s.envelopes {
		if e.ContainerID == containerScope {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) FetchBaplieProjection(ctx context.Context, envelopeID int64) (*types.BaplieProjection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parentID, ok := s.envelopeToBaplie[envelopeID]
	if !ok {
		return nil, nil
	}
	parent := s.baplieParents[parentID]
	return &types.BaplieProjection{
		BaplieParent: &parent,
		Containers:   append([]types.BaplieContainer(nil), s.baplieContainers[parentID]...),
	}, nil
}

func (s *Store) FetchCoarriProjection(ctx context.Context, envelopeID int64) (*types.CoarriProjection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parentID, ok := s.envelopeToCoarri[envelopeID]
	if !ok {
		return nil, nil
	}
	parent := s.coarriParents[parentID]
	return &types.CoarriProjection{
		CoarriParent: &parent,
		Movements:    append([]types.CoarriMovement(nil), s.coarriMovements[parentID]...),
	}, nil
}

func (s *Store) FetchCodecoProjection(ctx context.Context, envelopeID int64) (*types.CodecoProjection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parentID, ok := s.envelopeToCodeco[envelopeID]
	if !ok {
		return nil, nil
	}
	parent := s.codecoParents[parentID]
	return &types.CodecoProjection{
		CodecoParent: &parent,
		Movements:    append([]types.CodecoMovement(nil), s.codecoMovements[parentID]...),
	}, nil
}
