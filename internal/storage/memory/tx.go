package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/nezpik/pistology-tos/internal/storage"
	"github.com/nezpik/pistology-tos/internal/types"
)

// tx buffers every insert in-order and applies them to the Store only on
// Commit. Rollback (or a dropped tx) simply discards the buffer: nothing
// was ever visible to readers, so there is nothing to undo.
type tx struct {
	store *Store
	done  bool

	envelope       *types.EdiMessage
	baplieParent   *types.BaplieParent
	baplieChildren []types.BaplieContainer
	coarriParent   *types.CoarriParent
	coarriChildren []types.CoarriMovement
	codecoParent   *types.CodecoParent
	codecoChildren []types.CodecoMovement

	childInsertCount int
}

func (t *tx) InsertEnvelope(ctx context.Context, messageType types.MessageType, content, containerScope string) (int64, error) {
	t.store.mu.Lock()
	id := t.store.nextEnvelopeID
	t.store.nextEnvelopeID++
	t.store.mu.Unlock()

	t.envelope = &types.EdiMessage{
		ID:          id,
		MessageType: messageType,
		Content:     content,
		ContainerID: containerScope,
	}
	return id, nil
}

func (t *tx) InsertBaplieParent(ctx context.Context, envelopeID int64, header types.BaplieParent) (int64, error) {
	t.store.mu.Lock()
	id := t.store.nextParentID
	t.store.nextParentID++
	t.store.mu.Unlock()

	header.ID = id
	header.EdiMessageID = envelopeID
	t.baplieParent = &header
	return id, nil
}

func (t *tx) InsertBaplieContainer(ctx context.Context, parentID int64, c types.BaplieContainer) error {
	t.childInsertCount++
	if t.store.FailAfterChildInserts > 0 && t.childInsertCount > t.store.FailAfterChildInserts {
		return &storage.StorageError{Op: "insert baplie container", Err: fmt.Errorf("simulated failure")}
	}
	c.ParentID = parentID
	t.baplieChildren = append(t.baplieChildren, c)
	return nil
}

func (t *tx) InsertCoarriParent(ctx context.Context, envelopeID int64, header types.CoarriParent) (int64, error) {
	t.store.mu.Lock()
	id := t.store.nextParentID
	t.store.nextParentID++
	t.store.mu.Unlock()

	header.ID = id
	header.EdiMessageID = envelopeID
	t.coarriParent = &header
	return id, nil
}

func (t *tx) InsertCoarriMovement(ctx context.Context, parentID int64, m types.CoarriMovement) error {
	t.childInsertCount++
	if t.store.FailAfterChildInserts > 0 && t.childInsertCount > t.store.FailAfterChildInserts {
		return &storage.StorageError{Op: "insert coarri movement", Err: fmt.Errorf("simulated failure")}
	}
	m.ParentID = parentID
	t.coarriChildren = append(t.coarriChildren, m)
	return nil
}

func (t *tx) InsertCodecoParent(ctx context.Context, envelopeID int64, header types.CodecoParent) (int64, error) {
	t.store.mu.Lock()
	id := t.store.nextParentID
	t.store.nextParentID++
	t.store.mu.Unlock()

	header.ID = id
	header.EdiMessageID = envelopeID
	t.codecoParent = &header
	return id, nil
}

func (t *tx) InsertCodecoMovement(ctx context.Context, parentID int64, m types.CodecoMovement) error {
	t.childInsertCount++
	if t.store.FailAfterChildInserts > 0 && t.childInsertCount > t.store.FailAfterChildInserts {
		return &storage.StorageError{Op: "insert codeco movement", Err: fmt.Errorf("simulated failure")}
	}
	m.ParentID = parentID
	t.codecoChildren = append(t.codecoChildren, m)
	return nil
}

func (t *tx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.envelope == nil {
		return fmt.Errorf("commit: no envelope inserted")
	}

	t.envelope.CreatedAt = time.Now().UTC()
	s.envelopes = append(s.envelopes, *t.envelope)

	if t.baplieParent != nil {
		s.baplieParents[t.baplieParent.ID] = *t.baplieParent
		s.baplieContainers[t.baplieParent.ID] = append([]types.BaplieContainer(nil), t.baplieChildren...)
		s.envelopeToBaplie[t.envelope.ID] = t.baplieParent.ID
	}
	if t.coarriParent != nil {
		s.coarriParents[t.coarriParent.ID] = *t.coarriParent
		s.coarriMovements[t.coarriParent.ID] = append([]types.CoarriMovement(nil), t.coarriChildren...)
		s.envelopeToCoarri[t.envelope.ID] = t.coarriParent.ID
	}
	if t.codecoParent != nil {
		s.codecoParents[t.codecoParent.ID] = *t.codecoParent
		s.codecoMovements[t.codecoParent.ID] = append([]types.CodecoMovement(nil), t.codecoChildren...)
		s.envelopeToCodeco[t.envelope.ID] = t.codecoParent.ID
	}

	return nil
}

func (t *tx) Rollback() error {
	t.done = true
	return nil
}
