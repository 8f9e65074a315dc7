// Package auditlog is an append-only JSONL trail of every ingest attempt,
// independent of the relational store. It exists for offline review of what
// carriers actually sent, not for serving reads through the HTTP surface.
package auditlog

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const idPrefix = "edi-"

// Outcome classifies what happened to one ingest attempt.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeRejected Outcome = "rejected"
	OutcomeError    Outcome = "error"
)

// Entry is one line of the audit trail.
type Entry struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	ContainerScope string    `json:"container_scope"`
	MessageType    string    `json:"message_type"`
	Outcome        Outcome   `json:"outcome"`
	EnvelopeID     *int64    `json:"envelope_id,omitempty"`
	Detail         string    `json:"detail,omitempty"`
}

// Log appends entries to a single JSONL file.
type Log struct {
	mu   sync.Mutex
	path string
}

// Open returns a Log writing to path, creating the parent directory and the
// file itself if they don't yet exist.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("create audit log directory: %w", err)
	}
	if _, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
		return nil, fmt.Errorf("create audit log file: %w", err)
	}
	return &Log{path: path}, nil
}

// Append writes e as one JSON line. A zero ID or CreatedAt is filled in.
func (l *Log) Append(e Entry) error {
	if e.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}
		e.ID = id
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer func() { _ = f.Close() }()

	bw := bufio.NewWriter(f)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e); err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}
	return bw.Flush()
}

func newID() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generate audit id: %w", err)
	}
	return idPrefix + hex.EncodeToString(b[:]), nil
}
