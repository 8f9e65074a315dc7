// Package validation composes the boundary checks the Ingestion
// Coordinator runs before it opens a transaction: small Validator
// functions over the ingest request, composed in order by Chain.
package validation

import (
	"strings"

	"github.com/nezpik/pistology-tos/internal/storage"
	"github.com/nezpik/pistology-tos/internal/types"
)

// Request is the subset of ingest.Request a Validator inspects. Declared
// here rather than imported to keep this package leaf-level (ingest
// depends on validation, not the reverse).
type Request struct {
	MessageType types.MessageType
	Content     string
}

// Validator inspects req and returns a *storage.ValidationError if it
// fails a boundary check.
type Validator func(req Request) error

// Chain composes validators in order; the first failure stops the chain.
func Chain(validators ...Validator) Validator {
	return func(req Request) error {
		for _, v := range validators {
			if err := v(req); err != nil {
				return err
			}
		}
		return nil
	}
}

// NonEmptyContent rejects a request whose content is empty or whitespace.
func NonEmptyContent() Validator {
	return func(req Request) error {
		if strings.TrimSpace(req.Content) == "" {
			return &storage.ValidationError{Field: "content", Message: "must not be empty"}
		}
		return nil
	}
}

// KnownMessageType rejects a request whose message type is not one of
// BAPLIE, COARRI, CODECO.
func KnownMessageType() Validator {
	return func(req Request) error {
		if !req.MessageType.Valid() {
			return &storage.ValidationError{Field: "message_type", Message: "must be one of BAPLIE, COARRI, CODECO"}
		}
		return nil
	}
}

// ForIngest is the validator chain the Coordinator runs before persisting
// anything.
func ForIngest() Validator {
	return Chain(NonEmptyContent(), KnownMessageType())
}
