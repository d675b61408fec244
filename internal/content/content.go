// Package content persists the dashboard content record created for each
// confirmed transaction.
package content

import (
	"context"
	"time"
)

// Property is one key/value attribute attached to a content record.
type Property struct {
	Key   string
	Value string
}

// Record is a content entry keyed by transaction signature. Upserting the
// same signature twice never creates a duplicate.
type Record struct {
	Signature  string
	OwnerID    string
	Kind       string
	Properties []Property
	CreatedAt  time.Time
}

// Store persists content records idempotently by signature.
type Store interface {
	// Upsert inserts or refreshes the record and returns its content id.
	Upsert(ctx context.Context, record *Record) (contentID string, err error)

	// Close closes the storage connection.
	Close() error
}
