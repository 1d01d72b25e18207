// Package repository defines the persistence collaborator contracts consumed
// by the session engines. Implementations live under internal/database.
package repository

import (
	"context"
	"time"
)

// SessionRecord is one persisted session row: an opaque serialized blob plus
// timestamps and a surrogate id. The store imposes no schema on the blob.
type SessionRecord struct {
	ID        int64
	Data      []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionStore persists session state blobs. Each session kind (battle,
// ruins, quest) gets its own store instance.
//
// The store offers no optimistic locking: callers own the single live
// in-memory instance per id and serialize their own writes.
type SessionStore interface {
	Create(ctx context.Context, data []byte, createdAt, updatedAt time.Time) (int64, error)
	Update(ctx context.Context, id int64, data []byte, updatedAt time.Time) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]SessionRecord, error)
}
