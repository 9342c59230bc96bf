package storage

import (
	"context"

	"vaultIndexer/internal/entity"
)

// Store persists entities keyed by (kind, id). Save overwrites an existing id.
type Store interface {
	Save(ctx context.Context, kind entity.Kind, id entity.ID, attrs entity.Attributes) error
	Load(ctx context.Context, kind entity.Kind, id entity.ID) (entity.Attributes, bool, error)
	Count(ctx context.Context, kind entity.Kind) (int, error)
}

// Entry is one entity queued for a batch save.
type Entry struct {
	Kind       entity.Kind
	ID         entity.ID
	Attributes entity.Attributes
}

// BatchStore is implemented by stores that can persist a block's entities in one call.
// Later entries for the same id win.
type BatchStore interface {
	SaveBatch(ctx context.Context, entries []Entry) error
}

// Record is the serialized form of one saved entity.
type Record struct {
	Kind       entity.Kind       `json:"kind"`
	ID         string            `json:"id"`
	Attributes entity.Attributes `json:"attributes"`
	SavedAt    string            `json:"saved_at"`
}

func cloneAttributes(attrs entity.Attributes) entity.Attributes {
	out := make(entity.Attributes, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
