package emailstore

import (
	"context"
)

// EmailRepository defines the persistence contract the store and the spam
// classifier are written against
type EmailRepository interface {
	// Write operations
	Save(ctx context.Context, email *Email) (*Email, error)
	SaveAll(ctx context.Context, emails []*Email) ([]*Email, error)

	// Lookup operations
	FindByID(ctx context.Context, id uint64) (*Email, error)
	FindAllByID(ctx context.Context, ids []uint64) ([]*Email, error)
	ExistsByID(ctx context.Context, id uint64) (bool, error)
	FindAllBySenderAddress(ctx context.Context, address string) ([]*Email, error)

	// Removal operations, missing ids are ignored
	DeleteByID(ctx context.Context, id uint64) error
	DeleteAllByID(ctx context.Context, ids []uint64) error
}

// uniqueIDs drops duplicates while keeping the first occurrence order
func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
