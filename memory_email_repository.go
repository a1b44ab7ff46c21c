package emailstore

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// MemoryEmailRepository implements the EmailRepository interface using memory as the storage medium
type MemoryEmailRepository struct {
	mu     sync.RWMutex
	emails map[uint64]*Email
	idGen  IDGenerator
}

// IDGenerator defines the interface for generating unique IDs
type IDGenerator interface {
	GenerateID() uint64
}

// SequenceIDGenerator hands out increasing IDs starting at 1
type SequenceIDGenerator struct {
	counter uint64
	mu      sync.Mutex
}

// GenerateID returns the next ID of the sequence
func (g *SequenceIDGenerator) GenerateID() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return g.counter
}

// NewMemoryEmailRepository creates a new memory-based email repository
func NewMemoryEmailRepository() *MemoryEmailRepository {
	return &MemoryEmailRepository{
		emails: make(map[uint64]*Email),
		idGen:  &SequenceIDGenerator{},
	}
}

// Save stores the email, assigning an ID when it has none
func (r *MemoryEmailRepository) Save(ctx context.Context, email *Email) (*Email, error) {
	if email == nil {
		return nil, errors.New("email cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.saveLocked(email), nil
}

// SaveAll stores every non-nil email and returns the stored versions
func (r *MemoryEmailRepository) SaveAll(ctx context.Context, emails []*Email) ([]*Email, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := make([]*Email, 0, len(emails))
	for _, email := range emails {
		if email == nil {
			continue
		}
		saved = append(saved, r.saveLocked(email))
	}

	return saved, nil
}

func (r *MemoryEmailRepository) saveLocked(email *Email) *Email {
	stored := copyEmail(email)
	if stored.ID == 0 {
		stored.ID = r.nextFreeIDLocked()
	}
	if stored.To == nil {
		stored.To = []EmailAddress{}
	}
	if stored.Cc == nil {
		stored.Cc = []EmailAddress{}
	}

	r.emails[stored.ID] = stored
	return copyEmail(stored)
}

// nextFreeIDLocked skips generated IDs already taken by emails saved under an explicit ID
func (r *MemoryEmailRepository) nextFreeIDLocked() uint64 {
	for {
		id := r.idGen.GenerateID()
		if _, taken := r.emails[id]; !taken && id != 0 {
			return id
		}
	}
}

// FindByID retrieves an email by ID
func (r *MemoryEmailRepository) FindByID(ctx context.Context, id uint64) (*Email, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email, exists := r.emails[id]
	if !exists {
		return nil, notFound(id)
	}

	return copyEmail(email), nil
}

// FindAllByID retrieves the emails for the given IDs in request order, skipping unknown IDs
func (r *MemoryEmailRepository) FindAllByID(ctx context.Context, ids []uint64) ([]*Email, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make([]*Email, 0, len(ids))
	for _, id := range uniqueIDs(ids) {
		if email, exists := r.emails[id]; exists {
			found = append(found, copyEmail(email))
		}
	}

	return found, nil
}

// ExistsByID reports whether an email with the ID is stored
func (r *MemoryEmailRepository) ExistsByID(ctx context.Context, id uint64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.emails[id]
	return exists, nil
}

// FindAllBySenderAddress retrieves every email sent from the address, ordered by ID
func (r *MemoryEmailRepository) FindAllBySenderAddress(ctx context.Context, address string) ([]*Email, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []*Email{}
	for _, email := range r.emails {
		if email.From.Address == address {
			matched = append(matched, copyEmail(email))
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ID < matched[j].ID
	})

	return matched, nil
}

// DeleteByID removes an email by ID
func (r *MemoryEmailRepository) DeleteByID(ctx context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.emails, id)
	return nil
}

// DeleteAllByID removes all emails with the given IDs
func (r *MemoryEmailRepository) DeleteAllByID(ctx context.Context, ids []uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		delete(r.emails, id)
	}

	return nil
}
