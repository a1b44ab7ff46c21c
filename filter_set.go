package emailstore

import (
	"sort"
	"sync"
)

// FilterSet is a concurrency safe set of sender addresses treated as spam
// sources. Members are keyed by Address.
type FilterSet struct {
	mu        sync.RWMutex
	addresses map[string]EmailAddress
}

// NewFilterSet creates a filter set holding the given addresses
func NewFilterSet(addresses ...EmailAddress) *FilterSet {
	fs := &FilterSet{
		addresses: make(map[string]EmailAddress, len(addresses)),
	}
	for _, addr := range addresses {
		fs.Add(addr)
	}
	return fs
}

// Add inserts the address and reports whether it was not present before.
// Empty addresses are ignored.
func (fs *FilterSet) Add(addr EmailAddress) bool {
	if addr.Address == "" {
		return false
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, exists := fs.addresses[addr.Address]; exists {
		return false
	}
	fs.addresses[addr.Address] = addr
	return true
}

// Remove deletes the address and reports whether it was present
func (fs *FilterSet) Remove(address string) bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, exists := fs.addresses[address]; !exists {
		return false
	}
	delete(fs.addresses, address)
	return true
}

// Len returns the number of members
func (fs *FilterSet) Len() int {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	return len(fs.addresses)
}

// Snapshot returns a copy of the members sorted by address
func (fs *FilterSet) Snapshot() []EmailAddress {
	fs.mu.RLock()
	snapshot := make([]EmailAddress, 0, len(fs.addresses))
	for _, addr := range fs.addresses {
		snapshot = append(snapshot, addr)
	}
	fs.mu.RUnlock()

	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].Address < snapshot[j].Address
	})
	return snapshot
}
